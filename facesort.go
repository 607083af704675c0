package fastfx

import (
	"sort"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// SortPolicy selects how the exporters order faces. The target
// renderer paints faces in list order with no depth test, so the
// emitted order is the visual stacking order.
type SortPolicy uint8

const (
	// DistanceFromOrigin emits far faces first and near faces last,
	// approximating painter's-algorithm back-to-front order for shapes
	// centered near the model origin.
	DistanceFromOrigin SortPolicy = iota
	// MaterialOrder groups faces by the first appearance of their FX
	// material in the caller's material list. Matches the ordering
	// convention of the other exporter in circulation.
	MaterialOrder
	// NoSort trusts the caller's native face order.
	NoSort
)

// Centroid returns the mean of the face's vertex positions.
func (f *Face) Centroid(vertices []vec3d.T) vec3d.T {
	var c vec3d.T
	n := 0
	for _, idx := range f.Indices {
		if idx < 0 || idx >= len(vertices) {
			continue
		}
		c = vec3d.Add(&c, &vertices[idx])
		n++
	}
	if n > 0 {
		c.Scale(1 / float64(n))
	}
	return c
}

// SortFaces computes the permutation that reorders a shape's faces
// under the given policy. It is a pure function: the shape is not
// touched, and repeated calls return identical permutations (ties keep
// the original face order). materials is consulted only by
// MaterialOrder and holds FX material names in caller order.
func SortFaces(s *Shape, policy SortPolicy, materials []string) []int {
	perm := make([]int, len(s.Faces))
	for i := range perm {
		perm[i] = i
	}
	switch policy {
	case DistanceFromOrigin:
		dist := make([]float64, len(s.Faces))
		for i := range s.Faces {
			c := s.Faces[i].Centroid(s.Vertices)
			dist[i] = c.Length()
		}
		sort.SliceStable(perm, func(a, b int) bool {
			return dist[perm[a]] > dist[perm[b]]
		})
	case MaterialOrder:
		rank := make(map[int]int)
		for i, name := range materials {
			color, ok := ParseMaterialName(name)
			if !ok {
				continue
			}
			if _, seen := rank[color]; !seen {
				rank[color] = i
			}
		}
		last := len(materials)
		faceRank := make([]int, len(s.Faces))
		for i := range s.Faces {
			if r, ok := rank[s.Faces[i].Color]; ok {
				faceRank[i] = r
			} else {
				faceRank[i] = last
			}
		}
		sort.SliceStable(perm, func(a, b int) bool {
			return faceRank[perm[a]] < faceRank[perm[b]]
		})
	case NoSort:
	}
	return perm
}
