package fastfx

import (
	"reflect"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Shape with three triangles whose centroids sit at distances 1, 5 and
// 3 from the origin.
func sorterShape() *Shape {
	return &Shape{
		Vertices: []vec3d.T{{1, 0, 0}, {5, 0, 0}, {3, 0, 0}},
		Faces: []Face{
			{Indices: []int{0, 0, 0}, Color: 1, Kind: Polygon},
			{Indices: []int{1, 1, 1}, Color: 2, Kind: Polygon},
			{Indices: []int{2, 2, 2}, Color: 3, Kind: Polygon},
		},
	}
}

func TestDistanceFromOrigin(t *testing.T) {
	s := sorterShape()
	got := SortFaces(s, DistanceFromOrigin, nil)
	// Far faces first: last in list is painted last, so frontmost.
	want := []int{1, 2, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortFaces() = %v, want %v", got, want)
	}
}

func TestSorterDeterminism(t *testing.T) {
	s := sorterShape()
	first := SortFaces(s, DistanceFromOrigin, nil)
	for i := 0; i < 10; i++ {
		if got := SortFaces(s, DistanceFromOrigin, nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("SortFaces() run %d = %v, differs from %v", i, got, first)
		}
	}
}

func TestSorterStableTies(t *testing.T) {
	s := &Shape{
		Vertices: []vec3d.T{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}},
		Faces: []Face{
			{Indices: []int{0, 0, 0}, Color: 1, Kind: Polygon},
			{Indices: []int{1, 1, 1}, Color: 2, Kind: Polygon},
			{Indices: []int{2, 2, 2}, Color: 3, Kind: Polygon},
		},
	}
	got := SortFaces(s, DistanceFromOrigin, nil)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortFaces() with equal distances = %v, want %v", got, want)
	}
}

func TestMaterialOrder(t *testing.T) {
	s := &Shape{
		Vertices: []vec3d.T{{0, 0, 0}},
		Faces: []Face{
			{Indices: []int{0, 0, 0}, Color: 2, Kind: Polygon},
			{Indices: []int{0, 0, 0}, Color: 5, Kind: Polygon},
			{Indices: []int{0, 0, 0}, Color: 2, Kind: Polygon},
			{Indices: []int{0, 0, 0}, Color: 9, Kind: Polygon}, // not in list
		},
	}
	got := SortFaces(s, MaterialOrder, []string{"FX5", "FX2"})
	want := []int{1, 0, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortFaces() = %v, want %v", got, want)
	}
}

func TestNoSort(t *testing.T) {
	s := sorterShape()
	got := SortFaces(s, NoSort, nil)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortFaces() = %v, want %v", got, want)
	}
}
