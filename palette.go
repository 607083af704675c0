package fastfx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PaletteSize is the engine palette width. Only the first 53 entries of
// the stock id_0_c palette have known colors; the rest render white.
const PaletteSize = 256

// id_0_c material palette. Hex values from Bisquick's SFView,
// descriptions from CoolK's COLOURS.TXT.
var paletteHex = map[int]string{
	0:  "#668774", // FX0 - Solid Dark Grey
	1:  "#36533D", // FX1 - Solid Darker Grey
	2:  "#A54124", // FX2 - Shaded Bright Red/Dark Red
	3:  "#241687", // FX3 - Shaded Blue/Bright Blue
	4:  "#B88B36", // FX4 - Shaded Bright Orange/Black
	5:  "#4941AC", // FX5 - Shaded Turquoise/Black
	6:  "#47311C", // FX6 - Solid Dark Red
	7:  "#1C223D", // FX7 - Solid Blue
	8:  "#541E8B", // FX8 - Shaded Red/Blue (Purple)
	9:  "#125012", // FX9 - Shaded Green/Dark Green
	10: "#182918", // FX10 - Solid Black
	11: "#2F3E2F", // FX11 - Shaded Black/Dark Grey
	12: "#465346", // FX12 - Solid Dark Grey
	13: "#5D695D", // FX13 - Shaded Dark Grey/Darker Grey
	14: "#747E74", // FX14 - Solid Darker Grey
	15: "#8B948B", // FX15 - Shaded Darker Grey/Brighter Grey
	16: "#A2A9A2", // FX16 - Solid Brighter Grey
	17: "#B9BEB9", // FX17 - Shaded Brighter Grey/Bright Grey
	18: "#D0D4D0", // FX18 - Solid Bright Grey
	19: "#E7E9E7", // FX19 - Shaded Bright Grey/White
	20: "#FFFFFF", // FX20 - Solid White
	21: "#8B1008", // FX21 - Solid Dark Red (identical to 6)
	22: "#B02D18", // FX22 - Shaded Bright Red/Dark Red (identical to 2)
	23: "#D54A29", // FX23 - Solid Bright Red
	24: "#E17B35", // FX24 - Shaded Bright Red/Orange
	25: "#EEAC41", // FX25 - Solid Orange
	26: "#F6C555", // FX26 - Shaded Bright Orange/Orange
	27: "#FFDE6A", // FX27 - Solid Bright Orange
	28: "#2910AC", // FX28 - Solid Blue
	29: "#412DC5", // FX29 - Shaded Blue/Dark Turquoise
	30: "#5A4ADE", // FX30 - Solid Dark Turquoise
	31: "#6A77EE", // FX31 - Shaded Bright Blue/Dark Turquoise
	32: "#7BA4FF", // FX32 - Solid Bright Blue
	33: "#97C9FF", // FX33 - Shaded Turquoise/Dark Turquoise
	34: "#B4EEFF", // FX34 - Solid Turquoise
	35: "#835A83", // FX35 - Shaded Dark Red/Bright Blue
	36: "#A87794", // FX36 - Shaded Bright Red/Bright Blue
	37: "#B4A8A0", // FX37 - Shaded Bright Orange/Bright Blue
	38: "#BDC1B4", // FX38 - Shaded Orange/Bright Blue
	39: "#209325", // FX39 - Shaded Dark Green/Dark Grey
	40: "#00C500", // FX40 - Solid Dark Green
	41: "#6AD56A", // FX41 - Shaded Dark Green/Bright Turquoise
	42: "#182918", // FX42 - Flashing (White/Turquoise/Bright Red/Green)
	43: "#D54A29", // FX43 - Jet Fire (Bright Orange/Orange/Bright Red/Red)
	44: "#2910AC", // FX44 - Blaster (Bright Turquoise/Turquoise/Bright Blue/Blue)
	45: "#739483", // FX45 - Flashing (White/Light Grey/Grey/Dark Grey)
	46: "#739483", // FX46 - Flashing (Orange/Yellow/Turquoise/White)
	47: "#000000", // FX47 - Invisible
	48: "#FFFFFF", // FX48 - Asteroid texture
	49: "#FFFFFF", // FX49 - "Wire" texture
	50: "#FFFFFF", // FX50 ^
	51: "#FFFFFF", // FX51 ^
	52: "#F6FFFF", // FX52 - Fading (Solid Red/Orange/Turquoise/Blue)
}

// paletteRGB is decoded once at init and never written again, so
// concurrent codec calls can share it freely.
var paletteRGB [PaletteSize][3]uint8

func init() {
	for i := range paletteRGB {
		paletteRGB[i] = [3]uint8{255, 255, 255}
	}
	for i, hex := range paletteHex {
		r, g, b := hexToRGB(hex)
		paletteRGB[i] = [3]uint8{r, g, b}
	}
}

func hexToRGB(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")
	v, _ := strconv.ParseUint(hex, 16, 32)
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// PaletteRGB returns the display color of a palette index. Indexes
// without a known color come back white.
func PaletteRGB(index int) (r, g, b uint8) {
	if index < 0 || index >= PaletteSize {
		return 255, 255, 255
	}
	c := paletteRGB[index]
	return c[0], c[1], c[2]
}

// NearestColorIndex maps an RGB color onto the closest defined palette
// entry by squared distance. Ties keep the lowest index.
func NearestColorIndex(r, g, b uint8) int {
	best, bestDist := 0, 1<<31-1
	for i := 0; i < len(paletteHex); i++ {
		c := paletteRGB[i]
		dr := int(c[0]) - int(r)
		dg := int(c[1]) - int(g)
		db := int(c[2]) - int(b)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// splitBGR555 unpacks the SNES 15 bit color word: 0bbbbbgg gggrrrrr,
// 5 bits per channel scaled up to 8.
func splitBGR555(v uint16) (r, g, b uint8) {
	r = uint8(v&0x1F) << 3
	g = uint8((v>>5)&0x1F) << 3
	b = uint8((v>>10)&0x1F) << 3
	return
}

func composeBGR555(r, g, b uint8) uint16 {
	return uint16(r>>3) | uint16(g>>3)<<5 | uint16(b>>3)<<10
}

// MaterialName returns the FX material name of a palette index.
func MaterialName(index int) string {
	return fmt.Sprintf("FX%d", index)
}

// ParseMaterialName extracts the palette index from an FX material
// name. Anything else reports false.
func ParseMaterialName(name string) (int, bool) {
	if !strings.HasPrefix(name, "FX") {
		return 0, false
	}
	i, err := strconv.Atoi(name[2:])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// hitFlagNames maps the engine hit flags HF1..HF8 onto their bits, low
// bit first. The table is process wide and immutable.
var hitFlagNames = [8]string{"HF1", "HF2", "HF3", "HF4", "HF5", "HF6", "HF7", "HF8"}

// ParseFlags reads a colbox flag field: either a plain integer or a
// sum of flag names like "HF1+HF4".
func ParseFlags(field string) (uint8, error) {
	field = strings.TrimSpace(field)
	if v, err := strconv.ParseUint(field, 0, 8); err == nil {
		return uint8(v), nil
	}
	var mask uint8
	for _, part := range strings.Split(field, "+") {
		part = strings.TrimSpace(part)
		bit := -1
		for i, name := range hitFlagNames {
			if part == name {
				bit = i
				break
			}
		}
		if bit < 0 {
			return 0, errors.Wrapf(ErrMalformedRecord, "unknown flag %q", part)
		}
		mask |= 1 << uint(bit)
	}
	return mask, nil
}

// FormatFlags writes a flag mask as a sum of HF names, or "0".
func FormatFlags(mask uint8) string {
	if mask == 0 {
		return "0"
	}
	var names []string
	for i, name := range hitFlagNames {
		if mask&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "+")
}
