package visualization

import (
	"image/color"
	"math"
)

// viridisStops are evenly spaced samples of the viridis colormap. The same
// stops drive the HTML visual map.
var viridisStops = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

var viridisRGB = func() []color.NRGBA {
	out := make([]color.NRGBA, len(viridisStops))
	for i, hex := range viridisStops {
		out[i] = parseHex(hex)
	}
	return out
}()

// Viridis maps t in [0,1] to an opaque color. Values outside the range are
// clamped; NaN maps to the low end.
func Viridis(t float64) color.NRGBA {
	if math.IsNaN(t) || t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	pos := t * float64(len(viridisRGB)-1)
	i := int(pos)
	if i >= len(viridisRGB)-1 {
		return viridisRGB[len(viridisRGB)-1]
	}
	f := pos - float64(i)
	a, b := viridisRGB[i], viridisRGB[i+1]
	return color.NRGBA{
		R: lerp8(a.R, b.R, f),
		G: lerp8(a.G, b.G, f),
		B: lerp8(a.B, b.B, f),
		A: 255,
	}
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

func parseHex(s string) color.NRGBA {
	var c color.NRGBA
	c.A = 255
	hexVal := func(b byte) uint8 {
		switch {
		case b >= '0' && b <= '9':
			return b - '0'
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10
		}
		return 0
	}
	c.R = hexVal(s[1])<<4 | hexVal(s[2])
	c.G = hexVal(s[3])<<4 | hexVal(s[4])
	c.B = hexVal(s[5])<<4 | hexVal(s[6])
	return c
}
