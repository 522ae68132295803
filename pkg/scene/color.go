package scene

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS colour: hex (#rgb, #rgba, #rrggbb, #rrggbbaa),
// rgb()/rgba(), hsl()/hsla() in comma or space syntax, named colours and
// transparent.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgb"):
		args, err := colorArgs(v, "rgba", "rgb")
		if err != nil {
			return color.NRGBA{}, err
		}
		return parseRGB(args)
	case strings.HasPrefix(v, "hsl"):
		args, err := colorArgs(v, "hsla", "hsl")
		if err != nil {
			return color.NRGBA{}, err
		}
		return parseHSL(args)
	}
	if c, ok := colornames.Map[v]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
}

// FormatColor renders a colour the way computed styles report it.
func FormatColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	a := math.Round(float64(c.A)/255*1000) / 1000
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatNumber(a))
}

func parseHex(h string) (color.NRGBA, error) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color #%s", h)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color #%s", h)
	}
	if len(h) == 6 {
		return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// colorArgs splits the arguments of a colour function. A "/ alpha" suffix
// in space syntax becomes a fourth argument.
func colorArgs(v string, names ...string) ([]string, error) {
	for _, name := range names {
		if strings.HasPrefix(v, name+"(") && strings.HasSuffix(v, ")") {
			inner := strings.TrimSpace(v[len(name)+1 : len(v)-1])
			var args []string
			if strings.Contains(inner, ",") {
				for _, a := range strings.Split(inner, ",") {
					args = append(args, strings.TrimSpace(a))
				}
			} else {
				inner = strings.Replace(inner, "/", " / ", 1)
				for _, a := range strings.Fields(inner) {
					if a != "/" {
						args = append(args, a)
					}
				}
			}
			if len(args) != 3 && len(args) != 4 {
				return nil, fmt.Errorf("invalid color %q", v)
			}
			return args, nil
		}
	}
	return nil, fmt.Errorf("invalid color %q", v)
}

func parseRGB(args []string) (color.NRGBA, error) {
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f, err := parseChannel(args[i], 255)
		if err != nil {
			return color.NRGBA{}, err
		}
		ch[i] = uint8(math.Round(clamp(f, 0, 255)))
	}
	a, err := parseAlpha(args)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

func parseHSL(args []string) (color.NRGBA, error) {
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hue %q", args[0])
	}
	s, err := parsePercent(args[1])
	if err != nil {
		return color.NRGBA{}, err
	}
	l, err := parsePercent(args[2])
	if err != nil {
		return color.NRGBA{}, err
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, clamp(s, 0, 1), clamp(l, 0, 1)).Clamped().RGB255()
	a, err := parseAlpha(args)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func parseChannel(s string, scale float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		p, err := parsePercent(s)
		return p * scale, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid color channel %q", s)
	}
	return f, nil
}

func parsePercent(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	return f / 100, nil
}

func parseAlpha(args []string) (uint8, error) {
	if len(args) < 4 {
		return 255, nil
	}
	a, err := parseChannel(args[3], 1)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(clamp(a, 0, 1) * 255)), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
