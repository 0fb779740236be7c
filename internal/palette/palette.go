// Package palette maps hazard levels and remediation progress to display
// colors.
package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/landscope/internal/grid"
)

// ProgressColor is the color a cell fades toward as remediation completes.
const ProgressColor = "#10b981"

var toxicityColors = map[grid.Toxicity]string{
	grid.ToxicityLow:      "#10b981",
	grid.ToxicityMedium:   "#f59e0b",
	grid.ToxicityHigh:     "#f97316",
	grid.ToxicityCritical: "#ef4444",
}

// ToxicityColor returns the base fill for a toxicity level. Unknown levels
// map to the critical color.
func ToxicityColor(t grid.Toxicity) string {
	if c, ok := toxicityColors[t]; ok {
		return c
	}
	return toxicityColors[grid.ToxicityCritical]
}

// Blend linearly interpolates two "#rrggbb" colors. t is clamped to [0, 1]
// and each channel is rounded half up. The result is lowercase.
func Blend(a, b string, t float64) (string, error) {
	ca, err := parseHex(a)
	if err != nil {
		return "", err
	}
	cb, err := parseHex(b)
	if err != nil {
		return "", err
	}
	if math.IsNaN(t) {
		return "", eris.New("palette: blend factor is NaN")
	}
	t = min(max(t, 0), 1)

	var out [3]int
	for i := range out {
		v := float64(ca[i]) + float64(cb[i]-ca[i])*t
		out[i] = min(max(int(math.Floor(v+0.5)), 0), 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2]), nil
}

// CellFill returns the display color for a cell: the toxicity color, blended
// toward ProgressColor by progress percent when any step is complete.
func CellFill(t grid.Toxicity, progress float64) string {
	base := ToxicityColor(t)
	if progress <= 0 {
		return base
	}
	// Both inputs are package constants, so Blend cannot fail here.
	c, err := Blend(base, ProgressColor, progress/100)
	if err != nil {
		return base
	}
	return c
}

func parseHex(s string) ([3]int, error) {
	var rgb [3]int
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return rgb, eris.Errorf("palette: malformed color %q", s)
	}
	for i := range rgb {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return rgb, eris.Wrapf(err, "palette: malformed color %q", s)
		}
		rgb[i] = int(v)
	}
	return rgb, nil
}
