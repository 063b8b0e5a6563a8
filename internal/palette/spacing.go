package palette

import "strconv"

// Spacing is a tokenized spacing scale in the same shape as the color tokens.
type Spacing struct {
	Padding map[string]string `json:"padding"`
	Margin  map[string]string `json:"margin"`
	Gap     map[string]string `json:"gap"`
}

// spacingSteps is the 4px-based scale, smallest first.
var spacingSteps = []struct {
	name string
	px   int
}{
	{"xs", 4}, {"sm", 8}, {"md", 12}, {"lg", 16}, {"xl", 20}, {"2xl", 24}, {"3xl", 32},
}

// DefaultSpacing returns the spacing scale reported for every screenshot.
// Padding and margin use every step; gap stops at 2xl.
func DefaultSpacing() Spacing {
	return Spacing{
		Padding: spacingScale(len(spacingSteps)),
		Margin:  spacingScale(len(spacingSteps)),
		Gap:     spacingScale(len(spacingSteps) - 1),
	}
}

func spacingScale(n int) map[string]string {
	m := make(map[string]string, n)
	for _, s := range spacingSteps[:n] {
		m[s.name] = strconv.Itoa(s.px) + "px"
	}
	return m
}
