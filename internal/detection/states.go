package detection

import (
	"math"

	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
)

// EstimateStates derives hover and active backgrounds from a base color.
//
// Hover darkens by 10% on light colors (brightness above 128) and lightens by
// 10% otherwise. Active always darkens by 20%. The reported brightness of
// each state is shifted by a fixed step rather than recomputed.
func EstimateStates(dominant imaging.Color) States {
	b := dominant.Brightness()

	hover := StateColor{BackgroundColor: dominant.Adjust(0.1), Brightness: b + 25}
	if b > 128 {
		hover = StateColor{BackgroundColor: dominant.Adjust(-0.1), Brightness: b - 25}
	}

	return States{
		Default: StateColor{BackgroundColor: dominant, Brightness: b},
		Hover:   hover,
		Active: StateColor{
			BackgroundColor: dominant.Adjust(-0.2),
			Brightness:      math.Max(0, b-50),
		},
	}
}
