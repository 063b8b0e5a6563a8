package validation

import (
	"fmt"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
)

// PropertyView flattens a detected component into the keys fixtures refer to.
//
// Numbers are float64 and colors are "#RRGGBB" strings. padding is the top
// inset, paddingX the left inset and paddingY the top inset. border is the
// CSS shorthand "1px solid #RRGGBB"; its parts are also available as
// border.width, border.color and border.style.
//
// backgroundColor is the dominant color for state "" and "default". For
// "hover" and "active" it is the estimated state color, and is absent when
// the component has no states.
func PropertyView(c detection.Component, state string) map[string]any {
	p := c.Properties
	view := map[string]any{
		"width":          float64(p.Width),
		"height":         float64(p.Height),
		"borderRadius":   float64(p.BorderRadius),
		"padding":        float64(p.Padding.Top),
		"padding.top":    float64(p.Padding.Top),
		"padding.right":  float64(p.Padding.Right),
		"padding.bottom": float64(p.Padding.Bottom),
		"padding.left":   float64(p.Padding.Left),
		"paddingX":       float64(p.Padding.Left),
		"paddingY":       float64(p.Padding.Top),
	}

	if b := p.Border; b != nil {
		view["border"] = fmt.Sprintf("%dpx %s %s", b.Width, b.Style, b.Color.Hex())
		view["border.width"] = float64(b.Width)
		view["border.color"] = b.Color.Hex()
		view["border.style"] = b.Style
	}
	if s := p.Shadow; s != nil {
		view["shadow.offsetX"] = float64(s.OffsetX)
		view["shadow.offsetY"] = float64(s.OffsetY)
		view["shadow.blurRadius"] = float64(s.BlurRadius)
		view["shadow.color"] = s.Color
	}

	switch state {
	case "", "default":
		view["backgroundColor"] = c.Colors.Dominant.Hex()
	case "hover":
		if c.States != nil {
			view["backgroundColor"] = c.States.Hover.BackgroundColor.Hex()
		}
	case "active":
		if c.States != nil {
			view["backgroundColor"] = c.States.Active.BackgroundColor.Hex()
		}
	}
	return view
}
