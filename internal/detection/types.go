package detection

import (
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
)

// Type is the classified kind of a UI component.
type Type string

// Component types produced by the classifier.
const (
	TypeButton    Type = "button"
	TypeCard      Type = "card"
	TypeInput     Type = "input"
	TypeNavItem   Type = "nav-item"
	TypeContainer Type = "container"
	TypeUnknown   Type = "unknown"
)

// Region is an axis-aligned candidate area in buffer coordinates.
//
// Width and Height are always positive and the region always lies inside the
// buffer it was extracted from.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	// PixelCount is the number of pixels that actually belong to the region.
	// For flood-filled regions it is usually less than Width*Height.
	PixelCount int `json:"pixelCount,omitempty"`
}

// Area returns Width*Height.
func (r Region) Area() int {
	return r.Width * r.Height
}

// AspectRatio returns Width/Height.
func (r Region) AspectRatio() float64 {
	return float64(r.Width) / float64(r.Height)
}

// ColorFeatures holds the colors sampled from a region.
type ColorFeatures struct {
	Dominant imaging.Color `json:"dominant"`

	// Palette is ordered most frequent first and has no duplicates.
	Palette []imaging.Color `json:"palette"`
}

// Padding is the inset of visible content from each side of a region.
type Padding struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Border describes a detected border.
type Border struct {
	Width int           `json:"width"`
	Color imaging.Color `json:"color"`
	Style string        `json:"style"`
}

// Shadow describes a drop shadow.
type Shadow struct {
	OffsetX    int    `json:"offsetX"`
	OffsetY    int    `json:"offsetY"`
	BlurRadius int    `json:"blurRadius"`
	Color      string `json:"color"`
}

// Properties are the measured geometric properties of a component.
type Properties struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	BorderRadius int     `json:"borderRadius"`
	Padding      Padding `json:"padding"`
	Border       *Border `json:"border"`
	Shadow       *Shadow `json:"shadow"`
}

// TextSource records how HasText was decided.
type TextSource string

const (
	// TextSourceOracle means a text-presence oracle answered.
	TextSourceOracle TextSource = "oracle"
	// TextSourceHeuristic means the geometric fallback was used.
	TextSourceHeuristic TextSource = "heuristic"
)

// StateColor is the background of one interaction state.
type StateColor struct {
	BackgroundColor imaging.Color `json:"backgroundColor"`
	Brightness      float64       `json:"brightness"`
}

// States holds estimated interaction-state colors.
type States struct {
	Default StateColor `json:"default"`
	Hover   StateColor `json:"hover"`
	Active  StateColor `json:"active"`
}

// Component is one detected UI component. It is never modified after the
// detection pass that produced it.
type Component struct {
	ID         string        `json:"id"`
	Type       Type          `json:"type"`
	Bounds     Region        `json:"bounds"`
	Properties Properties    `json:"properties"`
	Colors     ColorFeatures `json:"colors"`
	HasText    bool          `json:"hasText"`
	TextSource TextSource    `json:"textSource,omitempty"`
	Confidence float64       `json:"confidence"`
	States     *States       `json:"states,omitempty"`
}
