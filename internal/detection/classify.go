package detection

import "math"

// ButtonRule matches button-like regions.
// A zero MaxHeight disables the height check.
type ButtonRule struct {
	MinAspect   float64 `yaml:"min_aspect" json:"minAspect"`
	MaxAspect   float64 `yaml:"max_aspect" json:"maxAspect"`
	MaxArea     int     `yaml:"max_area" json:"maxArea"`
	MaxHeight   int     `yaml:"max_height" json:"maxHeight"`
	RequireText bool    `yaml:"require_text" json:"requireText"`
}

// CardRule matches card-like regions. A zero MaxAspect or MinBorderRadius
// disables that check.
type CardRule struct {
	MinArea         int     `yaml:"min_area" json:"minArea"`
	MaxAspect       float64 `yaml:"max_aspect" json:"maxAspect"`
	MinBorderRadius int     `yaml:"min_border_radius" json:"minBorderRadius"`
}

// InputRule matches text-input-like regions. A zero MaxBorderRadius
// disables the radius check.
type InputRule struct {
	MinAspect       float64 `yaml:"min_aspect" json:"minAspect"`
	MaxHeight       int     `yaml:"max_height" json:"maxHeight"`
	MaxBorderRadius int     `yaml:"max_border_radius" json:"maxBorderRadius"`
}

// NavItemRule matches navigation items.
type NavItemRule struct {
	MinAspect   float64 `yaml:"min_aspect" json:"minAspect"`
	MaxHeight   int     `yaml:"max_height" json:"maxHeight"`
	RequireText bool    `yaml:"require_text" json:"requireText"`
}

// ClassifierThresholds configures the rule chain. Rules are tried in the
// order button, card, input, nav-item; the first match wins and Fallback is
// used when none match.
type ClassifierThresholds struct {
	Button   ButtonRule  `yaml:"button" json:"button"`
	Card     CardRule    `yaml:"card" json:"card"`
	Input    InputRule   `yaml:"input" json:"input"`
	NavItem  NavItemRule `yaml:"nav_item" json:"navItem"`
	Fallback Type        `yaml:"fallback" json:"fallback" validate:"omitempty,oneof=button card input nav-item container unknown"`
}

// EdgeThresholds are the text-aware defaults used with StrategyEdge.
func EdgeThresholds() ClassifierThresholds {
	return ClassifierThresholds{
		Button:   ButtonRule{MinAspect: 1.5, MaxAspect: 5, MaxArea: 15000, RequireText: true},
		Card:     CardRule{MinArea: 20000, MinBorderRadius: 4},
		Input:    InputRule{MinAspect: 3, MaxHeight: 60, MaxBorderRadius: 8},
		NavItem:  NavItemRule{MinAspect: 2, MaxHeight: 50, RequireText: true},
		Fallback: TypeUnknown,
	}
}

// SimilarityThresholds are the geometry-only defaults used with
// StrategySimilarity.
func SimilarityThresholds() ClassifierThresholds {
	return ClassifierThresholds{
		Button:   ButtonRule{MinAspect: 1.5, MaxAspect: 6, MaxArea: 20000, MaxHeight: 60},
		Card:     CardRule{MinArea: 15000, MaxAspect: 3},
		Input:    InputRule{MinAspect: 3, MaxHeight: 50},
		NavItem:  NavItemRule{MinAspect: 2, MaxHeight: 40},
		Fallback: TypeContainer,
	}
}

// ThresholdsFor returns the default thresholds for a strategy.
func ThresholdsFor(s Strategy) ClassifierThresholds {
	if s == StrategySimilarity {
		return SimilarityThresholds()
	}
	return EdgeThresholds()
}

// Classification is the classifier's verdict.
type Classification struct {
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Classifier assigns a component type from measured features.
type Classifier struct {
	t ClassifierThresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(t ClassifierThresholds) Classifier {
	return Classifier{t: t}
}

// Classify is deterministic: the same inputs always give the same result.
// Colors are accepted for interface symmetry but do not affect any rule.
func (c Classifier) Classify(r Region, _ ColorFeatures, hasText bool, props Properties) Classification {
	return Classification{
		Type:       c.classifyType(r, hasText, props),
		Confidence: Confidence(r),
	}
}

func (c Classifier) classifyType(r Region, hasText bool, props Properties) Type {
	ar := r.AspectRatio()
	area := r.Area()
	t := c.t

	if ar > t.Button.MinAspect && ar < t.Button.MaxAspect && area < t.Button.MaxArea &&
		(t.Button.MaxHeight == 0 || r.Height < t.Button.MaxHeight) &&
		(!t.Button.RequireText || hasText) {
		return TypeButton
	}

	if area > t.Card.MinArea &&
		(t.Card.MaxAspect == 0 || ar < t.Card.MaxAspect) &&
		(t.Card.MinBorderRadius == 0 || props.BorderRadius > t.Card.MinBorderRadius) {
		return TypeCard
	}

	if ar > t.Input.MinAspect && r.Height < t.Input.MaxHeight &&
		(t.Input.MaxBorderRadius == 0 || props.BorderRadius < t.Input.MaxBorderRadius) {
		return TypeInput
	}

	if ar > t.NavItem.MinAspect && r.Height < t.NavItem.MaxHeight &&
		(!t.NavItem.RequireText || hasText) {
		return TypeNavItem
	}

	if t.Fallback == "" {
		return TypeUnknown
	}
	return t.Fallback
}

// Confidence scores how much a region's geometry resembles a typical UI
// component. The result is in [0.5, 1].
func Confidence(r Region) float64 {
	ar := r.AspectRatio()
	area := r.Area()

	// Summed in tenths so a full score is exactly 1.
	tenths := 5
	if ar > 0.5 && ar < 10 {
		tenths += 2
	}
	if area > 400 && area < 50000 {
		tenths += 2
	}
	if r.Width > 30 && r.Height > 20 {
		tenths++
	}
	return math.Min(float64(tenths)/10, 1.0)
}
