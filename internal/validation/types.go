package validation

import (
	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
)

// Bounds is the expected position of a component. Only X and Y take part in
// matching; Width and Height are informational.
type Bounds struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`
}

// Expected is one statically authored component a detection run should find.
//
// Property keys are paths into the flattened property view of a detected
// component (see PropertyView). Values are numbers, color strings ("#RRGGBB"
// or "rgb(r,g,b)") or plain strings.
type Expected struct {
	Type       detection.Type     `yaml:"type" json:"type" validate:"required"`
	State      string             `yaml:"state,omitempty" json:"state,omitempty" validate:"omitempty,oneof=default hover active"`
	Bounds     *Bounds            `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Properties map[string]any     `yaml:"properties" json:"properties"`
	Tolerance  map[string]float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty" validate:"omitempty,dive,gte=0"`
}

// Viewport describes the screen the fixture image was captured at.
type Viewport struct {
	Width  int    `yaml:"width" json:"width" validate:"gte=0"`
	Height int    `yaml:"height" json:"height" validate:"gte=0"`
	Type   string `yaml:"type" json:"type" validate:"omitempty,oneof=desktop tablet mobile"`
}

// TestCase is a named group of expected components for one screenshot.
type TestCase struct {
	ID                 string     `yaml:"id" json:"id" validate:"required"`
	Name               string     `yaml:"name" json:"name" validate:"required"`
	Description        string     `yaml:"description,omitempty" json:"description,omitempty"`
	ImagePath          string     `yaml:"imagePath,omitempty" json:"imagePath,omitempty"`
	Viewport           Viewport   `yaml:"viewport" json:"viewport"`
	ExpectedComponents []Expected `yaml:"expectedComponents" json:"expectedComponents" validate:"dive"`
}

// PropertyValidation is the outcome of comparing one property.
type PropertyValidation struct {
	Expected  any     `json:"expected"`
	Actual    any     `json:"actual"`
	Tolerance float64 `json:"tolerance"`
	Valid     bool    `json:"valid"`
	Deviation float64 `json:"deviation"`
}

// Detail is the verdict for one expected component. Actual is nil when no
// detected component matched.
type Detail struct {
	Expected            Expected                      `json:"expected"`
	Actual              *detection.Component          `json:"actual"`
	Passed              bool                          `json:"passed"`
	Reason              string                        `json:"reason,omitempty"`
	PropertyValidations map[string]PropertyValidation `json:"propertyValidations,omitempty"`
}

// Result is the outcome of validating one test case.
type Result struct {
	TestCaseID string   `json:"testCaseId"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	Accuracy   float64  `json:"accuracy"`
	Details    []Detail `json:"details"`
}

// Summary aggregates the results of several test cases.
type Summary struct {
	Results         []Result `json:"results"`
	OverallAccuracy float64  `json:"overallAccuracy"`
	CompletedTests  int      `json:"completedTests"`
	TotalTests      int      `json:"totalTests"`
}
