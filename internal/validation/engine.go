package validation

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/imaging"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
)

// ReasonNotDetected is the failure reason for an expected component with no match.
const ReasonNotDetected = "Component not detected"

// matchDistance is the exclusive limit on |dx| and |dy| when bounds are given.
const matchDistance = 50

// Tolerance are the engine-wide tolerance settings. Lookup order for a
// property is the fixture override, then Properties, then Categories (by the
// property's category), then Default.
type Tolerance struct {
	Default    float64            `yaml:"default" json:"default" validate:"gte=0"`
	Categories map[string]float64 `yaml:"categories,omitempty" json:"categories,omitempty" validate:"omitempty,dive,keys,oneof=colors spacing typography borderRadius,endkeys,gte=0"`
	Properties map[string]float64 `yaml:"properties,omitempty" json:"properties,omitempty" validate:"omitempty,dive,gte=0"`
}

// DefaultTolerance returns a 10% default with no overrides.
func DefaultTolerance() Tolerance {
	return Tolerance{Default: 10}
}

// Category returns the tolerance category of a property key, or "" if none.
func Category(property string) string {
	switch {
	case property == "borderRadius":
		return "borderRadius"
	case strings.HasPrefix(property, "padding"), strings.HasPrefix(property, "margin"),
		property == "gap":
		return "spacing"
	case strings.HasPrefix(property, "font"), property == "lineHeight", property == "letterSpacing":
		return "typography"
	case property == "color", strings.HasSuffix(property, "Color"), strings.HasSuffix(property, ".color"):
		return "colors"
	}
	return ""
}

// Engine compares detected components against expected fixtures.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog   *Catalog
	tolerance Tolerance
}

// NewEngine creates an engine. catalog may be nil if only Validate is used.
func NewEngine(catalog *Catalog, tolerance Tolerance) *Engine {
	return &Engine{catalog: catalog, tolerance: tolerance}
}

// Catalog returns the engine's fixture catalog, which may be nil.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// RunTestCase validates actual against the catalog test case id.
func (e *Engine) RunTestCase(id string, actual []detection.Component) (Result, error) {
	if e.catalog == nil {
		return Result{}, ErrUnknownTestCase
	}
	tc, err := e.catalog.Get(id)
	if err != nil {
		return Result{}, err
	}
	return e.Validate(tc.ID, tc.ExpectedComponents, actual), nil
}

// RunAll validates every catalog test case. Cases missing from actual are
// validated against an empty component list.
func (e *Engine) RunAll(actual map[string][]detection.Component) Summary {
	var cases []TestCase
	if e.catalog != nil {
		cases = e.catalog.List()
	}
	results := make([]Result, 0, len(cases))
	for _, tc := range cases {
		results = append(results, e.Validate(tc.ID, tc.ExpectedComponents, actual[tc.ID]))
	}
	return Summary{
		Results:         results,
		OverallAccuracy: OverallAccuracy(results),
		CompletedTests:  len(results),
		TotalTests:      len(cases),
	}
}

// OverallAccuracy is the mean accuracy of results, or 0 for none.
func OverallAccuracy(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Accuracy
	}
	return sum / float64(len(results))
}

// Validate compares each expected component with the first matching actual
// component. It never fails: a missing match is a failed detail.
func (e *Engine) Validate(testCaseID string, expected []Expected, actual []detection.Component) Result {
	res := Result{TestCaseID: testCaseID, Details: make([]Detail, 0, len(expected))}

	for _, exp := range expected {
		match := findMatch(exp, actual)
		if match == nil {
			res.Failed++
			res.Details = append(res.Details, Detail{Expected: exp, Passed: false, Reason: ReasonNotDetected})
			continue
		}

		validations, passed := e.validateProperties(exp, *match)
		if passed {
			res.Passed++
		} else {
			res.Failed++
		}
		res.Details = append(res.Details, Detail{
			Expected:            exp,
			Actual:              match,
			Passed:              passed,
			PropertyValidations: validations,
		})
	}

	if total := res.Passed + res.Failed; total > 0 {
		res.Accuracy = float64(res.Passed) / float64(total) * 100
	}

	logger.L().Debug("validated test case",
		zap.String("test_case", testCaseID),
		zap.Int("passed", res.Passed),
		zap.Int("failed", res.Failed),
		zap.Float64("accuracy", res.Accuracy))
	return res
}

func findMatch(exp Expected, actual []detection.Component) *detection.Component {
	for i := range actual {
		c := &actual[i]
		if c.Type != exp.Type {
			continue
		}
		if exp.Bounds != nil {
			dx := c.Bounds.X - exp.Bounds.X
			dy := c.Bounds.Y - exp.Bounds.Y
			if abs(dx) >= matchDistance || abs(dy) >= matchDistance {
				continue
			}
		}
		return c
	}
	return nil
}

func (e *Engine) validateProperties(exp Expected, actual detection.Component) (map[string]PropertyValidation, bool) {
	view := PropertyView(actual, exp.State)
	out := make(map[string]PropertyValidation, len(exp.Properties))
	all := true
	for key, want := range exp.Properties {
		tol := e.toleranceFor(exp, key)
		got := view[key]
		valid, deviation := Compare(want, got, tol)
		out[key] = PropertyValidation{
			Expected:  want,
			Actual:    got,
			Tolerance: tol,
			Valid:     valid,
			Deviation: deviation,
		}
		if !valid {
			all = false
		}
	}
	return out, all
}

func (e *Engine) toleranceFor(exp Expected, property string) float64 {
	if t, ok := exp.Tolerance[property]; ok {
		return t
	}
	if t, ok := e.tolerance.Properties[property]; ok {
		return t
	}
	if cat := Category(property); cat != "" {
		if t, ok := e.tolerance.Categories[cat]; ok {
			return t
		}
	}
	return e.tolerance.Default
}

// Compare judges one property value against its expectation under a
// percentage tolerance and returns the verdict and the deviation in percent.
//
//   - numbers: deviation |e-a|/|e|*100; an expected 0 deviates 0 or 100
//   - colors: deviation 100-similarity, where similarity is the RGB distance
//     normalized to 0-100; passes when similarity >= 100-tol
//   - other strings: case-insensitive equality, deviation 0 or 100
//
// A nil actual or a type mismatch fails with deviation 100.
func Compare(expected, actual any, tolerance float64) (bool, float64) {
	if actual == nil {
		return false, 100
	}

	if e, ok := toFloat(expected); ok {
		a, ok := toFloat(actual)
		if !ok {
			return false, 100
		}
		var deviation float64
		switch {
		case e == 0 && a == 0:
			deviation = 0
		case e == 0:
			deviation = 100
		default:
			deviation = math.Abs(e-a) / math.Abs(e) * 100
		}
		return deviation <= tolerance, deviation
	}

	if es, ok := expected.(string); ok {
		as, ok := actual.(string)
		if !ok {
			return false, 100
		}
		if imaging.IsColorString(es) {
			if sim, ok := colorSimilarity(es, as); ok {
				return sim >= 100-tolerance, 100 - sim
			}
			if es == as {
				return true, 0
			}
			return false, 100
		}
		if strings.EqualFold(es, as) {
			return true, 0
		}
		return false, 100
	}

	if eb, ok := expected.(bool); ok {
		if ab, ok := actual.(bool); ok && ab == eb {
			return true, 0
		}
	}
	return false, 100
}

// colorSimilarity returns the 0-100 similarity of two color strings, or
// false if either does not parse.
func colorSimilarity(a, b string) (float64, bool) {
	ca, err := imaging.ParseColor(a)
	if err != nil {
		return 0, false
	}
	cb, err := imaging.ParseColor(b)
	if err != nil {
		return 0, false
	}
	sim := (1 - ca.Distance(cb)/imaging.MaxRGBDistance) * 100
	return math.Max(0, math.Min(100, sim)), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
