package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())

	ids := make([]string, 0, cat.Len())
	for _, tc := range cat.List() {
		ids = append(ids, tc.ID)
	}
	assert.Equal(t, []string{"desktop_components", "button_states", "mobile_layout"}, ids)

	desktop, err := cat.Get("desktop_components")
	require.NoError(t, err)
	assert.Equal(t, 1920, desktop.Viewport.Width)
	assert.Equal(t, "desktop", desktop.Viewport.Type)
	require.Len(t, desktop.ExpectedComponents, 2)

	button := desktop.ExpectedComponents[0]
	assert.Equal(t, detection.TypeButton, button.Type)
	assert.Equal(t, "#3B82F6", button.Properties["backgroundColor"])
	assert.Equal(t, 8, button.Properties["borderRadius"])
	assert.Equal(t, 25.0, button.Tolerance["borderRadius"])

	states, err := cat.Get("button_states")
	require.NoError(t, err)
	require.Len(t, states.ExpectedComponents, 3)
	assert.Equal(t, "hover", states.ExpectedComponents[1].State)

	mobile, err := cat.Get("mobile_layout")
	require.NoError(t, err)
	assert.Equal(t, "100%", mobile.ExpectedComponents[0].Properties["width"])
}

func TestCatalog_GetUnknown(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	_, err = cat.Get("nope")
	require.ErrorIs(t, err, ErrUnknownTestCase)
	assert.Contains(t, err.Error(), "nope")
}

func TestCatalog_ListIsCopy(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	list := cat.List()
	list[0].ID = "mutated"

	_, err = cat.Get("desktop_components")
	require.NoError(t, err)
	assert.Equal(t, "desktop_components", cat.List()[0].ID)
}

func TestNewCatalog_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		cases []TestCase
	}{
		{"missing id", []TestCase{{Name: "x"}}},
		{"missing name", []TestCase{{ID: "x"}}},
		{"duplicate id", []TestCase{{ID: "x", Name: "a"}, {ID: "x", Name: "b"}}},
		{"missing component type", []TestCase{{ID: "x", Name: "x", ExpectedComponents: []Expected{{}}}}},
		{"bad state", []TestCase{{ID: "x", Name: "x", ExpectedComponents: []Expected{{Type: detection.TypeButton, State: "pressed"}}}}},
		{"negative tolerance", []TestCase{{ID: "x", Name: "x", ExpectedComponents: []Expected{
			{Type: detection.TypeButton, Tolerance: map[string]float64{"width": -1}},
		}}}},
		{"bad viewport", []TestCase{{ID: "x", Name: "x", Viewport: Viewport{Type: "watch"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.cases)
			assert.Error(t, err)
		})
	}
}

func TestCatalog_LoadDir(t *testing.T) {
	dir := t.TempDir()
	extra := `testCases:
  - id: login_form
    name: Login Form
    viewport: {width: 1280, height: 800, type: desktop}
    expectedComponents:
      - type: input
        bounds: {x: 100, y: 200}
        properties:
          height: 40
          borderRadius: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.yaml"), []byte(extra), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.yml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	cat, err := DefaultCatalog()
	require.NoError(t, err)
	require.NoError(t, cat.LoadDir(dir))
	assert.Equal(t, 4, cat.Len())

	login, err := cat.Get("login_form")
	require.NoError(t, err)
	require.NotNil(t, login.ExpectedComponents[0].Bounds)
	assert.Equal(t, 200, login.ExpectedComponents[0].Bounds.Y)
}

func TestCatalog_LoadDirDuplicate(t *testing.T) {
	dir := t.TempDir()
	dup := "testCases:\n  - id: mobile_layout\n    name: Again\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.yaml"), []byte(dup), 0o644))

	cat, err := DefaultCatalog()
	require.NoError(t, err)
	err = cat.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestCatalog_LoadDirMissing(t *testing.T) {
	cat, err := NewCatalog(nil)
	require.NoError(t, err)
	assert.NoError(t, cat.LoadDir(""))
	assert.Error(t, cat.LoadDir(filepath.Join(t.TempDir(), "absent")))
}
