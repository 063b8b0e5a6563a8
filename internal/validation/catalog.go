package validation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTestCase is returned when a test case id is not in the catalog.
var ErrUnknownTestCase = errors.New("unknown test case")

//go:embed fixtures/*.yaml
var builtinFixtures embed.FS

var fixtureValidate = validator.New()

// fixtureFile is the on-disk layout of a fixture document.
type fixtureFile struct {
	TestCases []TestCase `yaml:"testCases"`
}

// Catalog is an ordered, read-only set of test cases indexed by id.
type Catalog struct {
	cases []TestCase
	index map[string]int
}

// NewCatalog builds a catalog, rejecting invalid cases and duplicate ids.
func NewCatalog(cases []TestCase) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(cases))}
	for _, tc := range cases {
		if err := c.add(tc); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(tc TestCase) error {
	if err := fixtureValidate.Struct(tc); err != nil {
		return fmt.Errorf("invalid test case %q: %w", tc.ID, err)
	}
	if _, dup := c.index[tc.ID]; dup {
		return fmt.Errorf("duplicate test case id %q", tc.ID)
	}
	c.index[tc.ID] = len(c.cases)
	c.cases = append(c.cases, tc)
	return nil
}

// DefaultCatalog returns the built-in fixture catalog.
func DefaultCatalog() (*Catalog, error) {
	entries, err := builtinFixtures.ReadDir("fixtures")
	if err != nil {
		return nil, fmt.Errorf("read builtin fixtures: %w", err)
	}
	c := &Catalog{index: make(map[string]int)}
	for _, e := range entries {
		data, err := builtinFixtures.ReadFile("fixtures/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin fixture %s: %w", e.Name(), err)
		}
		if err := c.load(bytes.NewReader(data), e.Name()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadDir adds every *.yaml and *.yml file in dir to the catalog, in
// lexical file order. An empty dir is a no-op.
func (c *Catalog) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read fixtures dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("open fixture: %w", err)
		}
		err = c.load(f, name)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) load(r io.Reader, source string) error {
	var doc fixtureFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse fixture %s: %w", source, err)
	}
	for _, tc := range doc.TestCases {
		if err := c.add(tc); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return nil
}

// Get returns the test case with the given id.
func (c *Catalog) Get(id string) (TestCase, error) {
	i, ok := c.index[id]
	if !ok {
		return TestCase{}, fmt.Errorf("%w: %s", ErrUnknownTestCase, id)
	}
	return c.cases[i], nil
}

// List returns all test cases in load order.
func (c *Catalog) List() []TestCase {
	out := make([]TestCase, len(c.cases))
	copy(out, c.cases)
	return out
}

// Len returns the number of test cases.
func (c *Catalog) Len() int {
	return len(c.cases)
}
