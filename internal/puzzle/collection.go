package puzzle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-tsumego-pdf/internal/yamlutil"
)

// Collection is the on-disk form of a puzzle collection.
//
//	name: cho-elementary
//	label: Cho's Elementary
//	problems:
//	  - number: 1
//	    board: "B ..!!@ .!@@. ..@"
//
// Collections with sections list them in reading order instead of
// top-level problems. Problem numbers restart at 1 in every section.
type Collection struct {
	Name        string    `yaml:"name"`
	Label       string    `yaml:"label,omitempty"`
	StateToPlay bool      `yaml:"state_to_play,omitempty"`
	Problems    []Entry   `yaml:"problems,omitempty"`
	Sections    []Section `yaml:"sections,omitempty"`
}

// Section is a named run of problems inside a collection.
type Section struct {
	Name     string  `yaml:"name"`
	Problems []Entry `yaml:"problems"`
}

// Entry is one encoded problem. A zero Number means "next in sequence".
type Entry struct {
	Number int    `yaml:"number,omitempty"`
	Board  string `yaml:"board"`
}

// DisplayLabel returns Label, or Name when no label is set.
func (c *Collection) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Validate checks naming, numbering and every board encoding. Numbers must
// run 1..n within each problem list. Zero numbers are filled in place.
func (c *Collection) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCollection)
	}
	if len(c.Problems) > 0 && len(c.Sections) > 0 {
		return fmt.Errorf("%w: %s: problems and sections are mutually exclusive", ErrInvalidCollection, c.Name)
	}
	if len(c.Problems) == 0 && len(c.Sections) == 0 {
		return fmt.Errorf("%w: %s: no problems", ErrInvalidCollection, c.Name)
	}

	if err := validateEntries(c.Name, c.Problems); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Sections))
	for i := range c.Sections {
		s := &c.Sections[i]
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: %s: section %d has no name", ErrInvalidCollection, c.Name, i+1)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: %s: duplicate section %q", ErrInvalidCollection, c.Name, s.Name)
		}
		seen[s.Name] = true
		if err := validateEntries(c.Name+"/"+s.Name, s.Problems); err != nil {
			return err
		}
	}
	return nil
}

func validateEntries(where string, entries []Entry) error {
	for i := range entries {
		e := &entries[i]
		if e.Number == 0 {
			e.Number = i + 1
		}
		if e.Number != i+1 {
			return fmt.Errorf("%w: %s: problem %d is numbered %d", ErrInvalidCollection, where, i+1, e.Number)
		}
		if _, err := ParseBoard(e.Board); err != nil {
			return fmt.Errorf("%w: %s: problem %d: %w", ErrInvalidCollection, where, e.Number, err)
		}
	}
	return nil
}

// LoadCollectionFile reads and validates one collection file.
func LoadCollectionFile(path string) (*Collection, error) {
	var c Collection
	if err := yamlutil.DecodeFileStrict(path, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// LoadDir loads every *.yaml and *.yml file of dir, sorted by file name.
func LoadDir(dir string) ([]*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading collections dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	cols := make([]*Collection, 0, len(names))
	for _, name := range names {
		c, err := LoadCollectionFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}
