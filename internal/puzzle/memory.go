package puzzle

import (
	"context"
	"fmt"
	"sort"
)

// MemoryStore serves collections held in memory. It is read-only after
// construction and therefore safe for concurrent use.
type MemoryStore struct {
	collections map[string]*Collection
}

// NewMemoryStore validates and indexes the given collections.
func NewMemoryStore(cols ...*Collection) (*MemoryStore, error) {
	m := &MemoryStore{collections: make(map[string]*Collection, len(cols))}
	for _, c := range cols {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.collections[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate collection %q", ErrInvalidCollection, c.Name)
		}
		m.collections[c.Name] = c
	}
	return m, nil
}

func (m *MemoryStore) lookup(collection, section string) (*Collection, []Entry, int, error) {
	c, ok := m.collections[collection]
	if !ok {
		return nil, nil, 0, &NotFoundError{Kind: KindCollection, Collection: collection}
	}
	if section == "" {
		if len(c.Sections) > 0 {
			return nil, nil, 0, &NotFoundError{Kind: KindSection, Collection: collection}
		}
		return c, c.Problems, 0, nil
	}
	for i, s := range c.Sections {
		if s.Name == section {
			return c, s.Problems, i + 1, nil
		}
	}
	return nil, nil, 0, &NotFoundError{Kind: KindSection, Collection: collection, Section: section}
}

func (m *MemoryStore) Problem(_ context.Context, sel Selection) (*Problem, error) {
	c, entries, sectionNum, err := m.lookup(sel.Collection, sel.Section)
	if err != nil {
		return nil, err
	}
	if sel.Problem < 1 || sel.Problem > len(entries) {
		return nil, &NotFoundError{Kind: KindProblem, Collection: sel.Collection, Section: sel.Section, Problem: sel.Problem}
	}
	b, err := ParseBoard(entries[sel.Problem-1].Board)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sel, err)
	}
	return &Problem{
		Selection:       sel,
		CollectionLabel: c.DisplayLabel(),
		SectionNumber:   sectionNum,
		StateToPlay:     c.StateToPlay,
		Board:           b,
	}, nil
}

func (m *MemoryStore) ProblemCount(_ context.Context, collection, section string) (int, error) {
	_, entries, _, err := m.lookup(collection, section)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (m *MemoryStore) Sections(_ context.Context, collection string) ([]string, error) {
	c, ok := m.collections[collection]
	if !ok {
		return nil, &NotFoundError{Kind: KindCollection, Collection: collection}
	}
	return sectionNames(c), nil
}

func (m *MemoryStore) Collections(_ context.Context) ([]CollectionInfo, error) {
	infos := make([]CollectionInfo, 0, len(m.collections))
	for _, c := range m.collections {
		n := len(c.Problems)
		for _, s := range c.Sections {
			n += len(s.Problems)
		}
		infos = append(infos, CollectionInfo{
			Name:     c.Name,
			Label:    c.DisplayLabel(),
			Sections: sectionNames(c),
			Problems: n,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func sectionNames(c *Collection) []string {
	names := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		names[i] = s.Name
	}
	return names
}
