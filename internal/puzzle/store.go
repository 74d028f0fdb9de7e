package puzzle

import (
	"context"
	"fmt"
)

// Selection identifies one problem. Section is empty for collections
// without sections.
type Selection struct {
	Problem    int
	Collection string
	Section    string
}

func (s Selection) String() string {
	if s.Section != "" {
		return fmt.Sprintf("%s/%s#%d", s.Collection, s.Section, s.Problem)
	}
	return fmt.Sprintf("%s#%d", s.Collection, s.Problem)
}

// Problem is a resolved selection.
type Problem struct {
	Selection

	// CollectionLabel is the display name of the collection.
	CollectionLabel string
	// SectionNumber is the 1-based position of the section, 0 without one.
	SectionNumber int
	// StateToPlay is set for collections whose problems mix colors to play.
	StateToPlay bool

	Board Board
}

// CollectionInfo summarizes a stored collection.
type CollectionInfo struct {
	Name     string
	Label    string
	Sections []string
	Problems int
}

// Store resolves selections. Implementations are safe for concurrent use.
type Store interface {
	Problem(ctx context.Context, sel Selection) (*Problem, error)
	ProblemCount(ctx context.Context, collection, section string) (int, error)
	Sections(ctx context.Context, collection string) ([]string, error)
	Collections(ctx context.Context) ([]CollectionInfo, error)
}

// AllSelections lists every problem of a collection in order. For
// collections with sections, sections are visited in their stored order.
// A non-empty section restricts the listing to that section.
func AllSelections(ctx context.Context, s Store, collection, section string) ([]Selection, error) {
	sections := []string{section}
	if section == "" {
		var err error
		if sections, err = s.Sections(ctx, collection); err != nil {
			return nil, err
		}
		if len(sections) == 0 {
			sections = []string{""}
		}
	}

	var sels []Selection
	for _, name := range sections {
		n, err := s.ProblemCount(ctx, collection, name)
		if err != nil {
			return nil, err
		}
		for i := 1; i <= n; i++ {
			sels = append(sels, Selection{Problem: i, Collection: collection, Section: name})
		}
	}
	return sels, nil
}
