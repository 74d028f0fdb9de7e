package puzzle

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ErrInvalidCollection is returned when a collection document is malformed.
var ErrInvalidCollection = errors.New("invalid collection")

// Kind names what could not be found.
type Kind string

const (
	KindCollection Kind = "collection"
	KindSection    Kind = "section"
	KindProblem    Kind = "problem"
)

// NotFoundError reports a selection that does not resolve to a problem.
type NotFoundError struct {
	Kind       Kind
	Collection string
	Section    string
	Problem    int
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindCollection:
		return fmt.Sprintf("collection %q not found", e.Collection)
	case KindSection:
		return fmt.Sprintf("section %q not found in collection %q", e.Section, e.Collection)
	default:
		if e.Section != "" {
			return fmt.Sprintf("problem %d not found in %s/%s", e.Problem, e.Collection, e.Section)
		}
		return fmt.Sprintf("problem %d not found in %s", e.Problem, e.Collection)
	}
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
