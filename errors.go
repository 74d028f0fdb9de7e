package tsumegopdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrNoStore      = errors.New("no puzzle store configured")
	ErrNoSelections = errors.New("no problems selected")
	ErrNoOutput     = errors.New("output path required")
	ErrVerify       = errors.New("written PDF failed verification")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Layout validation errors.
	ErrInvalidColumns      = errors.New("invalid column count")
	ErrInvalidSpacing      = errors.New("invalid spacing")
	ErrInvalidDisplayWidth = errors.New("invalid display width")
	ErrInvalidSquareRatio  = errors.New("invalid square ratio")
	ErrPageTooSmall        = errors.New("page leaves no room for diagrams")

	// Diagram validation errors.
	ErrInvalidColorToPlay = errors.New("invalid color to play")
	ErrInvalidTextHeight  = errors.New("invalid text height")

	// Booklet validation errors.
	ErrInvalidSignatures    = errors.New("invalid signature count")
	ErrInvalidCenterPadding = errors.New("invalid center padding")
)
