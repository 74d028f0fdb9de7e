// Package puzzle resolves puzzle selections into boards.
//
// Boards use a compact text encoding: the first character is the color to
// play ('B' or 'W'), followed by board rows separated by single spaces.
// Within a row '@' is a black stone, '!' a white stone, 'X' a solution point
// and '1'-'9' numbered key moves. Circled numerals are numbered stones.
// Every other character is an empty intersection.
package puzzle

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// BoardSize is the number of lines of a full board.
const BoardSize = 19

// Color is a stone color.
type Color int

const (
	Black Color = iota
	White
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// ErrInvalidBoard is returned when a board string cannot be parsed.
var ErrInvalidBoard = errors.New("invalid board")

const (
	blackNumbered = "❶❷❸❹❺❻❼❽❾❿⓫⓬⓭⓮⓯⓰⓱⓲⓳⓴"
	whiteNumbered = "①②③④⑤⑥⑦⑧⑨⑩⑪⑫⑬⑭⑮⑯⑰⑱⑲⑳"
)

// Stone is a stone placed on the board.
type Stone struct {
	At    image.Point
	Color Color
}

// KeyMove is a numbered move shown in solution diagrams. Stone is true when
// the move is drawn as a numbered stone of the given color.
type KeyMove struct {
	At    image.Point
	Label string
	Stone bool
	Color Color
}

// Board is a parsed puzzle position in board coordinates (0..18).
type Board struct {
	ToPlay    Color
	Stones    []Stone
	Solutions []image.Point
	KeyMoves  []KeyMove

	// Extent is the stone bounding box measured from the top-left corner:
	// the number of columns and rows spanned by stones.
	Extent image.Point
}

// ParseBoard decodes the compact board encoding.
func ParseBoard(s string) (Board, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Board{}, fmt.Errorf("%w: empty", ErrInvalidBoard)
	}

	var b Board
	switch s[0] {
	case 'B':
		b.ToPlay = Black
	case 'W':
		b.ToPlay = White
	default:
		return Board{}, fmt.Errorf("%w: color prefix %q, want 'B' or 'W'", ErrInvalidBoard, s[0])
	}

	rows := strings.Split(s[1:], " ")
	if len(rows) > BoardSize {
		return Board{}, fmt.Errorf("%w: %d rows (max %d)", ErrInvalidBoard, len(rows), BoardSize)
	}

	for y, row := range rows {
		x := 0
		for _, r := range row {
			if x >= BoardSize {
				return Board{}, fmt.Errorf("%w: row %d exceeds %d columns", ErrInvalidBoard, y+1, BoardSize)
			}
			p := image.Pt(x, y)
			switch {
			case r == '@':
				b.addStone(p, Black)
			case r == '!':
				b.addStone(p, White)
			case r == 'X':
				b.Solutions = append(b.Solutions, p)
			case r >= '1' && r <= '9':
				b.KeyMoves = append(b.KeyMoves, KeyMove{At: p, Label: string(r)})
			case strings.ContainsRune(blackNumbered, r):
				b.addStone(p, Black)
				b.KeyMoves = append(b.KeyMoves, KeyMove{At: p, Label: numeral(blackNumbered, r), Stone: true, Color: Black})
			case strings.ContainsRune(whiteNumbered, r):
				b.addStone(p, White)
				b.KeyMoves = append(b.KeyMoves, KeyMove{At: p, Label: numeral(whiteNumbered, r), Stone: true, Color: White})
			}
			x++
		}
	}
	return b, nil
}

func (b *Board) addStone(p image.Point, c Color) {
	b.Stones = append(b.Stones, Stone{At: p, Color: c})
	b.Extent.X = max(b.Extent.X, p.X+1)
	b.Extent.Y = max(b.Extent.Y, p.Y+1)
}

func numeral(set string, r rune) string {
	i := 0
	for _, c := range set {
		i++
		if c == r {
			break
		}
	}
	return fmt.Sprint(i)
}
