package cover

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// Text is the wording printed under the cover graphic.
type Text struct {
	Title string
	Lines []string
}

// ParseText reads cover text from Markdown: the first heading becomes the
// title and every paragraph line a subtitle line. Inline markup is dropped.
func ParseText(src []byte) Text {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var t Text
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			if t.Title == "" {
				t.Title = strings.TrimSpace(inlineText(n, src))
				return ast.WalkSkipChildren, nil
			}
			t.Lines = appendLines(t.Lines, inlineText(n, src))
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock:
			t.Lines = appendLines(t.Lines, inlineText(n, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return t
}

// inlineText concatenates the text under n, keeping soft line breaks.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func appendLines(lines []string, s string) []string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
