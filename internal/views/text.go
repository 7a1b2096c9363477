package views

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements start a new line in plain text output.
var blockElements = map[atom.Atom]bool{
	atom.Article: true,
	atom.Br:      true,
	atom.Div:     true,
	atom.Form:    true,
	atom.H1:      true,
	atom.H2:      true,
	atom.H3:      true,
	atom.Li:      true,
	atom.Main:    true,
	atom.Nav:     true,
	atom.P:       true,
	atom.Section: true,
	atom.Ul:      true,
}

// PlainText renders component and returns its visible text, one block
// element per line. Scripts and styles are dropped.
func PlainText(ctx context.Context, component templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("rendering component: %w", err)
	}

	doc, err := html.Parse(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		line := strings.Join(strings.Fields(current.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteByte(' ')
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Head {
				return
			}
			if blockElements[n.DataAtom] {
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	flush()

	return strings.Join(lines, "\n"), nil
}
