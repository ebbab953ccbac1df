package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parsedMarkup is the view of a document the engine needs: its plain body
// text and, for every table in document order, the text of each row's cells.
type parsedMarkup struct {
	text   string
	tables [][][]string
}

// parseMarkup parses markup text.
//
// Rows are collected with descendant selectors, so a table's row list also
// contains the rows of tables nested inside it, and nested tables are visited
// again on their own. Word-processor HTML relies on that layout.
func parseMarkup(markup string) (*parsedMarkup, error) {
	if strings.IndexByte(markup, 0) >= 0 {
		return nil, ErrNotMarkup
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.ToValidUTF8(markup, "\uFFFD")))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMarkup, err)
	}

	parsed := &parsedMarkup{
		text:   documentText(doc.Nodes...),
		tables: make([][][]string, 0),
	}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := make([][]string, 0)
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := make([]string, 0)
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cellText(cell.Nodes...))
			})
			rows = append(rows, cells)
		})
		parsed.tables = append(parsed.tables, rows)
	})

	return parsed, nil
}

// cellText joins the trimmed text nodes below the given nodes without a
// separator, dropping text nodes that are only whitespace.
func cellText(nodes ...*html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(strings.TrimSpace(n.Data))
			return
		case html.ElementNode:
			if isInvisible(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return sb.String()
}

// documentText concatenates every visible text node verbatim, keeping the
// original whitespace and line breaks the identity patterns depend on.
func documentText(nodes ...*html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if isInvisible(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return sb.String()
}

// isInvisible reports whether an element's text is never rendered.
func isInvisible(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}
