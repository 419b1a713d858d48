package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// FromHTML strips tags from an HTML fragment and returns the visible text
// with entities decoded and whitespace collapsed. The x/net/html parser is
// error-tolerant, so malformed or unknown tags are dropped rather than
// failing; a hard parse error yields empty text.
func FromHTML(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var b strings.Builder
	collectText(doc, &b)
	return collapseSpace(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
