package normalize

import (
	"encoding/json"
	"strings"
)

// FromRichText extracts the textual leaf content of a rich-text editor
// document (a JSON tree of typed block/text nodes) in document order.
// Paragraphs and list items are joined with single spaces. Malformed JSON
// yields empty text so extraction degrades gracefully instead of aborting
// the record.
func FromRichText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return ""
	}

	var parts []string
	walkRichText(doc, &parts)
	return collapseSpace(strings.Join(parts, " "))
}

// walkRichText visits nodes depth-first. Text leaves carry their content
// under "text" (most editors) or "value" (Shopify metafield rich text);
// child nodes live under "children" or "content".
func walkRichText(node interface{}, parts *[]string) {
	switch v := node.(type) {
	case map[string]interface{}:
		if s, ok := v["text"].(string); ok && strings.TrimSpace(s) != "" {
			*parts = append(*parts, s)
		} else if s, ok := v["value"].(string); ok && strings.TrimSpace(s) != "" {
			*parts = append(*parts, s)
		}
		if children, ok := v["children"].([]interface{}); ok {
			for _, child := range children {
				walkRichText(child, parts)
			}
		}
		if content, ok := v["content"].([]interface{}); ok {
			for _, child := range content {
				walkRichText(child, parts)
			}
		}
	case []interface{}:
		for _, child := range v {
			walkRichText(child, parts)
		}
	}
}
