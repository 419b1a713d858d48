// Package normalize strips markup and rich-text envelopes from raw source
// field values, producing plain text for pattern extraction. Every function
// here is total: malformed input degrades to best-effort or empty text,
// never an error.
package normalize

import (
	"strings"

	"github.com/catalogforge/specline/internal/record"
)

// Text normalizes a raw field value according to its declared kind.
// Unknown kinds fall through to trimmed pass-through; the caller is
// responsible for reporting them as configuration errors.
func Text(raw string, kind record.FieldKind) string {
	switch kind {
	case record.KindHTML:
		return FromHTML(raw)
	case record.KindRichText:
		return FromRichText(raw)
	default:
		return strings.TrimSpace(raw)
	}
}

// Fields normalizes each source field of a record and joins the results
// with newlines, preserving source order.
func Fields(fields []record.SourceField) string {
	var parts []string
	for _, f := range fields {
		if text := Text(f.Raw, f.Kind); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// collapseSpace rewrites runs of whitespace as single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
