// Package record defines the input model for specification extraction:
// source fields, discrete metadata, dimensions, and per-product records.
package record

import (
	"strings"
)

// FieldKind tags how a raw source field value is encoded.
type FieldKind string

const (
	KindHTML     FieldKind = "html"
	KindRichText FieldKind = "richtext"
	KindText     FieldKind = "text"
	KindNumeric  FieldKind = "numeric"
)

// Valid reports whether the kind is one of the known encodings.
func (k FieldKind) Valid() bool {
	switch k {
	case KindHTML, KindRichText, KindText, KindNumeric:
		return true
	}
	return false
}

// Source ranks order candidates when two sources claim the same key.
// Lower rank wins; within a rank, recognizer order then text order decide.
const (
	RankVariantMeta = 0
	RankProductMeta = 1
	RankText        = 2
	RankDimensions  = 3
)

// SourceField is one raw column value collected for a record. Immutable
// once collected; discarded after extraction.
type SourceField struct {
	Name string
	Raw  string
	Kind FieldKind
}

// SpecCandidate is a provisional (key, value) extraction before
// deduplication. SourceRank encodes which source produced it.
type SpecCandidate struct {
	Key        string
	Value      string
	SourceRank int
}

// Metadata holds the discrete (non text-mined) fields of a product or
// variant. Empty strings mean the field is absent.
type Metadata struct {
	Material string
	Size     string
	Brand    string
	Category string
}

// Candidates returns the metadata candidates in their fixed priority
// order, skipping absent fields.
func (m Metadata) Candidates(rank int) []SpecCandidate {
	var out []SpecCandidate
	add := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			out = append(out, SpecCandidate{Key: key, Value: v, SourceRank: rank})
		}
	}
	add("Material", m.Material)
	add("Size", m.Size)
	add("Brand", m.Brand)
	add("Category", m.Category)
	return out
}

// Dimensions groups the structured width/height/depth fields. Values keep
// whatever unit suffix the source column carried.
type Dimensions struct {
	Width  string
	Height string
	Depth  string
}

// Present reports whether at least one dimension is populated.
func (d Dimensions) Present() bool {
	return strings.TrimSpace(d.Width) != "" ||
		strings.TrimSpace(d.Height) != "" ||
		strings.TrimSpace(d.Depth) != ""
}

// Format joins the populated dimensions as "<W> x <H> x <D>", omitting
// absent components without stray separators.
func (d Dimensions) Format() string {
	var parts []string
	for _, v := range []string{d.Width, d.Height, d.Depth} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " x ")
}

// Variant is one product variant with its own metadata overrides layered
// over the parent product's text-mined candidates.
type Variant struct {
	Key           string // SKU or row handle
	Metadata      Metadata
	Dimensions    Dimensions
	ExistingSpecs []string
}

// Record is one product. Records are independent of each other; nothing
// is shared across records except the immutable rule configuration.
type Record struct {
	Handle        string
	Fields        []SourceField
	Metadata      Metadata
	Dimensions    Dimensions
	ExistingSpecs []string
	Variants      []Variant
}
