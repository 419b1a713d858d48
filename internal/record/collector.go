package record

import (
	"strings"
)

// FieldSource maps one logical field name to a source column and its
// encoding.
type FieldSource struct {
	Name   string    `yaml:"name"`
	Column string    `yaml:"column"`
	Kind   FieldKind `yaml:"kind"`
}

// MetadataColumns maps the discrete metadata fields to source columns.
type MetadataColumns struct {
	Material string `yaml:"material"`
	Size     string `yaml:"size"`
	Vendor   string `yaml:"vendor"`
	Type     string `yaml:"type"`
}

// DimensionColumns maps the structured dimension fields to source columns.
type DimensionColumns struct {
	Width  string `yaml:"width"`
	Height string `yaml:"height"`
	Depth  string `yaml:"depth"`
}

// FieldMapping is the configuration mapping logical field names to source
// columns for one feed.
type FieldMapping struct {
	Handle     string           `yaml:"handle"`
	Sources    []FieldSource    `yaml:"sources"`
	Metadata   MetadataColumns  `yaml:"metadata"`
	Dimensions DimensionColumns `yaml:"dimensions"`
	SpecList   string           `yaml:"spec_list"`
}

// Collect builds a Record from one row of raw column values, skipping
// fields whose raw value is absent or empty.
func Collect(row map[string]string, mapping FieldMapping) Record {
	rec := Record{
		Handle:        strings.TrimSpace(row[mapping.Handle]),
		Metadata:      collectMetadata(row, mapping.Metadata),
		Dimensions:    collectDimensions(row, mapping.Dimensions),
		ExistingSpecs: ParseSpecList(row[mapping.SpecList]),
	}

	for _, src := range mapping.Sources {
		raw := strings.TrimSpace(row[src.Column])
		if raw == "" {
			continue
		}
		rec.Fields = append(rec.Fields, SourceField{Name: src.Name, Raw: raw, Kind: src.Kind})
	}

	return rec
}

// CollectVariant builds a Variant from one row, reading only the
// variant-level metadata and dimension columns.
func CollectVariant(key string, row map[string]string, mapping FieldMapping) Variant {
	return Variant{
		Key:           key,
		Metadata:      collectMetadata(row, mapping.Metadata),
		Dimensions:    collectDimensions(row, mapping.Dimensions),
		ExistingSpecs: ParseSpecList(row[mapping.SpecList]),
	}
}

func collectMetadata(row map[string]string, cols MetadataColumns) Metadata {
	return Metadata{
		Material: strings.TrimSpace(row[cols.Material]),
		Size:     strings.TrimSpace(row[cols.Size]),
		Brand:    strings.TrimSpace(row[cols.Vendor]),
		Category: strings.TrimSpace(row[cols.Type]),
	}
}

func collectDimensions(row map[string]string, cols DimensionColumns) Dimensions {
	return Dimensions{
		Width:  strings.TrimSpace(row[cols.Width]),
		Height: strings.TrimSpace(row[cols.Height]),
		Depth:  strings.TrimSpace(row[cols.Depth]),
	}
}

// ParseSpecList decodes a persisted spec list cell. The surrounding system
// stores lists as JSON arrays of strings; a bare non-empty cell is treated
// as a single-entry list so the skip policy still sees it as populated.
func ParseSpecList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if entries, ok := decodeJSONStrings(raw); ok {
		return entries
	}
	return []string{raw}
}
