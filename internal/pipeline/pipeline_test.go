package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogforge/specline/internal/observability"
	"github.com/catalogforge/specline/internal/record"
)

func newTestPipeline(opts Options) *Pipeline {
	logger := observability.NewLogger(observability.LogConfig{Level: "disabled"})
	return New(logger, nil, opts)
}

func TestProcess_CoffeeGrinder(t *testing.T) {
	p := newTestPipeline(Options{})
	rec := record.Record{
		Handle: "salton-grinder",
		Fields: []record.SourceField{
			{Name: "title", Raw: "Salton Stainless Steel Coffee Maker", Kind: record.KindText},
			{Name: "body", Raw: "<p>Brews 12 cups. Backed by a 2-year warranty. Features 6 precision grind settings.</p>", Kind: record.KindHTML},
		},
	}

	res := p.Process(rec)
	assert.False(t, res.Skipped)
	assert.Equal(t, []string{
		"Material: Stainless Steel",
		"Capacity: 12 cup",
		"Warranty: 2-year warranty",
		"Settings: 6 setting",
	}, res.Specs)
	assert.Equal(t, 4, res.Extracted)
}

func TestProcess_MetadataOutranksText(t *testing.T) {
	p := newTestPipeline(Options{})
	rec := record.Record{
		Handle:   "mug-1",
		Metadata: record.Metadata{Material: "Ceramic"},
		Fields: []record.SourceField{
			{Name: "body", Raw: "looks like stainless steel", Kind: record.KindText},
		},
	}

	res := p.Process(rec)
	assert.Contains(t, res.Specs, "Material: Ceramic")
	assert.NotContains(t, res.Specs, "Material: Stainless Steel")
}

func TestProcess_DimensionsAppendedLast(t *testing.T) {
	p := newTestPipeline(Options{})
	rec := record.Record{
		Handle:     "board-1",
		Metadata:   record.Metadata{Material: "Bamboo"},
		Dimensions: record.Dimensions{Width: "10in", Height: "5in"},
	}

	res := p.Process(rec)
	assert.Equal(t, []string{"Material: Bamboo", "Dimensions: 10in x 5in"}, res.Specs)
}

func TestProcess_SkipsPopulatedRecord(t *testing.T) {
	p := newTestPipeline(Options{})
	rec := record.Record{
		Handle:        "done-1",
		ExistingSpecs: []string{"Material: Glass"},
		Fields: []record.SourceField{
			{Name: "title", Raw: "ceramic bowl", Kind: record.KindText},
		},
	}

	res := p.Process(rec)
	assert.True(t, res.Skipped)
	assert.Equal(t, []string{"Material: Glass"}, res.Specs)
	assert.Zero(t, res.Extracted)
}

func TestProcess_OverwriteRecomputes(t *testing.T) {
	p := newTestPipeline(Options{Overwrite: true})
	rec := record.Record{
		Handle:        "done-1",
		ExistingSpecs: []string{"Material: Glass"},
		Fields: []record.SourceField{
			{Name: "title", Raw: "ceramic bowl", Kind: record.KindText},
		},
	}

	res := p.Process(rec)
	assert.False(t, res.Skipped)
	assert.Equal(t, []string{"Material: Ceramic"}, res.Specs)
}

func TestProcess_OverwriteIsIdempotent(t *testing.T) {
	p := newTestPipeline(Options{Overwrite: true})
	rec := record.Record{
		Handle: "kettle-1",
		Fields: []record.SourceField{
			{Name: "title", Raw: "1.7 liter glass kettle, 1500 watts", Kind: record.KindText},
		},
	}

	first := p.Process(rec)
	rec.ExistingSpecs = first.Specs
	second := p.Process(rec)
	assert.Equal(t, first.Specs, second.Specs)
}

func TestProcess_MaxEntriesTruncates(t *testing.T) {
	p := newTestPipeline(Options{MaxEntries: 2})
	rec := record.Record{
		Handle: "kettle-1",
		Fields: []record.SourceField{
			{Name: "title", Raw: "1.7 liter glass kettle, 1500 watts, 2-year warranty", Kind: record.KindText},
		},
	}

	res := p.Process(rec)
	assert.Equal(t, []string{"Material: Glass", "Capacity: 1.7 liter"}, res.Specs)
}

func TestProcess_MalformedRichTextDegrades(t *testing.T) {
	p := newTestPipeline(Options{})
	rec := record.Record{
		Handle: "mixer-1",
		Fields: []record.SourceField{
			{Name: "bullets", Raw: `{"children": [`, Kind: record.KindRichText},
			{Name: "title", Raw: "copper mixing bowl", Kind: record.KindText},
		},
	}

	res := p.Process(rec)
	assert.Equal(t, []string{"Material: Copper"}, res.Specs)
}

func TestProcess_EmptyRecord(t *testing.T) {
	p := newTestPipeline(Options{})
	res := p.Process(record.Record{Handle: "blank-1"})
	assert.False(t, res.Skipped)
	assert.Empty(t, res.Specs)
}

func TestProcessVariant_MetadataOverridesProductText(t *testing.T) {
	p := newTestPipeline(Options{})
	rec := record.Record{
		Handle:     "pan-1",
		Dimensions: record.Dimensions{Width: "12in"},
		Fields: []record.SourceField{
			{Name: "title", Raw: "stainless steel frying pan", Kind: record.KindText},
		},
		Variants: []record.Variant{
			{Key: "pan-1#1", Metadata: record.Metadata{Material: "Copper"}},
			{Key: "pan-1#2", Dimensions: record.Dimensions{Width: "8in"}},
		},
	}

	res := p.Process(rec)
	require.Len(t, res.Variants, 2)

	// Variant metadata beats the product's text-mined material.
	assert.Equal(t, []string{"Material: Copper", "Dimensions: 12in"}, res.Variants[0].Specs)
	// A variant without its own dimensions inherits the product's;
	// its own dimensions win when present.
	assert.Equal(t, []string{"Material: Stainless Steel", "Dimensions: 8in"}, res.Variants[1].Specs)
}

func TestProcessVariant_SkipPolicyPerVariant(t *testing.T) {
	p := newTestPipeline(Options{})
	rec := record.Record{
		Handle: "pan-2",
		Fields: []record.SourceField{
			{Name: "title", Raw: "cast iron pan", Kind: record.KindText},
		},
		Variants: []record.Variant{
			{Key: "pan-2#1", ExistingSpecs: []string{"Material: Enamel"}},
			{Key: "pan-2#2"},
		},
	}

	res := p.Process(rec)
	require.Len(t, res.Variants, 2)
	assert.True(t, res.Variants[0].Skipped)
	assert.Equal(t, []string{"Material: Enamel"}, res.Variants[0].Specs)
	assert.False(t, res.Variants[1].Skipped)
	assert.Equal(t, []string{"Material: Cast Iron"}, res.Variants[1].Specs)
}

func TestMergeCandidates_RankThenFirstWins(t *testing.T) {
	merged := mergeCandidates([]record.SpecCandidate{
		{Key: "Material", Value: "Steel", SourceRank: record.RankText},
		{Key: "material", Value: "Ceramic", SourceRank: record.RankProductMeta},
		{Key: "Capacity", Value: "2 l", SourceRank: record.RankText},
	})

	require.Len(t, merged, 2)
	// Keys dedupe case-insensitively; the lower rank survives.
	assert.Equal(t, "Ceramic", merged[0].Value)
	assert.Equal(t, "Capacity", merged[1].Key)
}

func TestStats_Observe(t *testing.T) {
	var stats Stats
	stats.Observe(Result{Skipped: true, Specs: []string{"a"}})
	stats.Observe(Result{Specs: []string{"a", "b"}})
	stats.Observe(Result{})

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.AlreadyPopulated)
	assert.Equal(t, 1, stats.NewlyPopulated)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.SpecsExtracted)
}
