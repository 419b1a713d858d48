// Package pipeline orchestrates spec extraction per product record:
// normalization, pattern extraction, deduplication, formatting, and the
// skip-vs-overwrite policy for product and variant spec lists.
package pipeline

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/catalogforge/specline/internal/extract"
	"github.com/catalogforge/specline/internal/normalize"
	"github.com/catalogforge/specline/internal/record"
)

// Options control pipeline policy.
type Options struct {
	// Overwrite recomputes spec lists even when a record already has one.
	// Default false: records with a non-empty existing list are skipped.
	Overwrite bool
	// MaxEntries caps the final list length; zero means unlimited.
	MaxEntries int
}

// VariantResult is the computed spec list for one variant.
type VariantResult struct {
	Key     string
	Specs   []string
	Skipped bool
}

// Result is the outcome of processing one record.
type Result struct {
	Handle    string
	Specs     []string
	Skipped   bool
	Extracted int
	Variants  []VariantResult
}

// Stats aggregates pipeline outcomes across a run.
type Stats struct {
	Total            int
	AlreadyPopulated int
	NewlyPopulated   int
	Skipped          int
	SpecsExtracted   int
}

// Observe folds one result into the running totals.
func (s *Stats) Observe(res Result) {
	s.Total++
	switch {
	case res.Skipped:
		s.AlreadyPopulated++
	case len(res.Specs) > 0:
		s.NewlyPopulated++
		s.SpecsExtracted += len(res.Specs)
	default:
		s.Skipped++
	}
}

// Pipeline processes records one at a time. Extraction is a pure function
// of the record's inputs and the immutable rule set, so a Pipeline may be
// shared across goroutines as long as each record is processed once.
type Pipeline struct {
	logger    zerolog.Logger
	extractor *extract.Extractor
	opts      Options

	warnMu      sync.Mutex
	warnedKinds map[record.FieldKind]bool
}

// New creates a pipeline over the given rule set.
func New(logger zerolog.Logger, rules *extract.RuleSet, opts Options) *Pipeline {
	return &Pipeline{
		logger:      logger,
		extractor:   extract.New(rules),
		opts:        opts,
		warnedKinds: make(map[record.FieldKind]bool),
	}
}

// Process computes the product-level and variant-level spec lists for one
// record. It never fails: malformed sources degrade to empty text and a
// record with no candidates yields an empty list.
func (p *Pipeline) Process(rec record.Record) Result {
	res := Result{Handle: rec.Handle}

	p.checkKinds(rec)

	// Text-mined candidates are computed once and shared by the product
	// list and every variant list.
	textCands := p.extractor.Extract(normalize.Fields(rec.Fields))

	if len(rec.ExistingSpecs) > 0 && !p.opts.Overwrite {
		res.Specs = rec.ExistingSpecs
		res.Skipped = true
	} else {
		cands := rec.Metadata.Candidates(record.RankProductMeta)
		cands = append(cands, textCands...)
		cands = appendDimensions(cands, rec.Dimensions)
		merged := mergeCandidates(cands)
		res.Specs = formatSpecs(merged, p.opts.MaxEntries)
		res.Extracted = len(res.Specs)
	}

	for _, v := range rec.Variants {
		res.Variants = append(res.Variants, p.processVariant(rec, v, textCands))
	}

	p.logger.Debug().
		Str("handle", rec.Handle).
		Bool("skipped", res.Skipped).
		Int("specs", len(res.Specs)).
		Int("variants", len(res.Variants)).
		Msg("Processed record")

	return res
}

// processVariant layers the variant's own metadata over the parent
// product's text-mined candidates; variant metadata outranks inherited
// text matches for the same key.
func (p *Pipeline) processVariant(rec record.Record, v record.Variant, textCands []record.SpecCandidate) VariantResult {
	if len(v.ExistingSpecs) > 0 && !p.opts.Overwrite {
		return VariantResult{Key: v.Key, Specs: v.ExistingSpecs, Skipped: true}
	}

	cands := v.Metadata.Candidates(record.RankVariantMeta)
	cands = append(cands, textCands...)

	// The variant's own dimensions win; otherwise inherit the product's.
	if v.Dimensions.Present() {
		cands = appendDimensions(cands, v.Dimensions)
	} else {
		cands = appendDimensions(cands, rec.Dimensions)
	}

	merged := mergeCandidates(cands)
	return VariantResult{Key: v.Key, Specs: formatSpecs(merged, p.opts.MaxEntries)}
}

func appendDimensions(cands []record.SpecCandidate, dims record.Dimensions) []record.SpecCandidate {
	if !dims.Present() {
		return cands
	}
	return append(cands, record.SpecCandidate{
		Key:        "Dimensions",
		Value:      dims.Format(),
		SourceRank: record.RankDimensions,
	})
}

// checkKinds reports unknown field kinds once per kind. A bad kind is a
// configuration error; the field still passes through as trimmed text and
// the rest of the record is unaffected.
func (p *Pipeline) checkKinds(rec record.Record) {
	p.warnMu.Lock()
	defer p.warnMu.Unlock()
	for _, f := range rec.Fields {
		if f.Kind.Valid() || p.warnedKinds[f.Kind] {
			continue
		}
		p.warnedKinds[f.Kind] = true
		p.logger.Warn().
			Str("field", f.Name).
			Str("kind", string(f.Kind)).
			Msg("Unknown field kind, treating as plain text")
	}
}
