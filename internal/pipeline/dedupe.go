package pipeline

import (
	"sort"
	"strings"

	"github.com/catalogforge/specline/internal/record"
)

// mergeCandidates enforces one value per key. Candidates are stably
// ordered by source rank (metadata before text-mined before dimensions),
// then the first candidate per case-insensitive key survives. The result
// keeps first-seen order, which follows the fixed category/source priority
// sequence rather than input order.
func mergeCandidates(cands []record.SpecCandidate) []record.SpecCandidate {
	ordered := make([]record.SpecCandidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourceRank < ordered[j].SourceRank
	})

	seen := make(map[string]bool, len(ordered))
	out := ordered[:0]
	for _, c := range ordered {
		key := strings.ToLower(c.Key)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// formatSpecs serializes surviving candidates as "<Key>: <Value>" strings.
// A non-zero maxEntries truncates the list.
func formatSpecs(cands []record.SpecCandidate, maxEntries int) []string {
	specs := make([]string, 0, len(cands))
	for _, c := range cands {
		specs = append(specs, c.Key+": "+c.Value)
	}
	if maxEntries > 0 && len(specs) > maxEntries {
		specs = specs[:maxEntries]
	}
	return specs
}
