package extract

import (
	"strings"

	"github.com/catalogforge/specline/internal/record"
)

// Extractor scans normalized text with an immutable rule set. It holds no
// per-record state, so one Extractor is safely shared across records.
type Extractor struct {
	rules *RuleSet
}

// New creates an extractor over the given rule set. A nil rule set falls
// back to the built-in defaults.
func New(rules *RuleSet) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract runs every recognizer over the text in rule order and returns
// the candidates at text rank. Single-valued categories contribute at most
// one candidate (first match wins); each present feature indicator
// contributes its own candidate keyed by its label.
func (e *Extractor) Extract(text string) []record.SpecCandidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var out []record.SpecCandidate
	for _, rec := range e.rules.Recognizers {
		value, ok := rec.match(lower)
		if !ok || !validValue(value) {
			continue
		}
		out = append(out, record.SpecCandidate{
			Key:        rec.Category,
			Value:      value,
			SourceRank: record.RankText,
		})
	}

	for _, feat := range e.rules.Features {
		if feat.present(lower) {
			out = append(out, record.SpecCandidate{
				Key:        feat.Label,
				Value:      "Yes",
				SourceRank: record.RankText,
			})
		}
	}

	return out
}

// match applies the recognizer to lower-cased text and returns the
// display-formatted value.
func (r *Recognizer) match(lower string) (string, bool) {
	switch r.Style {
	case StyleVocabulary:
		return r.matchVocabulary(lower)
	case StyleValueUnit:
		m := r.re.FindStringSubmatch(lower)
		if len(m) < 3 {
			return "", false
		}
		return m[1] + " " + r.canonicalUnit(m[2]), true
	case StyleCompactUnit:
		m := r.re.FindStringSubmatch(lower)
		if len(m) < 3 {
			return "", false
		}
		return m[1] + r.canonicalUnit(m[2]), true
	case StyleMatch:
		m := r.re.FindString(lower)
		if m == "" {
			return "", false
		}
		return strings.ToLower(strings.TrimSpace(m)), true
	}
	return "", false
}

// matchVocabulary picks the term occurring earliest in text order.
func (r *Recognizer) matchVocabulary(lower string) (string, bool) {
	best := -1
	var bestTerm string
	for _, term := range r.terms {
		idx := indexWord(lower, term)
		if idx < 0 {
			continue
		}
		if best == -1 || idx < best {
			best = idx
			bestTerm = term
		}
	}
	if best == -1 {
		return "", false
	}
	return titleCase(bestTerm), true
}

// canonicalUnit maps a matched unit through the rule's alias table, then
// singularizes ("cups" -> "cup").
func (r *Recognizer) canonicalUnit(unit string) string {
	unit = strings.ToLower(unit)
	if canonical, ok := r.units[unit]; ok {
		return canonical
	}
	return singularize(unit)
}

// present reports whether any of the feature's indicators occur.
func (f *FeatureRule) present(lower string) bool {
	for _, sub := range f.substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// singularize trims a plural "s" suffix from a unit word.
func singularize(unit string) string {
	if len(unit) > 2 && strings.HasSuffix(unit, "s") && !strings.HasSuffix(unit, "ss") {
		return unit[:len(unit)-1]
	}
	return unit
}

// indexWord finds term in s at a word boundary, so "oz" does not match
// inside "dozen".
func indexWord(s, term string) int {
	from := 0
	for {
		idx := strings.Index(s[from:], term)
		if idx < 0 {
			return -1
		}
		idx += from
		if boundedAt(s, idx, len(term)) {
			return idx
		}
		from = idx + 1
	}
}

func boundedAt(s string, idx, length int) bool {
	before := idx == 0 || !isWordByte(s[idx-1])
	after := idx+length >= len(s) || !isWordByte(s[idx+length])
	return before && after
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// titleCase capitalizes the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// validValue filters out garbage extractions: empty values, values over
// 100 characters, and values dominated by punctuation.
func validValue(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 100 {
		return false
	}

	special := 0
	for _, r := range value {
		if r != ' ' && !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			special++
		}
	}
	return float64(special)/float64(len(value)) <= 0.3
}
