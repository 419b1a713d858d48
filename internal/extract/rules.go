// Package extract applies an ordered, data-driven set of category
// recognizers to normalized product text, producing spec candidates.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Recognizer styles control how a match is turned into a display value.
const (
	// StyleVocabulary matches a fixed term list; the earliest term in text
	// order wins and is title-cased for display.
	StyleVocabulary = "vocabulary"
	// StyleValueUnit captures (value, unit) groups and emits
	// "<value> <unit>" with the unit singularized.
	StyleValueUnit = "value-unit"
	// StyleCompactUnit captures (value, unit) groups and emits
	// "<value><unit>" with the unit canonicalized, no space.
	StyleCompactUnit = "compact-unit"
	// StyleMatch emits the whole matched text, lower-cased.
	StyleMatch = "match"
)

// RecognizerSpec is the serializable form of one recognizer rule.
type RecognizerSpec struct {
	Category string            `yaml:"category"`
	Style    string            `yaml:"style"`
	Pattern  string            `yaml:"pattern,omitempty"`
	Terms    []string          `yaml:"terms,omitempty"`
	Units    map[string]string `yaml:"units,omitempty"`
}

// FeatureSpec is one feature-indicator rule: any of the patterns present
// in the text emits a candidate labeled Label. Patterns are plain
// substrings unless prefixed with "re:".
type FeatureSpec struct {
	Label    string   `yaml:"label"`
	Patterns []string `yaml:"patterns"`
}

// RulesFile is the on-disk rule configuration.
type RulesFile struct {
	Recognizers []RecognizerSpec `yaml:"recognizers"`
	Features    []FeatureSpec    `yaml:"features"`
}

// RuleSet is the compiled, immutable recognizer configuration. It is
// loaded once at startup and safely shared across records.
type RuleSet struct {
	Recognizers []*Recognizer
	Features    []*FeatureRule
}

// Recognizer is one compiled category rule.
type Recognizer struct {
	Category string
	Style    string
	re       *regexp.Regexp
	terms    []string
	units    map[string]string
}

// FeatureRule is one compiled feature indicator.
type FeatureRule struct {
	Label      string
	substrings []string
	patterns   []*regexp.Regexp
}

// Compile turns a rules file into an executable rule set, preserving
// rule order.
func Compile(file RulesFile) (*RuleSet, error) {
	rs := &RuleSet{}

	for _, spec := range file.Recognizers {
		rec, err := compileRecognizer(spec)
		if err != nil {
			return nil, fmt.Errorf("recognizer %q: %w", spec.Category, err)
		}
		rs.Recognizers = append(rs.Recognizers, rec)
	}

	for _, spec := range file.Features {
		feat, err := compileFeature(spec)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", spec.Label, err)
		}
		rs.Features = append(rs.Features, feat)
	}

	return rs, nil
}

func compileRecognizer(spec RecognizerSpec) (*Recognizer, error) {
	if spec.Category == "" {
		return nil, fmt.Errorf("missing category")
	}

	rec := &Recognizer{
		Category: spec.Category,
		Style:    spec.Style,
		units:    make(map[string]string, len(spec.Units)),
	}
	for alias, canonical := range spec.Units {
		rec.units[strings.ToLower(alias)] = canonical
	}

	switch spec.Style {
	case StyleVocabulary:
		if len(spec.Terms) == 0 {
			return nil, fmt.Errorf("vocabulary style requires terms")
		}
		for _, term := range spec.Terms {
			rec.terms = append(rec.terms, strings.ToLower(strings.TrimSpace(term)))
		}
	case StyleValueUnit, StyleCompactUnit, StyleMatch:
		if spec.Pattern == "" {
			return nil, fmt.Errorf("%s style requires a pattern", spec.Style)
		}
		re, err := regexp.Compile("(?i)" + spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern: %w", err)
		}
		rec.re = re
	default:
		return nil, fmt.Errorf("unknown style %q", spec.Style)
	}

	return rec, nil
}

func compileFeature(spec FeatureSpec) (*FeatureRule, error) {
	if spec.Label == "" {
		return nil, fmt.Errorf("missing label")
	}
	if len(spec.Patterns) == 0 {
		return nil, fmt.Errorf("feature requires at least one pattern")
	}

	feat := &FeatureRule{Label: spec.Label}
	for _, p := range spec.Patterns {
		if rest, ok := strings.CutPrefix(p, "re:"); ok {
			re, err := regexp.Compile("(?i)" + rest)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q: %w", p, err)
			}
			feat.patterns = append(feat.patterns, re)
			continue
		}
		feat.substrings = append(feat.substrings, strings.ToLower(p))
	}
	return feat, nil
}

// Load reads and compiles a YAML rules file.
func Load(path string) (*RuleSet, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(file)
}

// LoadFile reads a YAML rules file without compiling it.
func LoadFile(path string) (RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RulesFile{}, fmt.Errorf("read rules file: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return RulesFile{}, fmt.Errorf("parse rules file: %w", err)
	}
	return file, nil
}

// DefaultRules returns the built-in rule set. Rule order is the category
// priority order: once a category has a value for a record, later matches
// of the same category are ignored, and overlapping matches across
// categories resolve by this order rather than longest match.
func DefaultRules() *RuleSet {
	rs, err := Compile(defaultRulesFile())
	if err != nil {
		// The built-in table is covered by tests; a compile failure here
		// is a programming error.
		panic(err)
	}
	return rs
}

// DefaultRulesFile returns the built-in rule table in its serializable
// form, for display and for writing starter rule files.
func DefaultRulesFile() RulesFile {
	return defaultRulesFile()
}

func defaultRulesFile() RulesFile {
	return RulesFile{
		Recognizers: []RecognizerSpec{
			{
				Category: "Material",
				Style:    StyleVocabulary,
				Terms: []string{
					"stainless steel",
					"carbon steel",
					"cast iron",
					"aluminum",
					"ceramic",
					"glass",
					"plastic",
					"copper",
					"silicone",
					"bamboo",
					"wood",
					"rubber",
					"marble",
					"porcelain",
					"leather",
				},
			},
			{
				Category: "Capacity",
				Style:    StyleValueUnit,
				Pattern:  `\b(\d+(?:\.\d+)?)\s?(cups?|liters?|litres?|ml|kg|oz|lb|g|l)\b`,
			},
			{
				Category: "Power",
				Style:    StyleCompactUnit,
				Pattern:  `\b(\d+(?:\.\d+)?)\s?(watts?|volts?|w|v)\b`,
				Units: map[string]string{
					"watt":  "W",
					"watts": "W",
					"w":     "W",
					"volt":  "V",
					"volts": "V",
					"v":     "V",
				},
			},
			{
				Category: "Warranty",
				Style:    StyleMatch,
				Pattern:  `\b\d+[- ]?(?:years?|yrs?|months?|days?)[- ]?(?:warranty|guarantee)\b`,
			},
			{
				// Up to two qualifier words may sit between the count and
				// the unit ("6 precision grind settings").
				Category: "Settings",
				Style:    StyleValueUnit,
				Pattern:  `\b(\d+)(?:\s+[a-z]+){0,2}?\s?(settings?|speeds?|modes?)\b`,
			},
			{
				Category: "Weight",
				Style:    StyleValueUnit,
				Pattern:  `\b(\d+(?:\.\d+)?)\s?(lbs?|pounds?|kilograms?)\b`,
			},
			{
				Category: "Pieces",
				Style:    StyleValueUnit,
				Pattern:  `\b(\d+)[- ]?(pieces?)\b`,
				Units: map[string]string{
					"piece":  "pieces",
					"pieces": "pieces",
				},
			},
		},
		Features: []FeatureSpec{
			{Label: "BPA Free", Patterns: []string{"bpa free", "bpa-free"}},
			{Label: "Dishwasher Safe", Patterns: []string{"dishwasher safe", "dishwasher-safe"}},
			{Label: "Microwave Safe", Patterns: []string{"microwave safe", "microwave-safe"}},
			{Label: "Oven Safe", Patterns: []string{"oven safe", "oven-safe"}},
			{Label: "Non-Stick", Patterns: []string{"non-stick", "nonstick", "non stick"}},
			{Label: "LED Display", Patterns: []string{"led display"}},
			{Label: "Cordless", Patterns: []string{"cordless"}},
			{Label: "Rechargeable", Patterns: []string{"rechargeable"}},
			{Label: "Energy Star", Patterns: []string{"energy star"}},
		},
	}
}
