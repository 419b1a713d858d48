package feed

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/catalogforge/specline/internal/pipeline"
	"github.com/catalogforge/specline/internal/record"
)

// resultLine is the JSONL shape for one processed product.
type resultLine struct {
	Handle   string        `json:"handle"`
	SpecList []string      `json:"spec_list"`
	Skipped  bool          `json:"skipped,omitempty"`
	Variants []variantLine `json:"variants,omitempty"`
}

type variantLine struct {
	Key      string   `json:"key"`
	SpecList []string `json:"spec_list"`
	Skipped  bool     `json:"skipped,omitempty"`
}

// WriteJSONL writes one JSON object per processed record.
func WriteJSONL(w io.Writer, results []pipeline.Result) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		line := resultLine{Handle: res.Handle, SpecList: res.Specs, Skipped: res.Skipped}
		if line.SpecList == nil {
			line.SpecList = []string{}
		}
		for _, v := range res.Variants {
			vl := variantLine{Key: v.Key, SpecList: v.Specs, Skipped: v.Skipped}
			if vl.SpecList == nil {
				vl.SpecList = []string{}
			}
			line.Variants = append(line.Variants, vl)
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write result for %s: %w", res.Handle, err)
		}
	}
	return nil
}

// WriteCSV writes results as an import sheet: one row per product plus
// one row per variant, with the spec list encoded as a JSON array cell.
func WriteCSV(w io.Writer, results []pipeline.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Handle", "Variant Key", "Spec List"}); err != nil {
		return err
	}
	for _, res := range results {
		if err := cw.Write([]string{res.Handle, "", record.EncodeSpecList(res.Specs)}); err != nil {
			return err
		}
		for _, v := range res.Variants {
			if err := cw.Write([]string{res.Handle, v.Key, record.EncodeSpecList(v.Specs)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes results to a path, choosing the format by extension:
// ".csv" gets the import sheet, anything else JSONL.
func WriteFile(path string, results []pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if err := WriteCSV(f, results); err != nil {
			return err
		}
	} else if err := WriteJSONL(f, results); err != nil {
		return err
	}
	return f.Close()
}
