// Package feed reads and writes product export feeds in the Matrixify
// style: one header row, one row per product, and consecutive rows
// sharing a handle carrying variant-level values.
package feed

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/catalogforge/specline/internal/record"
)

// ReadCSV parses a CSV export into records. The first row is the header;
// column lookups go through the field mapping. Consecutive rows with the
// same handle become variants of the first row's product.
func ReadCSV(r io.Reader, mapping record.FieldMapping) ([]record.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []record.Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		cells := rowMap(header, row)
		handle := strings.TrimSpace(cells[mapping.Handle])
		if handle == "" {
			continue
		}

		if n := len(records); n > 0 && records[n-1].Handle == handle {
			key := fmt.Sprintf("%s#%d", handle, len(records[n-1].Variants)+1)
			records[n-1].Variants = append(records[n-1].Variants, record.CollectVariant(key, cells, mapping))
			continue
		}
		records = append(records, record.Collect(cells, mapping))
	}
	return records, nil
}

// ReadCSVFile reads a CSV export from disk.
func ReadCSVFile(path string, mapping record.FieldMapping) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, mapping)
}

func rowMap(header, row []string) map[string]string {
	cells := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(row) {
			cells[col] = row[i]
		}
	}
	return cells
}

// jsonlRow is one line of a JSONL feed. Scalar values outside the known
// keys land in the flat column map, so the same field mapping applies.
type jsonlRow struct {
	columns  map[string]string
	variants []map[string]string
}

// ReadJSONL parses a JSON-lines feed, one object per line. A "variants"
// key holding an array of objects yields variant rows; every other value
// is flattened to a string column.
func ReadJSONL(r io.Reader, mapping record.FieldMapping) ([]record.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []record.Record
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		row, err := parseJSONLRow([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}

		rec := record.Collect(row.columns, mapping)
		if rec.Handle == "" {
			continue
		}
		for i, vcells := range row.variants {
			key := fmt.Sprintf("%s#%d", rec.Handle, i+1)
			rec.Variants = append(rec.Variants, record.CollectVariant(key, vcells, mapping))
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return records, nil
}

// ReadJSONLFile reads a JSONL feed from disk.
func ReadJSONLFile(path string, mapping record.FieldMapping) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()
	return ReadJSONL(f, mapping)
}

func parseJSONLRow(raw []byte) (jsonlRow, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return jsonlRow{}, err
	}

	row := jsonlRow{columns: make(map[string]string, len(obj))}
	for key, val := range obj {
		if key == "variants" {
			var variants []map[string]json.RawMessage
			if err := json.Unmarshal(val, &variants); err != nil {
				return jsonlRow{}, fmt.Errorf("variants: %w", err)
			}
			for _, v := range variants {
				vcells := make(map[string]string, len(v))
				for vk, vv := range v {
					vcells[vk] = flattenValue(vv)
				}
				row.variants = append(row.variants, vcells)
			}
			continue
		}
		row.columns[key] = flattenValue(val)
	}
	return row, nil
}

// flattenValue renders a JSON value as the string a CSV cell would hold.
// Strings are unquoted; arrays and objects keep their raw JSON so rich
// text payloads and stored spec lists survive intact.
func flattenValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
