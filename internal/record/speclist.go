package record

import (
	"encoding/json"
)

// EncodeSpecList serializes a spec list as a JSON array of strings, the
// format the surrounding system persists. An empty list encodes as "".
func EncodeSpecList(specs []string) string {
	if len(specs) == 0 {
		return ""
	}
	data, err := json.Marshal(specs)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeJSONStrings(raw string) ([]string, bool) {
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	out := entries[:0]
	for _, e := range entries {
		if e != "" {
			out = append(out, e)
		}
	}
	return out, true
}
