// Package calcutil holds the defensive coercion and interpolation
// primitives shared by the 수능/실기 calculators. Everything here is a
// total function: malformed input degrades to the caller's fallback,
// never to a panic.
package calcutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SafeNumber coerces an arbitrary value to a finite float64, returning
// fallback for anything that does not parse.
func SafeNumber(value interface{}, fallback float64) float64 {
	if value == nil {
		return fallback
	}

	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return v
	case float32:
		return SafeNumber(float64(v), fallback)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fallback
		}
		return SafeNumber(f, fallback)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fallback
		}
		return SafeNumber(f, fallback)
	default:
		return fallback
	}
}

// SafeInt coerces an arbitrary value to an int. Strings are parsed from
// their leading base-10 digits ("2개" → 2), matching the upstream data
// entry habits this has to tolerate.
func SafeInt(value interface{}, fallback int) int {
	if value == nil {
		return fallback
	}

	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return int(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fallback
		}
		return int(f)
	case string:
		return parseLeadingInt(strings.TrimSpace(v), fallback)
	default:
		return fallback
	}
}

// parseLeadingInt parses the leading signed integer prefix of s.
func parseLeadingInt(s string, fallback int) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return fallback
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return fallback
	}
	return n
}

// SafeString coerces a value to its string form, returning fallback for
// nil.
func SafeString(value interface{}, fallback string) string {
	if value == nil {
		return fallback
	}

	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fallback
		}
		return string(data)
	}
}

// SafeArray returns value when it is a slice, else fallback.
func SafeArray(value interface{}, fallback []interface{}) []interface{} {
	if arr, ok := value.([]interface{}); ok {
		return arr
	}
	return fallback
}

// SafeParse resolves a JSON-ish configuration value: already-parsed
// objects pass through, strings are JSON-decoded, anything malformed
// degrades to fallback. This is the single entry point for the
// JSON-in-a-database-column config fields.
func SafeParse(value interface{}, fallback interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		var out interface{}
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return fallback
		}
		return out
	case []byte:
		return SafeParse(string(v), fallback)
	case json.RawMessage:
		return SafeParse(string(v), fallback)
	default:
		return v
	}
}

// DecodeConfig resolves a JSON-ish configuration value into dest (a
// pointer to a typed config struct). Returns false when the value is
// absent or malformed; dest is left untouched in that case.
func DecodeConfig(value interface{}, dest interface{}) bool {
	var data []byte

	switch v := value.(type) {
	case nil:
		return false
	case string:
		if strings.TrimSpace(v) == "" {
			return false
		}
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return false
		}
	}

	return json.Unmarshal(data, dest) == nil
}

// Round2 rounds half away from zero to 2 decimals. Totals and
// breakdown entries go through this so repeated runs are byte-stable.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
