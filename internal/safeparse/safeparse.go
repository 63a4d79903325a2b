// Package safeparse recovers structured data from LLM responses. Models
// wrap JSON in prose, code fences or partial markup, and numeric fields
// arrive as strings or junk. Nothing in this package panics or returns an
// error; callers get a value and an ok flag and degrade from there.
package safeparse

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	fencedJSON  = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	arrayRegion = regexp.MustCompile(`(?s)\[.*\]`)
	objRegion   = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON pulls the first parseable JSON document out of an LLM
// response. It prefers a fenced ```json block, then tries the outermost
// bracketed region in order of first appearance ('[' before '{' when the
// array bracket comes first). Returns ok=false when nothing parses.
func ExtractJSON(text string) (any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if v, ok := tryParse(m[1]); ok {
			return v, true
		}
	}

	arrIdx := strings.IndexByte(text, '[')
	objIdx := strings.IndexByte(text, '{')

	regions := []*regexp.Regexp{objRegion, arrayRegion}
	if arrIdx >= 0 && (objIdx < 0 || arrIdx < objIdx) {
		regions = []*regexp.Regexp{arrayRegion, objRegion}
	}
	for _, re := range regions {
		if m := re.FindString(text); m != "" {
			if v, ok := tryParse(m); ok {
				return v, true
			}
		}
	}
	return nil, false
}

func tryParse(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	return nil, false
}

// Float coerces v into a float64 clamped to [min, max]. nil, NaN, ±Inf and
// unparseable strings fall back to def.
func Float(v any, def, min, max float64) float64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}

// Int coerces v into an int, going through float so "3.0" still converts.
// minVal/maxVal are optional clamp bounds.
func Int(v any, def int, minVal, maxVal *int) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	n := int(f)
	if minVal != nil && n < *minVal {
		n = *minVal
	}
	if maxVal != nil && n > *maxVal {
		n = *maxVal
	}
	return n
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
