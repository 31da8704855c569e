package vendors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/purecarat/diamond-backend/internal/types"
)

// Fallback constants applied when a vendor omits an optional string field.
const (
	unknownOrigin = "Unknown"
)

// The fixed grading enums. Vendor values outside these sets reject the
// whole record rather than guessing.
var colorGrades = map[string]struct{}{
	"D": {}, "E": {}, "F": {}, "G": {}, "H": {}, "I": {}, "J": {},
}

var clarityGrades = map[string]struct{}{
	"FL": {}, "IF": {}, "VVS1": {}, "VVS2": {}, "VS1": {}, "VS2": {},
	"SI1": {}, "SI2": {}, "SI3": {}, "I1": {}, "I2": {}, "I3": {},
}

// NormalizeColor uppercases and validates a vendor color grade.
func NormalizeColor(raw interface{}) (string, bool) {
	val := strings.ToUpper(strings.TrimSpace(asString(raw)))
	if _, ok := colorGrades[val]; !ok {
		return "", false
	}
	return val, true
}

// NormalizeClarity uppercases and validates a vendor clarity grade.
func NormalizeClarity(raw interface{}) (string, bool) {
	val := strings.ToUpper(strings.TrimSpace(asString(raw)))
	if _, ok := clarityGrades[val]; !ok {
		return "", false
	}
	return val, true
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; ids and stock numbers come
		// through here.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func str(item RawItem, key string) string {
	return strings.TrimSpace(asString(item[key]))
}

func strOr(item RawItem, key, fallback string) string {
	if s := str(item, key); s != "" {
		return s
	}
	return fallback
}

func firstStr(item RawItem, keys ...string) string {
	for _, key := range keys {
		if s := str(item, key); s != "" {
			return s
		}
	}
	return ""
}

// parseFloat returns the value and whether it parsed. Used for fields that
// must parse (carat, price); failure there nulls the whole record.
func parseFloat(item RawItem, key string) (float64, bool) {
	switch t := item[key].(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// floatOr is the lenient variant for cosmetic numerics (table, depth):
// unparsable values default to 0.
func floatOr(item RawItem, key string) float64 {
	f, ok := parseFloat(item, key)
	if !ok {
		return 0
	}
	return f
}

func firstFloat(item RawItem, keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := parseFloat(item, key); ok && f != 0 {
			return f, true
		}
	}
	return 0, false
}

// stringField maps one raw vendor key onto a canonical field with an
// optional fallback. Each adapter declares its optional string columns as
// one of these tables so the coercion rules stay auditable in one place.
type stringField struct {
	rawKey   string
	fallback string
	assign   func(d *types.IngestedDiamond, v string)
}

func applyStringFields(d *types.IngestedDiamond, item RawItem, fields []stringField) {
	for _, f := range fields {
		f.assign(d, strOr(item, f.rawKey, f.fallback))
	}
}
