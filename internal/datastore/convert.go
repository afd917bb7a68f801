package datastore

import (
	"time"
)

// timestampLayouts are the accepted wire formats for Timestamp columns.
// CURRENT_TIMESTAMP defaults arrive as "2006-01-02 15:04:05"; values the
// managers write themselves are RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTime converts a scanned Timestamp column value to a UTC time.
// A value without zone information is taken as UTC.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t.UTC(), true
	case string:
		if t == "" {
			return time.Time{}, false
		}

		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), true
			}
		}

		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// FormatTime renders a time the way Timestamp columns store it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// AsInt64 converts a scanned Integer column value.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// AsFloat64 converts a scanned Real column value.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsBool converts a scanned Boolean column value (stored as 0/1).
func AsBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}

	n, ok := AsInt64(v)

	return ok && n != 0
}

// AsString converts a scanned Text column value; nil becomes "".
func AsString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}
