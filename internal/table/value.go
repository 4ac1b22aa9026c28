package table

import (
	"time"

	"github.com/spf13/cast"
)

// IsNull reports whether a cell holds no value.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// Float coerces a cell to float64. Booleans map to 1 and 0. The second
// return is false for nulls and values that cannot be coerced.
func Float(v any) (float64, bool) {
	if IsNull(v) {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Time coerces a cell to time.Time.
func Time(v any) (time.Time, bool) {
	if IsNull(v) {
		return time.Time{}, false
	}
	ts, ok := v.(time.Time)
	return ts, ok
}

// String coerces a cell to its string form; null yields "".
func String(v any) string {
	if IsNull(v) {
		return ""
	}
	return cast.ToString(v)
}

// Compare orders two cells: null first, then times, then numbers, then
// everything else by string form. Returns -1, 0 or 1.
func Compare(a, b any) int {
	an, bn := IsNull(a), IsNull(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}

	if at, ok := Time(a); ok {
		if bt, ok := Time(b); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	af, aok := numeric(a)
	bf, bok := numeric(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as, bs := String(a), String(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// numeric is Float without the string fallback: "abc123" style ids must
// compare as strings, not fail into a zero.
func numeric(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	default:
		return 0, false
	}
}
