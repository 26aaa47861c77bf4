// Package shared holds value types used on both sides of the persistence boundary.
package shared

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Float is a number decoded leniently from stored rows. JSON numbers, numeric
// strings and booleans are accepted; null and anything unparsable decode to 0.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(b []byte) error {
	*f = 0
	s := strings.TrimSpace(string(b))
	switch {
	case s == "" || s == "null" || s == "false":
		return nil
	case s == "true":
		*f = 1
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(str, 64); err == nil {
			*f = Float(v)
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*f = Float(v)
	}
	return nil
}

// Bool is a flag decoded leniently from stored rows. null decodes to false,
// numbers are true when non-zero, strings follow strconv.ParseBool.
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	*b = false
	s := strings.TrimSpace(string(data))
	switch {
	case s == "true":
		*b = true
	case s == "" || s == "null" || s == "false":
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		v, err := strconv.ParseBool(strings.TrimSpace(str))
		*b = Bool(err == nil && v)
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err == nil {
			*b = v != 0
		}
	}
	return nil
}

// StringOr returns *s, or def when s is nil.
func StringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
