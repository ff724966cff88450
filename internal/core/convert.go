package core

// convert.go provides the lenient value types used when decoding order exports.
//
// Storefront exports are inconsistent about numeric encoding: the same field
// may arrive as 2, "2" or null depending on the exporting plugin. The Flex*
// types accept all three. Anything else (e.g. "two", 2.5 for an integer) is a
// decode error and fails the whole batch as malformed input.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexInt is an int that can be decoded from a JSON number or numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	n, err := parseFlexInteger(data, strconv.IntSize)
	if err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the value as a plain int.
func (f FlexInt) Int() int { return int(f) }

// FlexInt64 is an int64 that can be decoded from a JSON number or numeric string.
type FlexInt64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	n, err := parseFlexInteger(data, 64)
	if err != nil {
		return err
	}
	*f = FlexInt64(n)
	return nil
}

// String returns the decimal representation.
func (f FlexInt64) String() string { return strconv.FormatInt(int64(f), 10) }

// parseFlexInteger decodes null, a JSON integer or a quoted integer.
func parseFlexInteger(data []byte, bitSize int) (int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		raw = strings.TrimSpace(s)
	}

	n, err := strconv.ParseInt(raw, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return n, nil
}

// Date is a calendar date without a time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
// Callers wanting the UTC date pass t.UTC().
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}
