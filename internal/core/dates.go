package core

// dates.go turns the free-form timestamps found in order exports into a UTC
// instant plus its calendar date.
//
// Parsing is attempted in three stages:
//  1. Exact match against exactLayouts, first match wins
//  2. Loose parse via dateparse for anything else a storefront may emit,
//     except bare digit runs (epoch seconds, lone years)
//  3. Fallback to the current time
//
// Values without an explicit zone are taken to be UTC already.

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// exactLayouts are tried in order before falling back to a loose parse.
// Month-first slash dates are preferred over day-first ones.
var exactLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

// DateParser parses order timestamps.
type DateParser interface {
	Parse(text string) (time.Time, Date)
}

// FlexibleDateParser is the default DateParser.
type FlexibleDateParser struct {
	now func() time.Time
}

// NewFlexibleDateParser creates a parser whose fallback is the wall clock.
func NewFlexibleDateParser() *FlexibleDateParser {
	return &FlexibleDateParser{now: time.Now}
}

// WithClock overrides the clock used for the fallback instant.
func (p *FlexibleDateParser) WithClock(now func() time.Time) *FlexibleDateParser {
	p.now = now
	return p
}

// Parse returns the UTC instant for text and its UTC calendar date.
// Blank or unparseable input yields the current time.
func (p *FlexibleDateParser) Parse(text string) (time.Time, Date) {
	text = strings.TrimSpace(text)
	if text == "" {
		return p.fallback()
	}

	for _, layout := range exactLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return toResult(t)
		}
	}

	// dateparse reads bare digit runs as epoch seconds or a lone year.
	if !allDigits(text) {
		if t, err := dateparse.ParseIn(text, time.UTC); err == nil {
			return toResult(t)
		}
	}

	return p.fallback()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p *FlexibleDateParser) fallback() (time.Time, Date) {
	return toResult(p.now())
}

// toResult normalises t to UTC and pairs it with its UTC date.
func toResult(t time.Time) (time.Time, Date) {
	t = t.UTC()
	return t, DateOf(t)
}
