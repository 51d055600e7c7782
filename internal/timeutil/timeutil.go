// Package timeutil normalizes free-text date/time input into an instant in
// the operating timezone and validates event links. All functions are pure.
package timeutil

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// ErrUnrecognizedDateTime is returned when input matches none of the accepted
// date/time layouts.
var ErrUnrecognizedDateTime = errors.New("unrecognized date/time format")

// DisplayLayout is how instants are rendered in user-facing text.
const DisplayLayout = "15:04, 02 Jan 2006"

// FormatLocal renders an instant in the operating timezone for display.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}

// dateTimeLayouts are the accepted input patterns, tried in order.
var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006.01.02 15:04",
}

// punctReplacer maps Unicode look-alike punctuation, as produced by phone
// keyboards and copy-paste, to the ASCII characters the layouts expect.
var punctReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"－", "-", // fullwidth hyphen-minus
	"：", ":", // fullwidth colon
	"／", "/", // fullwidth solidus
	"．", ".", // fullwidth full stop
	" ", " ", // no-break space
	" ", " ", // figure space
	" ", " ", // narrow no-break space
	"　", " ", // ideographic space
)

// Normalize replaces Unicode punctuation variants with their ASCII
// equivalents and collapses all internal whitespace to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(punctReplacer.Replace(text)), " ")
}

// ParseLocalDateTime parses free-text date/time input as a naive local time
// and interprets it in loc. Input is normalized first, then matched against
// the accepted layouts in order; the first match wins.
func ParseLocalDateTime(text string, loc *time.Location) (time.Time, error) {
	normalized := Normalize(text)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnrecognizedDateTime
}

// IsValidLink reports whether text is an absolute http or https URL with a
// non-empty host.
func IsValidLink(text string) bool {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
