// Package format holds the date and currency formatting shared by every bank
// renderer. All functions are pure.
package format

import (
	"strings"
	"time"

	statement "statement-pdf/internal/statement/domain"
)

// Display layouts used by bank renderers.
const (
	LayoutDayMonthYear      = "2 Jan 2006"           // 3 Aug 2025
	LayoutSlashShortYear    = "02/01/06"             // 03/08/25
	LayoutDashed            = "02-01-2006"           // 03-08-2025
	LayoutDashedMonthTime   = "02-Jan-2006 15:04:05" // 03-Aug-2025 10:15:00
	LayoutSlashFullYear     = "02/01/2006"           // 03/08/2025
	dateOnlyLayout          = "2006-01-02"
	localDateTimeLayout     = "2006-01-02T15:04:05"
	localDateTimeNanoLayout = "2006-01-02T15:04:05.999999999"
)

// ParseInstant parses an ISO-8601 instant. RFC 3339 values keep their own
// offset; date-only and offset-less values are read as UTC.
func ParseInstant(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &statement.DateParseError{Raw: raw}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{localDateTimeNanoLayout, localDateTimeLayout, dateOnlyLayout} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	_, err := time.Parse(time.RFC3339Nano, value)
	return time.Time{}, &statement.DateParseError{Raw: raw, Err: err}
}

// Date renders raw with layout. Month names are English.
func Date(raw, layout string) (string, error) {
	t, err := ParseInstant(raw)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
