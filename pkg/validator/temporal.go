package validator

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/araddon/dateparse"
)

var (
	location atomic.Pointer[time.Location]

	meridiemRegex = regexp.MustCompile(`(?i)(\d)\s*([ap])\.?m\.?$`)
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006 3:04:05 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"01/02/2006 3:04 PM",
	"01/02/2006 15:04",
	"01/02/2006",
}

var timeLayouts = []string{
	"15:04:05.999999999",
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3 PM",
}

// SetLocation sets the location used for textual dates without a zone.
// Defaults to UTC.
func SetLocation(loc *time.Location) {
	location.Store(loc)
}

func currentLocation() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

// DateTimeType produces time.Time values.
type DateTimeType struct{}

func (DateTimeType) Name() string { return "datetime" }

func (DateTimeType) Coerce(_ context.Context, value any) (any, error) {
	return coerceTemporal(value, CodeCoerceDatetime, func(t time.Time) time.Time { return t }, false)
}

// DateType produces time.Time values at midnight UTC.
type DateType struct{}

func (DateType) Name() string { return "date" }

func (DateType) Coerce(_ context.Context, value any) (any, error) {
	return coerceTemporal(value, CodeCoerceDate, dateOf, false)
}

// TimeType produces time.Time values on 0000-01-01 UTC, keeping only the clock.
type TimeType struct{}

func (TimeType) Name() string { return "time" }

func (TimeType) Coerce(_ context.Context, value any) (any, error) {
	return coerceTemporal(value, CodeCoerceTime, clockOf, true)
}

func coerceTemporal(value any, code string, normalize func(time.Time) time.Time, clock bool) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return normalize(v), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return normalize(*v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if t, ok := parseTemporal(s, clock); ok {
			return normalize(t), nil
		}
	}
	return nil, NewError(code, nil)
}

func parseTemporal(s string, clock bool) (time.Time, bool) {
	s = meridiemRegex.ReplaceAllStringFunc(s, func(m string) string {
		parts := meridiemRegex.FindStringSubmatch(m)
		return parts[1] + " " + strings.ToUpper(parts[2]) + "M"
	})
	loc := currentLocation()

	if clock {
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	if !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clockOf(t time.Time) time.Time {
	return time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
