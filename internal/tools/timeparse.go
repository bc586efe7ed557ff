package tools

import (
	"fmt"
	"strings"
	"time"
)

// KST is the civil timezone anchor: every wall-clock string at the system
// boundary is read as Korean local time. Fixed UTC+9, no daylight saving.
var KST = time.FixedZone("KST", 9*60*60)

const (
	_datetimeLayout = "2006-01-02 15:04"
	_dateOnlyLen    = len("2006-01-02")

	// Anything below this is almost certainly epoch seconds, not milliseconds.
	_minEpochMs = 1_000_000_000_000
)

// TimeInput is a KST wall-clock string ("YYYY-MM-DD" or "YYYY-MM-DD HH:MM")
// or an epoch-millisecond value.
type TimeInput interface {
	isTimeInput()
}

type TimeString string

func (TimeString) isTimeInput() {}

type TimeMillis int64

func (TimeMillis) isTimeInput() {}

// TimeInputOf narrows an untyped boundary value into a TimeInput. bool is
// rejected explicitly so that it can never be mistaken for a timestamp, and
// any other shape fails with a type error naming it.
func TimeInputOf(v any) (TimeInput, error) {
	switch t := v.(type) {
	case bool:
		return nil, fmt.Errorf("time must not be bool")
	case int:
		return TimeMillis(t), nil
	case int64:
		return TimeMillis(t), nil
	case string:
		return TimeString(t), nil
	case TimeString:
		return t, nil
	case TimeMillis:
		return t, nil
	default:
		return nil, fmt.Errorf("time must be string or epoch ms int, got %T", v)
	}
}

// ParseTime converts a TimeInput into epoch milliseconds (UTC). Date-only
// strings get a default local time of 00:00 appended before parsing. Integer
// inputs must already be epoch milliseconds and pass through unchanged.
func ParseTime(in TimeInput) (int64, error) {
	switch t := in.(type) {
	case TimeMillis:
		ms := int64(t)
		if ms < 0 {
			return 0, fmt.Errorf("timestamp must be >= 0 ms, got %d", ms)
		}
		if ms < _minEpochMs {
			return 0, fmt.Errorf("timestamp must be epoch milliseconds, got %d", ms)
		}
		return ms, nil
	case TimeString:
		s := strings.TrimSpace(string(t))
		if len(s) == _dateOnlyLen {
			s += " 00:00"
		}
		dt, err := time.ParseInLocation(_datetimeLayout, s, KST)
		if err != nil {
			return 0, fmt.Errorf("invalid datetime: %q (expected 'YYYY-MM-DD[ HH:MM]')", s)
		}
		return dt.UTC().UnixMilli(), nil
	default:
		return 0, fmt.Errorf("empty time input")
	}
}

// ParseTimeAny is TimeInputOf followed by ParseTime, for callers holding an
// untyped value.
func ParseTimeAny(v any) (int64, error) {
	in, err := TimeInputOf(v)
	if err != nil {
		return 0, err
	}
	return ParseTime(in)
}
