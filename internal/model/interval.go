package model

import (
	"fmt"
	"sort"
	"strings"
)

// Interval is a candle bucket size token as the provider spells it.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval3d  Interval = "3d"
	Interval1w  Interval = "1w"
)

// "1M" is deliberately absent: a calendar month has no fixed millisecond
// duration, so the kline paginator cannot advance its cursor by it.
var _intervalDurationsMs = map[Interval]int64{
	Interval1m:  60_000,
	Interval3m:  180_000,
	Interval5m:  300_000,
	Interval15m: 900_000,
	Interval30m: 1_800_000,
	Interval1h:  3_600_000,
	Interval2h:  7_200_000,
	Interval4h:  14_400_000,
	Interval6h:  21_600_000,
	Interval8h:  28_800_000,
	Interval12h: 43_200_000,
	Interval1d:  86_400_000,
	Interval3d:  259_200_000,
	Interval1w:  604_800_000,
}

// DurationMs returns the fixed bucket size in milliseconds. The error for an
// unknown token enumerates the supported set.
func (i Interval) DurationMs() (int64, error) {
	d, ok := _intervalDurationsMs[i]
	if !ok {
		return 0, fmt.Errorf("unsupported interval %q (supported: %s)", i, strings.Join(SupportedIntervals(), ", "))
	}
	return d, nil
}

// SupportedIntervals lists the valid tokens ordered by bucket size.
func SupportedIntervals() []string {
	tokens := make([]string, 0, len(_intervalDurationsMs))
	for k := range _intervalDurationsMs {
		tokens = append(tokens, string(k))
	}
	sort.Slice(tokens, func(i, j int) bool {
		return _intervalDurationsMs[Interval(tokens[i])] < _intervalDurationsMs[Interval(tokens[j])]
	})
	return tokens
}
