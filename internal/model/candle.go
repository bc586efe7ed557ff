package model

import (
	"sort"
	"time"
)

// Candle is one OHLCV bucket, keyed by its open time. TradeCount is a
// pointer because some providers omit it.
type Candle struct {
	OpenTime      time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	CloseTime     time.Time
	QuoteVolume   float64
	TradeCount    *int64
	TakerBuyBase  float64
	TakerBuyQuote float64
}

// CandleTable holds candles that, once SortDedupe has run, are unique by open
// time and strictly ascending.
type CandleTable struct {
	Rows []Candle
}

// NewCandleTable returns an empty table with the schema in place, so that a
// range with no data still concatenates cleanly downstream.
func NewCandleTable() CandleTable {
	return CandleTable{Rows: []Candle{}}
}

func (t *CandleTable) Append(rows ...Candle) {
	t.Rows = append(t.Rows, rows...)
}

func (t CandleTable) Len() int {
	return len(t.Rows)
}

// SortDedupe sorts ascending by open time and collapses duplicates, keeping
// the occurrence that came later in the input.
func (t *CandleTable) SortDedupe() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].OpenTime.Before(t.Rows[j].OpenTime)
	})

	if len(t.Rows) < 2 {
		return
	}

	deduped := t.Rows[:0]
	for i, row := range t.Rows {
		if i+1 < len(t.Rows) && t.Rows[i+1].OpenTime.Equal(row.OpenTime) {
			continue
		}
		deduped = append(deduped, row)
	}
	t.Rows = deduped
}

// TruncateAfter drops rows whose open time is past the upper bound.
func (t *CandleTable) TruncateAfter(endMs int64) {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if row.OpenTime.UnixMilli() <= endMs {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

// Localize rewrites the time columns into loc for output.
func (t *CandleTable) Localize(loc *time.Location) {
	for i := range t.Rows {
		t.Rows[i].OpenTime = t.Rows[i].OpenTime.In(loc)
		t.Rows[i].CloseTime = t.Rows[i].CloseTime.In(loc)
	}
}
