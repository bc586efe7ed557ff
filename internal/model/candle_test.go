package model

import (
	"testing"
	"time"
)

func candleAt(ms int64, close float64) Candle {
	return Candle{
		OpenTime:  time.UnixMilli(ms).UTC(),
		Close:     close,
		CloseTime: time.UnixMilli(ms + 59_999).UTC(),
	}
}

func TestCandleTableSortDedupeKeepsLast(t *testing.T) {
	table := NewCandleTable()
	table.Append(
		candleAt(120_000, 3),
		candleAt(60_000, 1),
		candleAt(120_000, 4), // duplicate key, later occurrence wins
		candleAt(180_000, 5),
	)

	table.SortDedupe()

	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}
	for i := 1; i < table.Len(); i++ {
		if !table.Rows[i-1].OpenTime.Before(table.Rows[i].OpenTime) {
			t.Errorf("rows not strictly ascending at %d", i)
		}
	}
	if table.Rows[1].Close != 4 {
		t.Errorf("expected later duplicate to win, got close=%f", table.Rows[1].Close)
	}
}

func TestCandleTableTruncateAfter(t *testing.T) {
	table := NewCandleTable()
	table.Append(candleAt(60_000, 1), candleAt(120_000, 2), candleAt(180_000, 3))

	table.TruncateAfter(120_000)

	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if got := table.Rows[1].OpenTime.UnixMilli(); got != 120_000 {
		t.Errorf("expected last open 120000, got %d", got)
	}
}

func TestNewCandleTableIsEmptyButTyped(t *testing.T) {
	table := NewCandleTable()
	if table.Rows == nil {
		t.Fatal("rows must be an empty slice, not nil")
	}
	if table.Len() != 0 {
		t.Fatalf("expected 0 rows, got %d", table.Len())
	}
}
