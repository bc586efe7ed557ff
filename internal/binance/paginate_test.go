package binance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kevin111234/economy-lab/internal/logger"
	"github.com/kevin111234/economy-lab/internal/model"
	"github.com/kevin111234/economy-lab/internal/tools"
)

const _minuteMs = int64(60_000)

// aligned to a minute boundary, comfortably past the epoch-ms guard
const _baseMs = int64(1_700_000_100_000)

func pageOf(openTimes ...int64) model.CandleTable {
	table := model.NewCandleTable()
	for _, ms := range openTimes {
		table.Append(model.Candle{
			OpenTime:  time.UnixMilli(ms).UTC(),
			Open:      1, High: 1, Low: 1, Close: 1, Volume: 1,
			CloseTime: time.UnixMilli(ms + _minuteMs - 1).UTC(),
		})
	}
	return table
}

func TestKlinePaginatorStallsOnNoProgress(t *testing.T) {
	p := &klinePaginator{
		intervalMs: _minuteMs,
		st:         _baseMs,
		et:         _baseMs + 10*_minuteMs,
		logger:     logger.Nop{},
	}

	_, err := p.run(context.Background(), func(_ context.Context, startMs int64) (model.CandleTable, error) {
		// Last row's open equals the requested cursor: no forward progress.
		return pageOf(startMs), nil
	})

	if !errors.Is(err, ErrStalled) {
		t.Fatalf("expected ErrStalled, got %v", err)
	}
}

func TestKlinePaginatorWalksRangeInPages(t *testing.T) {
	st := _baseMs
	et := _baseMs + 9*_minuteMs // 10 buckets inclusive

	p := &klinePaginator{intervalMs: _minuteMs, st: st, et: et, logger: logger.Nop{}}

	var requested []int64
	table, err := p.run(context.Background(), func(_ context.Context, startMs int64) (model.CandleTable, error) {
		requested = append(requested, startMs)
		// Serve at most 4 buckets per page, never past et.
		var opens []int64
		for ms := startMs; ms <= et && len(opens) < 4; ms += _minuteMs {
			opens = append(opens, ms)
		}
		return pageOf(opens...), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 10 {
		t.Fatalf("expected 10 rows, got %d", table.Len())
	}
	for i := 1; i < table.Len(); i++ {
		if !table.Rows[i-1].OpenTime.Before(table.Rows[i].OpenTime) {
			t.Errorf("rows not strictly ascending at %d", i)
		}
	}

	wantCursors := []int64{st, st + 4*_minuteMs, st + 8*_minuteMs}
	if len(requested) != len(wantCursors) {
		t.Fatalf("expected cursors %v, got %v", wantCursors, requested)
	}
	for i, want := range wantCursors {
		if requested[i] != want {
			t.Errorf("cursor %d: expected %d, got %d", i, want, requested[i])
		}
	}
}

func TestKlinePaginatorEmptyPageMeansDone(t *testing.T) {
	p := &klinePaginator{
		intervalMs: _minuteMs,
		st:         _baseMs,
		et:         _baseMs + 5*_minuteMs,
		logger:     logger.Nop{},
	}

	calls := 0
	table, err := p.run(context.Background(), func(_ context.Context, _ int64) (model.CandleTable, error) {
		calls++
		return model.NewCandleTable(), nil
	})
	if err != nil {
		t.Fatalf("an empty range is not an error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single request, got %d", calls)
	}
	if table.Rows == nil || table.Len() != 0 {
		t.Errorf("expected canonical empty table, got %#v", table)
	}
}

func TestKlinePaginatorTruncatesAndLocalizes(t *testing.T) {
	st := _baseMs
	et := _baseMs + 2*_minuteMs

	p := &klinePaginator{intervalMs: _minuteMs, st: st, et: et, logger: logger.Nop{}}

	table, err := p.run(context.Background(), func(_ context.Context, startMs int64) (model.CandleTable, error) {
		// One bucket past et: must be cut in finalize.
		return pageOf(startMs, startMs+_minuteMs, startMs+2*_minuteMs, startMs+3*_minuteMs), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 rows within [st, et], got %d", table.Len())
	}
	for _, row := range table.Rows {
		if row.OpenTime.Location() != tools.KST {
			t.Errorf("expected KST output, got %v", row.OpenTime.Location())
		}
	}
}
