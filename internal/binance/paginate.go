package binance

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevin111234/economy-lab/internal/logger"
	"github.com/kevin111234/economy-lab/internal/model"
	"github.com/kevin111234/economy-lab/internal/tools"
)

// ErrStalled means the provider returned a page with no forward progress.
// Continuing would loop forever, so the fetch dies on the spot.
var ErrStalled = errors.New("kline pagination stalled")

type pageState int

const (
	stateAdvancing pageState = iota
	stateDone
	stateStalled
)

// fetchPageFunc fetches one page starting at startMs. Satisfied by
// CandlesService and by test fakes.
type fetchPageFunc func(ctx context.Context, startMs int64) (model.CandleTable, error)

// klinePaginator walks [st, et] in provider-sized pages. The next cursor is
// computed from the last row the provider actually returned, not from the
// cursor we asked for.
type klinePaginator struct {
	intervalMs int64
	st         int64
	et         int64
	logger     logger.Logger
}

func (p *klinePaginator) run(ctx context.Context, fetch fetchPageFunc) (model.CandleTable, error) {
	first := ceilTo(p.st, p.intervalMs)
	last := floorTo(p.et, p.intervalMs)

	// Diagnostic only: the loop below never branches on this.
	var expectedRows int64
	if last >= first {
		expectedRows = (last-first)/p.intervalMs + 1
	}
	p.logger.Debugf("paginate klines st=%d et=%d interval_ms=%d expected_rows=%d",
		p.st, p.et, p.intervalMs, expectedRows)

	out := model.NewCandleTable()
	pages := 0

	state := stateAdvancing
	current := first
	for state == stateAdvancing && current <= p.et {
		page, err := fetch(ctx, current)
		if err != nil {
			return model.CandleTable{}, err
		}

		if page.Len() == 0 {
			// The range is exhausted or simply empty at the edge.
			state = stateDone
			break
		}

		out.Append(page.Rows...)
		pages++

		lastOpen := page.Rows[page.Len()-1].OpenTime.UnixMilli()
		if lastOpen <= current {
			state = stateStalled
			return model.CandleTable{}, fmt.Errorf("%w: startTime=%d last_open=%d rows=%d",
				ErrStalled, current, lastOpen, page.Len())
		}

		current = lastOpen + p.intervalMs
		if current > p.et {
			state = stateDone
		}
	}

	out.SortDedupe()
	out.TruncateAfter(p.et)
	out.Localize(tools.KST)

	p.logger.Infof("paginate klines done pages=%d rows=%d expected_rows=%d", pages, out.Len(), expectedRows)
	if int64(out.Len()) != expectedRows {
		p.logger.Warnf("kline row count %d differs from expected %d", out.Len(), expectedRows)
	}

	return out, nil
}

// ceilTo rounds ms up to the next multiple of step.
func ceilTo(ms, step int64) int64 {
	rem := ms % step
	if rem == 0 {
		return ms
	}
	return ms - rem + step
}

// floorTo rounds ms down to the previous multiple of step.
func floorTo(ms, step int64) int64 {
	return ms - ms%step
}
