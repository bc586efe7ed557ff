package fred

import (
	"context"

	"github.com/kevin111234/economy-lab/internal/logger"
	"github.com/kevin111234/economy-lab/internal/model"
)

// fetchPageFunc fetches one page at the given offset and reports the typed
// rows plus the raw row count the provider returned.
type fetchPageFunc func(ctx context.Context, offset int) ([]model.Observation, int, error)

// observationPaginator advances a server-independent offset cursor: request
// a fixed limit, accumulate, stop at the first page shorter than the limit.
// Unlike the kline paginator there is nothing to stall on — the cursor moves
// by an amount we control, not by inspecting returned keys.
type observationPaginator struct {
	limit  int
	logger logger.Logger
}

func (p *observationPaginator) run(ctx context.Context, fetch fetchPageFunc) ([]model.Observation, error) {
	var rows []model.Observation

	offset := 0
	pages := 0
	for {
		page, rawCount, err := fetch(ctx, offset)
		if err != nil {
			return nil, err
		}

		rows = append(rows, page...)
		pages++

		if rawCount < p.limit {
			break
		}
		offset += p.limit
	}

	p.logger.Debugf("paginate observations done pages=%d rows=%d", pages, len(rows))

	return rows, nil
}
