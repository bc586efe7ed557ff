package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kevin111234/economy-lab/internal/config"
	"github.com/kevin111234/economy-lab/internal/logger"
	"github.com/kevin111234/economy-lab/internal/model"
	"github.com/kevin111234/economy-lab/internal/request"
	"github.com/kevin111234/economy-lab/internal/tools"
	"go.uber.org/ratelimit"
)

// Market selects which of the two fixed endpoint pairs to hit.
type Market string

const (
	Spot    Market = "spot"
	Futures Market = "futures"
)

const (
	_minLimit = 1
	_maxLimit = 1000
)

type endpoint struct {
	client *request.Client
	path   string
}

// CandlesService loads OHLCV candles from the exchange REST API.
type CandlesService struct {
	endpoints   map[Market]endpoint
	pageLimit   int
	rateLimiter ratelimit.Limiter // 1200 weight/min on the provider side, stay under
	logger      logger.Logger
}

func NewCandlesService(cfg config.BinanceConfig, log logger.Logger) *CandlesService {
	if log == nil {
		log = logger.Nop{}
	}
	cfg.Setup()

	return &CandlesService{
		endpoints: map[Market]endpoint{
			Spot: {
				client: request.NewClient(cfg.SpotBaseURL, cfg.Timeout.Std(), cfg.MaxRetries, log),
				path:   cfg.SpotPath,
			},
			Futures: {
				client: request.NewClient(cfg.FuturesBaseURL, cfg.Timeout.Std(), cfg.MaxRetries, log),
				path:   cfg.FuturesPath,
			},
		},
		pageLimit:   cfg.PageLimit,
		rateLimiter: ratelimit.New(1000, ratelimit.Per(1*time.Minute)),
		logger:      log,
	}
}

// LoadQuery describes one candle fetch. Market defaults to spot and Limit to
// the configured page size when left zero.
type LoadQuery struct {
	Symbol   string
	Interval model.Interval
	Start    tools.TimeInput
	End      tools.TimeInput
	Market   Market
	Limit    int
}

// Load validates the query, then pages through the range and returns the
// merged table, time columns localized to KST. A valid range with no data
// comes back as an empty table, not an error.
func (s *CandlesService) Load(ctx context.Context, q LoadQuery) (model.CandleTable, error) {
	if q.Market == "" {
		q.Market = Spot
	}
	ep, ok := s.endpoints[q.Market]
	if !ok {
		return model.CandleTable{}, fmt.Errorf("unknown market %q (expected %q or %q)", q.Market, Spot, Futures)
	}

	symbol := strings.ToUpper(strings.TrimSpace(q.Symbol))
	if symbol == "" {
		return model.CandleTable{}, fmt.Errorf("empty symbol")
	}

	intervalMs, err := q.Interval.DurationMs()
	if err != nil {
		return model.CandleTable{}, err
	}

	if q.Start == nil || q.End == nil {
		return model.CandleTable{}, fmt.Errorf("both start and end times are required")
	}
	st, err := tools.ParseTime(q.Start)
	if err != nil {
		return model.CandleTable{}, fmt.Errorf("%w: can't parse start time", err)
	}
	et, err := tools.ParseTime(q.End)
	if err != nil {
		return model.CandleTable{}, fmt.Errorf("%w: can't parse end time", err)
	}
	if st > et {
		return model.CandleTable{}, fmt.Errorf("start time %d is after end time %d", st, et)
	}

	limit := q.Limit
	if limit == 0 {
		limit = s.pageLimit
	}
	if limit < _minLimit || limit > _maxLimit {
		return model.CandleTable{}, fmt.Errorf("limit must be within [%d, %d], got %d", _minLimit, _maxLimit, q.Limit)
	}

	log := s.logger.With("symbol", symbol, "interval", q.Interval, "market", q.Market)
	log.Infof("load candles st=%d et=%d limit=%d", st, et, limit)

	p := &klinePaginator{
		intervalMs: intervalMs,
		st:         st,
		et:         et,
		logger:     log,
	}

	return p.run(ctx, func(ctx context.Context, startMs int64) (model.CandleTable, error) {
		return s.fetchPage(ctx, ep, symbol, q.Interval, startMs, et, limit)
	})
}

func (s *CandlesService) fetchPage(
	ctx context.Context,
	ep endpoint,
	symbol string,
	interval model.Interval,
	startMs, endMs int64,
	limit int,
) (model.CandleTable, error) {
	s.rateLimiter.Take()

	params := map[string]string{
		"symbol":    symbol,
		"interval":  string(interval),
		"startTime": strconv.FormatInt(startMs, 10),
		"endTime":   strconv.FormatInt(endMs, 10),
		"limit":     strconv.Itoa(limit),
	}

	var raw RawKlines
	if err := ep.client.GetJSON(ctx, ep.path, params, &raw); err != nil {
		return model.CandleTable{}, fmt.Errorf("%w: can't fetch klines page", err)
	}

	return normalizeKlines(raw), nil
}

// Close releases the underlying HTTP clients.
func (s *CandlesService) Close() error {
	for _, ep := range s.endpoints {
		if err := ep.client.Close(); err != nil {
			return err
		}
	}
	return nil
}
