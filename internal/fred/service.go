package fred

import (
	"context"
	"errors"
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

const _observationsPath = "/series/observations"

const (
	_minLimit = 1
	_maxLimit = 1000
)

// ErrMissingAPIKey means the service was built without a FRED api key. The
// provider rejects every call without one, so fail before the first request.
var ErrMissingAPIKey = errors.New("missing FRED api key")

// ObservationsService loads daily macro series from the FRED REST API.
type ObservationsService struct {
	client      *request.Client
	apiKey      string
	pageLimit   int
	rateLimiter ratelimit.Limiter // provider allows 120 req/min
	logger      logger.Logger
}

func NewObservationsService(cfg config.FREDConfig, log logger.Logger) (*ObservationsService, error) {
	if log == nil {
		log = logger.Nop{}
	}
	cfg.Setup()

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &ObservationsService{
		client:      request.NewClient(cfg.BaseURL, cfg.Timeout.Std(), cfg.MaxRetries, log),
		apiKey:      cfg.APIKey,
		pageLimit:   cfg.PageLimit,
		rateLimiter: ratelimit.New(100, ratelimit.Per(1*time.Minute)),
		logger:      log,
	}, nil
}

// SeriesQuery describes one series fetch. Column names the value column of
// the resulting table; Limit defaults to the configured page size.
type SeriesQuery struct {
	SeriesID string
	Column   string
	Start    tools.TimeInput
	End      tools.TimeInput
	Limit    int
}

// LoadSeries validates the query, pages through the range offset by offset
// and returns the merged, date-ascending table. Null values survive into the
// table and are reported as a data-quality warning, not an error.
func (s *ObservationsService) LoadSeries(ctx context.Context, q SeriesQuery) (model.ObservationTable, error) {
	seriesID := strings.TrimSpace(q.SeriesID)
	if seriesID == "" {
		return model.ObservationTable{}, fmt.Errorf("empty series id")
	}

	column := q.Column
	if column == "" {
		column = seriesID
	}

	if q.Start == nil || q.End == nil {
		return model.ObservationTable{}, fmt.Errorf("both start and end times are required")
	}
	st, err := tools.ParseTime(q.Start)
	if err != nil {
		return model.ObservationTable{}, fmt.Errorf("%w: can't parse start time", err)
	}
	et, err := tools.ParseTime(q.End)
	if err != nil {
		return model.ObservationTable{}, fmt.Errorf("%w: can't parse end time", err)
	}
	if st > et {
		return model.ObservationTable{}, fmt.Errorf("start time %d is after end time %d", st, et)
	}

	limit := q.Limit
	if limit == 0 {
		limit = s.pageLimit
	}
	if limit < _minLimit || limit > _maxLimit {
		return model.ObservationTable{}, fmt.Errorf("limit must be within [%d, %d], got %d", _minLimit, _maxLimit, q.Limit)
	}

	start := time.UnixMilli(st).In(tools.KST).Format(_dateLayout)
	end := time.UnixMilli(et).In(tools.KST).Format(_dateLayout)

	log := s.logger.With("series_id", seriesID)
	log.Infof("load observations start=%s end=%s limit=%d", start, end, limit)

	p := &observationPaginator{limit: limit, logger: log}
	rows, err := p.run(ctx, func(ctx context.Context, offset int) ([]model.Observation, int, error) {
		return s.fetchPage(ctx, seriesID, start, end, limit, offset)
	})
	if err != nil {
		return model.ObservationTable{}, err
	}

	table := model.ObservationTable{Name: column, Rows: rows}
	if table.Rows == nil {
		table.Rows = []model.Observation{}
	}
	table.SortDedupe()

	if nulls := table.NullCount(); nulls > 0 {
		log.Warnf("series has %d null values out of %d rows", nulls, table.Len())
	}
	if bad := nonPositiveCount(table); bad > 0 {
		log.Warnf("series has %d zero or negative values out of %d rows", bad, table.Len())
	}

	return table, nil
}

// nonPositiveCount flags rates and indexes that cannot legitimately be <= 0,
// which usually means a provider-side data glitch.
func nonPositiveCount(t model.ObservationTable) int {
	n := 0
	for _, row := range t.Rows {
		if row.Value != nil && *row.Value <= 0 {
			n++
		}
	}
	return n
}

func (s *ObservationsService) fetchPage(
	ctx context.Context,
	seriesID, start, end string,
	limit, offset int,
) ([]model.Observation, int, error) {
	s.rateLimiter.Take()

	params := map[string]string{
		"series_id":         seriesID,
		"api_key":           s.apiKey,
		"file_type":         "json",
		"observation_start": start,
		"observation_end":   end,
		"limit":             strconv.Itoa(limit),
		"offset":            strconv.Itoa(offset),
		"sort_order":        "asc",
	}

	var resp observationsResponse
	if err := s.client.GetJSON(ctx, _observationsPath, params, &resp); err != nil {
		return nil, 0, fmt.Errorf("%w: can't fetch observations page", err)
	}

	rows, err := normalizeObservations(resp.Observations)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: can't normalize observations", err)
	}

	return rows, len(resp.Observations), nil
}

// Close releases the underlying HTTP client.
func (s *ObservationsService) Close() error {
	return s.client.Close()
}
