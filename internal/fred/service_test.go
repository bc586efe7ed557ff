package fred

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/kevin111234/economy-lab/internal/config"
	"github.com/kevin111234/economy-lab/internal/logger"
	"github.com/kevin111234/economy-lab/internal/tools"
)

func newTestService(t *testing.T, pageLimit int, handler http.HandlerFunc) *ObservationsService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewObservationsService(config.FREDConfig{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		PageLimit: pageLimit,
	}, logger.Nop{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	return svc
}

func observationsBody(rows ...string) string {
	return fmt.Sprintf(`{"observations":[%s]}`, strings.Join(rows, ","))
}

func obs(date, value string) string {
	return fmt.Sprintf(`{"date":%q,"value":%q}`, date, value)
}

func TestLoadSeriesPagesByOffset(t *testing.T) {
	all := []string{
		obs("2024-01-02", "1300.5"),
		obs("2024-01-03", "1301.0"),
		obs("2024-01-04", "1299.8"),
		obs("2024-01-05", "1302.2"),
		obs("2024-01-08", "1305.0"),
	}

	var offsets []int
	svc := newTestService(t, 2, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/observations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("series_id") != "DEXKOUS" {
			t.Errorf("expected series_id DEXKOUS, got %s", q.Get("series_id"))
		}
		if q.Get("api_key") != "test-key" {
			t.Errorf("expected api key param, got %q", q.Get("api_key"))
		}
		if q.Get("file_type") != "json" || q.Get("sort_order") != "asc" {
			t.Errorf("expected file_type=json sort_order=asc, got %v", q)
		}
		if q.Get("observation_start") != "2024-01-01" || q.Get("observation_end") != "2024-02-01" {
			t.Errorf("expected date-formatted range params, got %v", q)
		}

		offset, _ := strconv.Atoi(q.Get("offset"))
		offsets = append(offsets, offset)

		end := min(offset+2, len(all))
		_, _ = w.Write([]byte(observationsBody(all[offset:end]...)))
	})

	table, err := svc.LoadSeries(context.Background(), SeriesQuery{
		SeriesID: "DEXKOUS",
		Column:   "krw_per_usd",
		Start:    tools.TimeString("2024-01-01"),
		End:      tools.TimeString("2024-02-01"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Pages of 2, 2 and 1: the short last page stops the walk.
	wantOffsets := []int{0, 2, 4}
	if len(offsets) != len(wantOffsets) {
		t.Fatalf("expected offsets %v, got %v", wantOffsets, offsets)
	}
	for i, want := range wantOffsets {
		if offsets[i] != want {
			t.Errorf("offset %d: expected %d, got %d", i, want, offsets[i])
		}
	}

	if table.Name != "krw_per_usd" {
		t.Errorf("expected column name krw_per_usd, got %q", table.Name)
	}
	if table.Len() != 5 {
		t.Fatalf("expected 5 rows, got %d", table.Len())
	}
	for i := 1; i < table.Len(); i++ {
		if !table.Rows[i-1].Date.Before(table.Rows[i].Date) {
			t.Errorf("dates not strictly ascending at %d", i)
		}
	}
	if table.Rows[0].Value == nil || *table.Rows[0].Value != 1300.5 {
		t.Errorf("expected first value 1300.5, got %v", table.Rows[0].Value)
	}
}

func TestLoadSeriesPreservesNulls(t *testing.T) {
	svc := newTestService(t, 100, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(observationsBody(
			obs("2024-01-02", "1300.5"),
			obs("2024-01-03", "."), // provider's spelling of a missing value
			obs("2024-01-04", "1299.8"),
		)))
	})

	table, err := svc.LoadSeries(context.Background(), SeriesQuery{
		SeriesID: "DEXKOUS",
		Start:    tools.TimeString("2024-01-01"),
		End:      tools.TimeString("2024-02-01"),
	})
	if err != nil {
		t.Fatalf("a null value is a warning, not an error, got %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}
	if table.Rows[1].Value != nil {
		t.Errorf("expected nil value for '.', got %v", *table.Rows[1].Value)
	}
	if table.NullCount() != 1 {
		t.Errorf("expected 1 null, got %d", table.NullCount())
	}
	if table.Name != "DEXKOUS" {
		t.Errorf("column must default to the series id, got %q", table.Name)
	}
}

func TestLoadSeriesEmptyRangeYieldsEmptyTable(t *testing.T) {
	svc := newTestService(t, 100, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"observations":[]}`))
	})

	table, err := svc.LoadSeries(context.Background(), SeriesQuery{
		SeriesID: "DTWEXBGS",
		Start:    tools.TimeString("2024-01-01"),
		End:      tools.TimeString("2024-01-02"),
	})
	if err != nil {
		t.Fatalf("absence of data is not an error, got %v", err)
	}
	if table.Rows == nil || table.Len() != 0 {
		t.Errorf("expected canonical empty table, got %#v", table)
	}
}

func TestNewObservationsServiceRequiresAPIKey(t *testing.T) {
	t.Setenv("FRED_API_KEY", "")

	_, err := NewObservationsService(config.FREDConfig{}, logger.Nop{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestLoadSeriesValidation(t *testing.T) {
	svc := newTestService(t, 100, func(w http.ResponseWriter, r *http.Request) {
		t.Error("validation failures must never reach the network")
	})

	valid := SeriesQuery{
		SeriesID: "DEXKOUS",
		Start:    tools.TimeString("2024-01-01"),
		End:      tools.TimeString("2024-02-01"),
	}

	tests := []struct {
		name    string
		mutate  func(q *SeriesQuery)
		wantMsg string
	}{
		{"empty series id", func(q *SeriesQuery) { q.SeriesID = " " }, "empty series id"},
		{"missing start", func(q *SeriesQuery) { q.Start = nil }, "required"},
		{"start after end", func(q *SeriesQuery) { q.Start = tools.TimeString("2024-03-01") }, "after end time"},
		{"bad time string", func(q *SeriesQuery) { q.End = tools.TimeString("tomorrow") }, "invalid datetime"},
		{"limit too large", func(q *SeriesQuery) { q.Limit = 100_000 }, "limit must be within"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			_, err := svc.LoadSeries(context.Background(), q)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}
}
