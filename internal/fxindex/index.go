// Package fxindex derives KRW-strength series from the fetched FRED tables.
// It is a consumer of the ingestion core, not part of it.
package fxindex

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kevin111234/economy-lab/internal/model"
)

// Rebase scales a series so that its value at baseDate becomes 100. Rows
// without a value stay null. The base date must exist and carry a value.
func Rebase(t model.ObservationTable, baseDate time.Time) (model.ObservationTable, error) {
	var base *float64
	for _, row := range t.Rows {
		if sameDay(row.Date, baseDate) && row.Value != nil {
			base = row.Value
			break
		}
	}
	if base == nil {
		return model.ObservationTable{}, fmt.Errorf("no value at base date %s in series %s", baseDate.Format("2006-01-02"), t.Name)
	}
	if *base == 0 {
		return model.ObservationTable{}, fmt.Errorf("zero value at base date %s in series %s", baseDate.Format("2006-01-02"), t.Name)
	}

	out := model.NewObservationTable(t.Name + "_rebased")
	for _, row := range t.Rows {
		r := model.Observation{Date: row.Date}
		if row.Value != nil {
			v := *row.Value / *base * 100
			r.Value = &v
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// WonIndex derives a KRW strength index from the KRW/USD rate and the dollar
// index. Both series are joined on date, log-transformed, and log(KRW/USD)
// is regressed on log(USD index); the index is 100 * exp(-residual), so days
// where the won is stronger than the dollar index alone explains read above
// 100.
func WonIndex(krwPerUSD, usdIndex model.ObservationTable) (model.ObservationTable, error) {
	type pair struct {
		date time.Time
		x, y float64
	}

	byDay := make(map[int64]float64, usdIndex.Len())
	for _, row := range usdIndex.Rows {
		if row.Value != nil && *row.Value > 0 {
			byDay[dayKey(row.Date)] = *row.Value
		}
	}

	var pairs []pair
	for _, row := range krwPerUSD.Rows {
		if row.Value == nil || *row.Value <= 0 {
			continue
		}
		usd, ok := byDay[dayKey(row.Date)]
		if !ok {
			continue
		}
		pairs = append(pairs, pair{
			date: row.Date,
			x:    math.Log(usd),
			y:    math.Log(*row.Value),
		})
	}
	if len(pairs) < 2 {
		return model.ObservationTable{}, fmt.Errorf("need at least 2 overlapping observations, got %d", len(pairs))
	}

	// Ordinary least squares: y = alpha + beta*x.
	var sumX, sumY, sumXX, sumXY float64
	for _, p := range pairs {
		sumX += p.x
		sumY += p.y
		sumXX += p.x * p.x
		sumXY += p.x * p.y
	}
	n := float64(len(pairs))
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return model.ObservationTable{}, fmt.Errorf("degenerate regression: dollar index is constant")
	}
	beta := (n*sumXY - sumX*sumY) / denom
	alpha := (sumY - beta*sumX) / n

	out := model.NewObservationTable("won_index")
	for _, p := range pairs {
		residual := p.y - (alpha + beta*p.x)
		v := 100 * math.Exp(-residual)
		out.Rows = append(out.Rows, model.Observation{Date: p.date, Value: &v})
	}
	out.SortDedupe()
	return out, nil
}

// Bundle is a date-aligned wide view over several daily series.
type Bundle struct {
	Columns []string
	Rows    []BundleRow
}

type BundleRow struct {
	Date   time.Time
	Values map[string]*float64
}

// Merge outer-joins the given tables on date, ascending. Missing days stay
// null per column.
func Merge(tables ...model.ObservationTable) Bundle {
	columns := make([]string, 0, len(tables))
	byDay := make(map[int64]BundleRow)

	for _, t := range tables {
		columns = append(columns, t.Name)
		for _, row := range t.Rows {
			key := dayKey(row.Date)
			entry, ok := byDay[key]
			if !ok {
				entry = BundleRow{Date: row.Date, Values: make(map[string]*float64, len(tables))}
			}
			entry.Values[t.Name] = row.Value
			byDay[key] = entry
		}
	}

	rows := make([]BundleRow, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return Bundle{Columns: columns, Rows: rows}
}

func dayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return int64(y)*10000 + int64(m)*100 + int64(d)
}

func sameDay(a, b time.Time) bool {
	return dayKey(a) == dayKey(b)
}
