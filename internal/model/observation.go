package model

import (
	"sort"
	"time"
)

// Observation is one daily macro time-series point, dated at civil midnight.
// Value is nil when the source published the day without a number.
type Observation struct {
	Date  time.Time
	Value *float64
}

// ObservationTable is a named daily series, unique and ascending by date
// after SortDedupe.
type ObservationTable struct {
	Name string
	Rows []Observation
}

func NewObservationTable(name string) ObservationTable {
	return ObservationTable{Name: name, Rows: []Observation{}}
}

func (t ObservationTable) Len() int {
	return len(t.Rows)
}

// SortDedupe sorts ascending by date, keeping the later occurrence of any
// duplicated day.
func (t *ObservationTable) SortDedupe() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Date.Before(t.Rows[j].Date)
	})

	if len(t.Rows) < 2 {
		return
	}

	deduped := t.Rows[:0]
	for i, row := range t.Rows {
		if i+1 < len(t.Rows) && t.Rows[i+1].Date.Equal(row.Date) {
			continue
		}
		deduped = append(deduped, row)
	}
	t.Rows = deduped
}

// NullCount reports how many rows carry no value.
func (t ObservationTable) NullCount() int {
	n := 0
	for _, row := range t.Rows {
		if row.Value == nil {
			n++
		}
	}
	return n
}
