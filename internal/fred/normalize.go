package fred

import (
	"strconv"
	"time"

	"github.com/kevin111234/economy-lab/internal/model"
	"github.com/kevin111234/economy-lab/internal/tools"
)

const _dateLayout = "2006-01-02"

// observationsResponse is the provider wire format.
type observationsResponse struct {
	Observations []rawObservation `json:"observations"`
}

type rawObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// normalizeObservations converts raw observations into typed rows dated at
// KST civil midnight. The provider ships missing values as "." — those come
// through as nil, never as a dropped row.
func normalizeObservations(raw []rawObservation) ([]model.Observation, error) {
	rows := make([]model.Observation, 0, len(raw))
	for _, o := range raw {
		date, err := time.ParseInLocation(_dateLayout, o.Date, tools.KST)
		if err != nil {
			return nil, err
		}

		var value *float64
		if f, err := strconv.ParseFloat(o.Value, 64); err == nil {
			value = &f
		}

		rows = append(rows, model.Observation{Date: date, Value: value})
	}
	return rows, nil
}
