package binance

import (
	"strconv"
	"time"

	"github.com/kevin111234/economy-lab/internal/model"
)

// RawKlines is the provider wire format: one fixed-length array per candle,
// numbers shipped as strings.
type RawKlines [][]any

// Field positions within one kline array. Index 11 is a legacy field the
// provider tells clients to ignore.
const (
	_fieldOpenTime = iota
	_fieldOpen
	_fieldHigh
	_fieldLow
	_fieldClose
	_fieldVolume
	_fieldCloseTime
	_fieldQuoteVolume
	_fieldTradeCount
	_fieldTakerBuyBase
	_fieldTakerBuyQuote
	_klineFieldCount = 12
)

// normalizeKlines converts one raw payload into a typed table: ascending by
// open time, duplicates collapsed keeping the later occurrence, rows with a
// non-numeric OHLCV field dropped. An empty payload yields the canonical
// empty table, never a schemaless one.
func normalizeKlines(raw RawKlines) model.CandleTable {
	out := model.NewCandleTable()
	for _, k := range raw {
		if len(k) < _klineFieldCount {
			continue
		}

		openMs, ok := asInt64(k[_fieldOpenTime])
		if !ok {
			continue
		}
		open, okO := asFloat(k[_fieldOpen])
		high, okH := asFloat(k[_fieldHigh])
		low, okL := asFloat(k[_fieldLow])
		closePrice, okC := asFloat(k[_fieldClose])
		volume, okV := asFloat(k[_fieldVolume])
		if !okO || !okH || !okL || !okC || !okV {
			continue
		}

		closeMs, _ := asInt64(k[_fieldCloseTime])
		quoteVolume, _ := asFloat(k[_fieldQuoteVolume])
		takerBuyBase, _ := asFloat(k[_fieldTakerBuyBase])
		takerBuyQuote, _ := asFloat(k[_fieldTakerBuyQuote])

		var tradeCount *int64
		if n, ok := asInt64(k[_fieldTradeCount]); ok {
			tradeCount = &n
		}

		out.Append(model.Candle{
			OpenTime:      time.UnixMilli(openMs).UTC(),
			Open:          open,
			High:          high,
			Low:           low,
			Close:         closePrice,
			Volume:        volume,
			CloseTime:     time.UnixMilli(closeMs).UTC(),
			QuoteVolume:   quoteVolume,
			TradeCount:    tradeCount,
			TakerBuyBase:  takerBuyBase,
			TakerBuyQuote: takerBuyQuote,
		})
	}

	out.SortDedupe()

	return out
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return int64(t), true
	case int64:
		return t, true
	default:
		return 0, false
	}
}
