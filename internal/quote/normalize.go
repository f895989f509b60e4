package quote

import (
	"math"
	"strings"

	"quotefeed/internal/provider"
)

const datetimeLayout = "2006-01-02 15:04:05"

// Normalize turns one ticker's raw series plus its fundamentals snapshot
// into the canonical Response. period and interval are echoed verbatim.
//
// The series is keyed the way the provider's multi-ticker path keys it; when
// the requested ticker is not a key but the series holds exactly one ticker,
// that one is taken (single-ticker fetches reuse the batch code path).
func Normalize(ticker, period, interval string, series provider.Series, fundamentals map[string]float64) (*Response, error) {
	upper := strings.ToUpper(ticker)

	bars, ok := series[upper]
	if !ok && len(series) == 1 {
		for _, only := range series {
			bars = only
		}
	}
	if len(bars) == 0 {
		return nil, Errorf(KindNotFound, "no data found for %s", upper)
	}

	data := make([]BarRow, 0, len(bars))
	for i, b := range bars {
		if b.Timestamp.IsZero() {
			// upstream contract violation, surfaced as-is
			return nil, Errorf(KindInternal, "series for %s: bar %d has no timestamp", upper, i)
		}
		data = append(data, BarRow{
			Datetime: b.Timestamp.UTC().Format(datetimeLayout),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   intVolume(b.Volume),
		})
	}

	last := bars[len(bars)-1]
	metrics := Metrics{
		Open:      last.Open,
		High:      last.High,
		Low:       last.Low,
		Close:     last.Close,
		Volume:    intVolume(last.Volume),
		YearHigh:  lookup(fundamentals, provider.KeyYearHigh),
		YearLow:   lookup(fundamentals, provider.KeyYearLow),
		MarketCap: lookup(fundamentals, provider.KeyMarketCap),
		PERatio:   lookup(fundamentals, provider.KeyPERatio),
		AvgVolume: lookup(fundamentals, provider.KeyAvgVolume),
		Beta:      lookup(fundamentals, provider.KeyBeta),
	}

	return &Response{
		Ticker:   upper,
		Period:   period,
		Interval: interval,
		Count:    len(data),
		Metrics:  metrics,
		Data:     data,
	}, nil
}

func intVolume(v float64) *int64 {
	if math.IsNaN(v) {
		return nil
	}
	n := int64(v)
	return &n
}

func lookup(m map[string]float64, key string) *float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}
