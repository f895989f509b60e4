package quote

import (
	"math"

	"quotefeed/internal/provider"
)

const dateLayout = "2006-01-02"

// Snapshot derives per-ticker "yesterday close / change vs the day before"
// rows from a short trailing daily series. One row per requested ticker, in
// request order. A ticker with fewer than 2 observations, missing from the
// series, or with unusable closes yields an all-absent row; a single
// ticker's bad data never fails the batch.
func Snapshot(series provider.Series, tickers []string) []SnapshotRow {
	rows := make([]SnapshotRow, 0, len(tickers))
	for _, t := range tickers {
		rows = append(rows, snapshotRow(series[t], t))
	}
	return rows
}

func snapshotRow(bars []provider.Bar, ticker string) SnapshotRow {
	empty := SnapshotRow{Ticker: ticker}
	if len(bars) < 2 {
		return empty
	}

	y := bars[len(bars)-2]
	if y.Timestamp.IsZero() || math.IsNaN(y.Close) {
		return empty
	}
	closeVal := y.Close
	date := y.Timestamp.UTC().Format(dateLayout)

	row := SnapshotRow{Ticker: ticker, YesterdayClose: &closeVal, YesterdayDate: &date}
	if len(bars) >= 3 {
		prev := bars[len(bars)-3].Close
		if !math.IsNaN(prev) {
			// a change of exactly zero is reported as 0, not omitted
			change := round2(closeVal - prev)
			row.Change = &change
		}
	}
	return row
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
