package quote

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quotefeed/internal/provider"
)

func bar(ts time.Time, o, h, l, c, v float64) provider.Bar {
	return provider.Bar{Timestamp: ts, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestNormalize_MetricsFromLastBar(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	series := provider.Series{
		"AAPL": {
			bar(t0, 100, 105, 99, 104, 1e6),
			bar(t0.AddDate(0, 0, 1), 104, 110, 103, 109, 2e6),
		},
	}
	fund := map[string]float64{
		provider.KeyYearHigh: 123.45,
		provider.KeyBeta:     1.2,
	}

	resp, err := Normalize("aapl", "1mo", "1d", series, fund)
	require.NoError(t, err)
	require.Equal(t, "AAPL", resp.Ticker)
	require.Equal(t, "1mo", resp.Period)
	require.Equal(t, "1d", resp.Interval)
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	require.Equal(t, "2025-03-10 00:00:00", resp.Data[0].Datetime)

	m := resp.Metrics
	require.Equal(t, 104.0, m.Open)
	require.Equal(t, 110.0, m.High)
	require.Equal(t, 103.0, m.Low)
	require.Equal(t, 109.0, m.Close)
	require.NotNil(t, m.Volume)
	require.Equal(t, int64(2e6), *m.Volume)

	// sparse fundamentals: present keys populated, the rest absent
	require.NotNil(t, m.YearHigh)
	require.Equal(t, 123.45, *m.YearHigh)
	require.NotNil(t, m.Beta)
	require.Equal(t, 1.2, *m.Beta)
	require.Nil(t, m.YearLow)
	require.Nil(t, m.MarketCap)
	require.Nil(t, m.PERatio)
	require.Nil(t, m.AvgVolume)
}

func TestNormalize_NaNVolumeIsAbsent(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	series := provider.Series{
		"MSFT": {bar(t0, 1, 2, 0.5, 1.5, math.NaN())},
	}
	resp, err := Normalize("MSFT", "1d", "30m", series, nil)
	require.NoError(t, err)
	require.Nil(t, resp.Metrics.Volume)
	require.Nil(t, resp.Data[0].Volume)
	require.Equal(t, "2025-03-10 14:30:00", resp.Data[0].Datetime)
}

func TestNormalize_EmptySeriesIsNotFound(t *testing.T) {
	_, err := Normalize("fake", "1mo", "1d", provider.Series{}, nil)
	var qerr *Error
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, KindNotFound, qerr.Kind)
	require.True(t, strings.Contains(qerr.Message, "FAKE"), "message %q must carry the upper-cased ticker", qerr.Message)
}

func TestNormalize_MissingTimestampIsInternal(t *testing.T) {
	series := provider.Series{
		"AAPL": {provider.Bar{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}},
	}
	_, err := Normalize("AAPL", "1mo", "1d", series, nil)
	var qerr *Error
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, KindInternal, qerr.Kind)
}

func TestNormalize_CollapsesSingleTickerKeyedDifferently(t *testing.T) {
	// single-ticker fetches reuse the batch path; the one series present is
	// used even if its key differs from the requested spelling
	t0 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	series := provider.Series{
		"BRK-B": {bar(t0, 1, 2, 0.5, 1.5, 10)},
	}
	resp, err := Normalize("brk.b", "1mo", "1d", series, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Count != 1 || resp.Ticker != "BRK.B" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestErrorKindStatuses(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidArgument: 400,
		KindNotFound:        404,
		KindInternal:        500,
		KindUpstream:        502,
	}
	for k, want := range cases {
		if got := k.HTTPStatus(); got != want {
			t.Fatalf("%s: got %d, want %d", k, got, want)
		}
	}
	var err error = Errorf(KindNotFound, "no data found for %s", "X")
	var qerr *Error
	if !errors.As(err, &qerr) {
		t.Fatalf("Errorf must produce *Error, got %T", err)
	}
}
