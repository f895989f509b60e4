package provider

import (
	"context"
	"time"
)

// Bar is one raw OHLCV observation as delivered by an upstream provider.
// Timestamp is zero when the upstream row carried no usable timestamp;
// Volume is NaN when the upstream did not report it.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series holds raw bars per upper-cased ticker, ascending by timestamp.
type Series map[string][]Bar

// Fundamentals keys providers are expected to populate when the upstream
// reports them. A missing key means the figure is unavailable, never zero.
const (
	KeyYearHigh  = "yearHigh"
	KeyYearLow   = "yearLow"
	KeyMarketCap = "marketCap"
	KeyPERatio   = "trailingPE"
	KeyAvgVolume = "tenDayAverageVolume"
	KeyBeta      = "beta"
)

type Provider interface {
	Name() string
	// FetchSeries returns OHLCV bars for every ticker over the trailing
	// span at the given sampling interval. Tickers with no data may be
	// absent from the result.
	FetchSeries(ctx context.Context, tickers []string, span, interval string) (Series, error)
	// FetchFundamentals returns a sparse point-in-time snapshot for one
	// ticker using the Key* names above.
	FetchFundamentals(ctx context.Context, ticker string) (map[string]float64, error)
}
