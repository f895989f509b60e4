package quote

// BarRow is one serialized OHLCV bar. Volume is null when the upstream
// reported it as not-a-number.
type BarRow struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   *int64  `json:"volume"`
}

// Metrics combines the latest bar's OHLCV with point-in-time fundamentals.
// Fundamentals fields are independently absent when the upstream does not
// report them.
type Metrics struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume *int64  `json:"volume"`

	YearHigh  *float64 `json:"52w_high"`
	YearLow   *float64 `json:"52w_low"`
	MarketCap *float64 `json:"market_cap"`
	PERatio   *float64 `json:"pe_ratio"`
	AvgVolume *float64 `json:"avg_volume"`
	Beta      *float64 `json:"beta"`
}

// Response is the single-ticker history payload.
type Response struct {
	Ticker   string   `json:"ticker"`
	Period   string   `json:"period"`
	Interval string   `json:"interval"`
	Count    int      `json:"count"`
	Metrics  Metrics  `json:"metrics"`
	Data     []BarRow `json:"data"`
}

// SnapshotRow is one ticker's prior-day close and change in a bulk snapshot.
// All value fields are absent when the ticker has too little history or its
// batch lookup failed.
type SnapshotRow struct {
	Ticker         string   `json:"ticker"`
	YesterdayClose *float64 `json:"yesterday_close"`
	Change         *float64 `json:"change"`
	YesterdayDate  *string  `json:"yesterday_date"`
}
