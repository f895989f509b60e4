package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"quotefeed/internal/config"
	"quotefeed/internal/httpx"
	"quotefeed/internal/provider"
	"quotefeed/internal/provider/ratelimit"
	"quotefeed/internal/provider/yahoo"
	"quotefeed/internal/quote"
	"quotefeed/internal/timeframe"
)

func main() {
	var ticker string
	var period string
	var timeout int
	var configPath string

	flag.StringVar(&ticker, "ticker", getenv("TICKER", "AAPL"), "ticker symbol")
	flag.StringVar(&period, "period", getenv("PERIOD", "1mo"), "period token (1d, 1w, 1mo, 6mo, 1y, 5y, all)")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (0 uses config)")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	tf, err := timeframe.Resolve(period)
	if err != nil {
		log.Fatal().Err(err).Msg("period")
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	opts := []yahoo.Option{
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithMaxConcurrency(cfg.Yahoo.MaxConcurrency),
	}
	if cfg.Yahoo.ChartEndpoint != "" {
		opts = append(opts, yahoo.WithChartEndpoint(cfg.Yahoo.ChartEndpoint))
	}
	if cfg.Yahoo.QuoteEndpoint != "" {
		opts = append(opts, yahoo.WithQuoteEndpoint(cfg.Yahoo.QuoteEndpoint))
	}
	var p provider.Provider = yahoo.New(log, opts...)
	if cfg.Yahoo.MaxRequestsPerMinute > 0 {
		rate := float64(cfg.Yahoo.MaxRequestsPerMinute) / 60.0
		burst := cfg.Yahoo.Burst
		if burst <= 0 {
			burst = 1
		}
		p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.Yahoo.MinRequestIntervalSec > 0 {
		p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.Yahoo.MinRequestIntervalSec) * time.Second}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	series, err := p.FetchSeries(ctx, []string{ticker}, tf.Span, tf.Interval)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch series")
	}
	fundamentals, err := p.FetchFundamentals(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Msg("fetch fundamentals")
		fundamentals = nil
	}

	resp, err := quote.Normalize(ticker, period, tf.Interval, series, fundamentals)
	if err != nil {
		log.Fatal().Err(err).Msg("normalize")
	}

	b, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(b))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
