package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"quotefeed/internal/provider"
)

const (
	defaultChartEndpoint = "https://query2.finance.yahoo.com/v8/finance/chart"
	defaultQuoteEndpoint = "https://query1.finance.yahoo.com/v7/finance/quote"
)

// quoteFields are the v7 quote fields requested for fundamentals.
const quoteFields = "fiftyTwoWeekHigh,fiftyTwoWeekLow,marketCap,trailingPE,averageDailyVolume10Day,beta"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches OHLCV history from Yahoo's chart API and fundamentals from
// its quote API. It implements provider.Provider.
type Client struct {
	chartEndpoint  string
	quoteEndpoint  string
	httpClient     HTTPClient
	header         http.Header
	maxConcurrency int
	log            zerolog.Logger
}

// Option is a configuration option for the Yahoo client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithChartEndpoint overrides the chart API base URL.
func WithChartEndpoint(endpoint string) Option {
	return func(c *Client) { c.chartEndpoint = strings.TrimRight(endpoint, "/") }
}

// WithQuoteEndpoint overrides the quote API base URL.
func WithQuoteEndpoint(endpoint string) Option {
	return func(c *Client) { c.quoteEndpoint = strings.TrimRight(endpoint, "/") }
}

// WithHeader adds headers sent with every request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithMaxConcurrency limits concurrent chart requests in a multi-ticker
// fetch. Defaults to 4 when <= 0.
func WithMaxConcurrency(n int) Option {
	return func(c *Client) { c.maxConcurrency = n }
}

func New(log zerolog.Logger, options ...Option) *Client {
	c := &Client{
		chartEndpoint:  defaultChartEndpoint,
		quoteEndpoint:  defaultQuoteEndpoint,
		httpClient:     http.DefaultClient,
		header:         http.Header{},
		maxConcurrency: 4,
		log:            log.With().Str("client", "yahoo").Logger(),
	}
	for _, o := range options {
		o(c)
	}
	if c.maxConcurrency <= 0 {
		c.maxConcurrency = 4
	}
	return c
}

func (c *Client) Name() string { return "Yahoo" }

// FetchSeries fans out one chart request per unique ticker with bounded
// concurrency. Tickers that fail are absent from the result; an error is
// returned only when nothing could be fetched.
func (c *Client) FetchSeries(ctx context.Context, tickers []string, span, interval string) (provider.Series, error) {
	uniq := make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		u := strings.ToUpper(strings.TrimSpace(t))
		if u == "" {
			continue
		}
		if _, dup := seen[u]; !dup {
			seen[u] = struct{}{}
			uniq = append(uniq, u)
		}
	}
	if len(uniq) == 0 {
		return provider.Series{}, nil
	}

	out := make(provider.Series, len(uniq))
	var firstErr error

	if len(uniq) == 1 {
		bars, err := c.fetchChart(ctx, uniq[0], span, interval)
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			out[uniq[0]] = bars
		}
		return out, nil
	}

	sem := make(chan struct{}, c.maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, sym := range uniq {
		sym := sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			bars, err := c.fetchChart(ctx, sym, span, interval)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.log.Warn().Err(err).Str("ticker", sym).Msg("chart fetch failed")
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if len(bars) > 0 {
				out[sym] = bars
			}
		}()
	}
	wg.Wait()

	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// FetchFundamentals returns the sparse fast-fundamentals snapshot for one
// ticker. An unknown ticker yields an empty map, not an error.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (map[string]float64, error) {
	sym := strings.ToUpper(strings.TrimSpace(ticker))
	u := fmt.Sprintf("%s?symbols=%s&fields=%s", c.quoteEndpoint, url.QueryEscape(sym), quoteFields)

	var body quoteResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if len(body.QuoteResponse.Result) == 0 {
		return map[string]float64{}, nil
	}

	info := body.QuoteResponse.Result[0]
	fund := make(map[string]float64, 6)
	copyField(fund, info, "fiftyTwoWeekHigh", provider.KeyYearHigh)
	copyField(fund, info, "fiftyTwoWeekLow", provider.KeyYearLow)
	copyField(fund, info, "marketCap", provider.KeyMarketCap)
	copyField(fund, info, "trailingPE", provider.KeyPERatio)
	copyField(fund, info, "averageDailyVolume10Day", provider.KeyAvgVolume)
	copyField(fund, info, "beta", provider.KeyBeta)
	return fund, nil
}

func (c *Client) fetchChart(ctx context.Context, symbol, span, interval string) ([]provider.Bar, error) {
	u := fmt.Sprintf("%s/%s?range=%s&interval=%s", c.chartEndpoint, url.PathEscape(symbol), url.QueryEscape(span), url.QueryEscape(interval))

	var body chartResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		if isNotFound(err) {
			// unknown ticker: empty series, the caller decides what that means
			return nil, nil
		}
		return nil, err
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, nil
	}

	res := body.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	q := res.Indicators.Quote[0]

	intraday := isIntraday(interval)
	bars := make([]provider.Bar, 0, len(res.Timestamp))
	for i, sec := range res.Timestamp {
		o := at(q.Open, i)
		h := at(q.High, i)
		l := at(q.Low, i)
		cl := at(q.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			// null row (holiday/halted bucket); drop it
			continue
		}
		ts := time.Unix(sec, 0).UTC()
		if !intraday {
			ts = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		}
		vol := math.NaN()
		if v := at(q.Volume, i); v != nil {
			vol = *v
		}
		bars = append(bars, provider.Bar{
			Timestamp: ts,
			Open:      *o,
			High:      *h,
			Low:       *l,
			Close:     *cl,
			Volume:    vol,
		})
	}
	return bars, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return err
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return &statusError{status: resp.StatusCode, url: rawURL, body: string(b)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

type statusError struct {
	status int
	url    string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s -> %d: %s", e.url, e.status, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

// isIntraday reports whether interval buckets are finer than a day
// ("30m", "15m", ...); "1mo" is monthly, not minutes.
func isIntraday(interval string) bool {
	return strings.HasSuffix(interval, "m") && !strings.HasSuffix(interval, "mo")
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}

func copyField(dst map[string]float64, info map[string]any, field, key string) {
	if v, ok := info[field].(float64); ok {
		dst[key] = v
	}
}
