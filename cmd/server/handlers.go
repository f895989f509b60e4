package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"quotefeed/internal/cache"
	"quotefeed/internal/market"
	"quotefeed/internal/provider"
	"quotefeed/internal/quote"
	"quotefeed/internal/timeframe"
)

const defaultPeriod = "1mo"

// bulk snapshots always look at a short trailing daily window
const (
	bulkSpan     = "3d"
	bulkInterval = "1d"
)

type api struct {
	provider   provider.Provider
	stockCache *cache.Store[*quote.Response]
	bulkCache  *cache.Store[[]quote.SnapshotRow]
	timeout    time.Duration
	log        zerolog.Logger

	// coalesces concurrent cache misses per cache key so a cold key costs
	// one upstream round trip no matter how many requests race on it
	sf singleflight.Group
}

func newAPI(p provider.Provider, stockCache *cache.Store[*quote.Response], bulkCache *cache.Store[[]quote.SnapshotRow], timeout time.Duration, log zerolog.Logger) *api {
	return &api{
		provider:   p,
		stockCache: stockCache,
		bulkCache:  bulkCache,
		timeout:    timeout,
		log:        log.With().Str("component", "api").Logger(),
	}
}

type errorEnvelope struct {
	Error *quote.Error `json:"error"`
}

func (a *api) handleStock(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(chi.URLParam(r, "ticker"))
	period := strings.ToLower(r.URL.Query().Get("period"))
	if period == "" {
		period = defaultPeriod
	}

	tf, err := timeframe.Resolve(period)
	if err != nil {
		a.writeError(w, quote.Errorf(quote.KindInvalidArgument, "%s", err))
		return
	}

	key := fmt.Sprintf("stock:%s:%s", strings.ToUpper(ticker), period)
	if resp, ok := a.stockCache.Get(key); ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	v, err, _ := a.sf.Do(key, func() (any, error) {
		// detached from the leader request's context so coalesced
		// followers survive the leader disconnecting
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		series, err := a.provider.FetchSeries(ctx, []string{ticker}, tf.Span, tf.Interval)
		if err != nil {
			return nil, quote.Errorf(quote.KindUpstream, "fetch %s: %v", strings.ToUpper(ticker), err)
		}
		fundamentals, err := a.provider.FetchFundamentals(ctx, ticker)
		if err != nil {
			// fundamentals are best-effort; the series alone is a valid answer
			a.log.Warn().Err(err).Str("ticker", ticker).Msg("fundamentals fetch failed")
			fundamentals = nil
		}

		resp, err := quote.Normalize(ticker, period, tf.Interval, series, fundamentals)
		if err != nil {
			return nil, err
		}
		a.stockCache.Set(key, resp)
		return resp, nil
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v.(*quote.Response))
}

func (a *api) handleBulk(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "market"))
	tickers, ok := market.Tickers(name)
	if !ok {
		a.writeError(w, quote.Errorf(quote.KindInvalidArgument, "Invalid. Use %s", strings.Join(market.Names, ", ")))
		return
	}

	key := "bulk:" + name
	if rows, ok := a.bulkCache.Get(key); ok {
		writeJSON(w, http.StatusOK, rows)
		return
	}

	v, err, _ := a.sf.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		series, err := a.provider.FetchSeries(ctx, tickers, bulkSpan, bulkInterval)
		if err != nil {
			return nil, quote.Errorf(quote.KindUpstream, "batch fetch %s: %v", name, err)
		}
		rows := quote.Snapshot(series, tickers)
		a.bulkCache.Set(key, rows)
		return rows, nil
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v.([]quote.SnapshotRow))
}

func (a *api) writeError(w http.ResponseWriter, err error) {
	var qerr *quote.Error
	if !errors.As(err, &qerr) {
		qerr = quote.Errorf(quote.KindInternal, "error fetching data: %v", err)
	}
	if qerr.Kind == quote.KindInternal || qerr.Kind == quote.KindUpstream {
		a.log.Error().Str("kind", string(qerr.Kind)).Msg(qerr.Message)
	}
	writeJSON(w, qerr.Kind.HTTPStatus(), errorEnvelope{Error: qerr})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
