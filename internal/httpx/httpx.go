package httpx

import (
	"net"
	"net/http"
	"time"
)

const defaultUserAgent = "quotefeed/1.0"

// Client is the outbound HTTP client shared by all upstream calls. It
// satisfies the one-method Do interface providers accept and stamps a
// User-Agent on requests that lack one.
type Client struct {
	inner     *http.Client
	userAgent string
}

func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   50,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	return &Client{
		inner:     &http.Client{Timeout: timeout, Transport: transport},
		userAgent: defaultUserAgent,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.inner.Do(req)
}
