package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/famomatic/danmakudl/internal/webapi"
)

// DefaultRequestTimeout bounds each API request when the caller's context
// has no deadline.
const DefaultRequestTimeout = 30 * time.Second

// Config holds configuration for the danmaku client.
type Config struct {
	// HTTPClient is the client used for making requests.
	// If nil, a proxy-aware default is built from ProxyURL.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// APIBaseURL overrides the API host (default: https://api.bilibili.com).
	APIBaseURL string

	// Headers are merged over the default browser header set.
	Headers http.Header

	// Cookie is sent verbatim as the Cookie header when non-empty.
	Cookie string

	// RequestTimeout bounds each request. Zero uses DefaultRequestTimeout;
	// a negative value disables the bound.
	RequestTimeout time.Duration

	// MaxSegments fixes the number of comment segments fetched per item.
	// Zero derives the count from the item duration.
	MaxSegments int

	// WBIKeyTTL controls how long signing keys are reused. Default 24h.
	WBIKeyTTL time.Duration

	// Logger receives progress and warnings. Nil discards them.
	Logger Logger

	// OnDownloadEvent receives per-item lifecycle events from Download.
	OnDownloadEvent func(DownloadEvent)

	// Now overrides the clock used for request signing.
	Now func() time.Time
}

func (c Config) requestTimeout() time.Duration {
	switch {
	case c.RequestTimeout < 0:
		return 0
	case c.RequestTimeout == 0:
		return DefaultRequestTimeout
	}
	return c.RequestTimeout
}

func (c Config) requestHeaders() http.Header {
	headers := webapi.DefaultHeaders()
	for k, vals := range c.Headers {
		headers.Del(k)
		for _, v := range vals {
			headers.Add(k, v)
		}
	}
	if cookie := strings.TrimSpace(c.Cookie); cookie != "" {
		headers.Set("Cookie", cookie)
	}
	return headers
}
