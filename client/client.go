package client

import (
	"context"
	"net/url"

	"github.com/famomatic/danmakudl/internal/orchestrator"
	"github.com/famomatic/danmakudl/internal/wbi"
	"github.com/famomatic/danmakudl/internal/webapi"
)

// Client is the high-level danmaku client.
type Client struct {
	config Config
	api    *webapi.Caller
	signer *wbi.Signer
	engine *orchestrator.Engine
	logger Logger
}

// New creates a new danmaku client.
func New(config Config) *Client {
	return NewClient(config)
}

// NewClient creates a new danmaku client.
func NewClient(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = defaultHTTPClient(config.ProxyURL)
	}
	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	c := &Client{
		config: config,
		api: &webapi.Caller{
			HTTPClient: config.HTTPClient,
			BaseURL:    config.APIBaseURL,
			Headers:    config.requestHeaders(),
		},
		logger: logger,
	}
	c.signer = wbi.NewSigner(wbi.KeySourceFunc(c.fetchWBIKeys), config.WBIKeyTTL, config.Now)
	c.engine = orchestrator.NewEngine(
		orchestrator.SegmentSourceFunc(c.fetchSignedSegment),
		orchestrator.SegmentSourceFunc(c.fetchLegacySegment),
		logger,
	)
	return c
}

type apiResponse interface {
	Err(endpoint string) error
}

// getJSON fetches and decodes one JSON endpoint, mapping transport and
// envelope failures to package errors.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out apiResponse) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	if err := c.api.GetJSON(ctx, endpoint, params, out); err != nil {
		return mapError(err)
	}
	return mapError(out.Err(endpoint))
}
