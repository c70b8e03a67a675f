package client

import (
	"context"
	"time"
)

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// requestContext bounds a single API request.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withDefaultTimeout(ctx, c.config.requestTimeout())
}
