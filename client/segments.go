package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/famomatic/danmakudl/internal/dmseg"
	"github.com/famomatic/danmakudl/internal/orchestrator"
	"github.com/famomatic/danmakudl/internal/wbi"
	"github.com/famomatic/danmakudl/internal/webapi"
)

// SegmentCount returns the number of 6-minute segments fetched for a
// duration: max(1, d/360+1).
func SegmentCount(durationSeconds int64) int {
	return orchestrator.SegmentCount(durationSeconds)
}

// FetchStats summarizes one FetchDanmaku call.
type FetchStats struct {
	Segments       int
	FailedSegments []int
	Comments       int
}

// FetchDanmaku downloads every segment of the comment stream cid
// concurrently and returns the comments in segment order. It never fails:
// segments that fail on both endpoints contribute nothing.
func (c *Client) FetchDanmaku(ctx context.Context, cid string, durationSeconds int64) []Comment {
	comments, _ := c.fetchDanmaku(ctx, cid, durationSeconds)
	return comments
}

func (c *Client) fetchDanmaku(ctx context.Context, cid string, durationSeconds int64) ([]Comment, FetchStats) {
	count := c.segmentCount(durationSeconds)
	comments, failures := c.engine.FetchAll(ctx, cid, count)

	stats := FetchStats{Segments: count, Comments: len(comments)}
	for _, f := range failures {
		stats.FailedSegments = append(stats.FailedSegments, f.Index)
	}
	if len(failures) > 0 {
		c.logger.Warnf("cid=%s: %d of %d segment(s) failed: %v", cid, len(failures), count, stats.FailedSegments)
	}
	return comments, stats
}

func (c *Client) segmentCount(durationSeconds int64) int {
	if c.config.MaxSegments > 0 {
		return c.config.MaxSegments
	}
	return SegmentCount(durationSeconds)
}

func segmentParams(cid string, index int) url.Values {
	return url.Values{
		"type":          {"1"},
		"oid":           {cid},
		"segment_index": {strconv.Itoa(index)},
	}
}

func (c *Client) fetchSignedSegment(ctx context.Context, cid string, index int) ([]dmseg.Elem, error) {
	signed, err := c.signer.Sign(ctx, segmentParams(cid, index))
	if err != nil {
		return nil, err
	}
	return c.fetchSegment(ctx, webapi.PathSegmentSigned, signed)
}

func (c *Client) fetchLegacySegment(ctx context.Context, cid string, index int) ([]dmseg.Elem, error) {
	return c.fetchSegment(ctx, webapi.PathSegmentLegacy, segmentParams(cid, index))
}

func (c *Client) fetchSegment(ctx context.Context, endpoint string, params url.Values) ([]dmseg.Elem, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	body, err := c.api.GetBytes(ctx, endpoint, params)
	if err != nil {
		return nil, mapError(err)
	}
	elems, err := dmseg.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s segment_index=%s: %w", endpoint, params.Get("segment_index"), err)
	}
	return elems, nil
}

// fetchWBIKeys reads the signing keys from the nav endpoint. Logged-out
// sessions get a non-zero code alongside valid keys, so the code is only
// consulted when the keys are missing.
func (c *Client) fetchWBIKeys(ctx context.Context) (wbi.Keys, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	var resp webapi.NavResponse
	if err := c.api.GetJSON(ctx, webapi.PathNav, nil, &resp); err != nil {
		return wbi.Keys{}, mapError(err)
	}
	var keys wbi.Keys
	if resp.Data != nil {
		keys = wbi.Keys{
			Img: wbi.KeyFromURL(resp.Data.WbiImg.ImgURL),
			Sub: wbi.KeyFromURL(resp.Data.WbiImg.SubURL),
		}
	}
	if keys.Img == "" || keys.Sub == "" {
		if err := mapError(resp.Err(webapi.PathNav)); err != nil {
			return wbi.Keys{}, err
		}
		return wbi.Keys{}, emptyResponseError(webapi.PathNav, "data.wbi_img")
	}
	c.logger.Debugf("fetched wbi keys img=%s... sub=%s...", prefix(keys.Img, 8), prefix(keys.Sub, 8))
	return keys, nil
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
