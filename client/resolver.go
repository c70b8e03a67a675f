package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/famomatic/danmakudl/internal/webapi"
)

// Resolve lists the content items behind ref. Episode and media ids are
// first resolved to their season, and the full season is returned.
func (c *Client) Resolve(ctx context.Context, ref ResourceReference) (*ContentList, error) {
	var (
		list *ContentList
		err  error
	)
	switch ref.Kind {
	case KindVideo:
		list, err = c.videoPages(ctx, url.Values{"aid": {ref.APIID()}})
	case KindVideoAlt:
		list, err = c.videoPages(ctx, url.Values{"bvid": {ref.APIID()}})
	case KindEpisode:
		var seasonID string
		seasonID, err = c.seasonIDForEpisode(ctx, ref.APIID())
		if err == nil {
			list, err = c.seasonEpisodes(ctx, seasonID)
		}
	case KindSeason:
		list, err = c.seasonEpisodes(ctx, ref.APIID())
	case KindMediaListing:
		var seasonID string
		seasonID, err = c.seasonIDForMedia(ctx, ref.APIID())
		if err == nil {
			list, err = c.seasonEpisodes(ctx, seasonID)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, ref.Kind)
	}
	if err != nil {
		return nil, err
	}
	c.logger.Infof("resolved %s: %d item(s)", ref.RawID, list.Len())
	return list, nil
}

// ResolveInput parses input and resolves it.
func (c *Client) ResolveInput(ctx context.Context, input string) (ResourceReference, *ContentList, error) {
	ref, err := ParseReference(input)
	if err != nil {
		return ResourceReference{}, nil, err
	}
	list, err := c.Resolve(ctx, ref)
	return ref, list, err
}

func (c *Client) videoPages(ctx context.Context, params url.Values) (*ContentList, error) {
	var resp webapi.ViewResponse
	if err := c.getJSON(ctx, webapi.PathView, params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, emptyResponseError(webapi.PathView, "data")
	}

	list := NewContentList()
	for _, p := range resp.Data.Pages {
		list.Set(ContentItem{
			Key:             strconv.Itoa(p.Page),
			Title:           p.Part,
			CID:             strconv.FormatInt(p.CID, 10),
			DurationSeconds: p.Duration,
		})
	}
	return list, nil
}

func (c *Client) seasonEpisodes(ctx context.Context, seasonID string) (*ContentList, error) {
	var resp webapi.SeasonResponse
	if err := c.getJSON(ctx, webapi.PathSeason, url.Values{"season_id": {seasonID}}, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, emptyResponseError(webapi.PathSeason, "result")
	}

	// Section entries are applied after the main list and win on key clashes.
	list := NewContentList()
	for _, ep := range resp.Result.Episodes {
		list.Set(episodeItem(ep))
	}
	for _, section := range resp.Result.Section {
		for _, ep := range section.Episodes {
			list.Set(episodeItem(ep))
		}
	}
	return list, nil
}

func episodeItem(ep webapi.Episode) ContentItem {
	title := ep.LongTitle
	if title == "" {
		title = ep.Title
	}
	return ContentItem{
		Key:             strconv.FormatInt(ep.AID, 10),
		Title:           title,
		CID:             strconv.FormatInt(ep.CID, 10),
		DurationSeconds: ep.Duration / 1000,
	}
}

func (c *Client) seasonIDForEpisode(ctx context.Context, episodeID string) (string, error) {
	var resp webapi.SeasonResponse
	if err := c.getJSON(ctx, webapi.PathSeason, url.Values{"ep_id": {episodeID}}, &resp); err != nil {
		return "", err
	}
	if resp.Result == nil || resp.Result.SeasonID == 0 {
		return "", emptyResponseError(webapi.PathSeason, "result.season_id")
	}
	return strconv.FormatInt(resp.Result.SeasonID, 10), nil
}

func (c *Client) seasonIDForMedia(ctx context.Context, mediaID string) (string, error) {
	var resp webapi.MediaReviewResponse
	if err := c.getJSON(ctx, webapi.PathMediaReview, url.Values{"media_id": {mediaID}}, &resp); err != nil {
		return "", err
	}
	if resp.Result == nil || resp.Result.Media.SeasonID == 0 {
		return "", emptyResponseError(webapi.PathMediaReview, "result.media.season_id")
	}
	return strconv.FormatInt(resp.Result.Media.SeasonID, 10), nil
}

func emptyResponseError(endpoint, field string) error {
	return &UpstreamError{Endpoint: endpoint, Message: "response missing " + field}
}
