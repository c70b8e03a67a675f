package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DownloadEvent is a lifecycle notification emitted by Download.
type DownloadEvent struct {
	Stage   string
	Phase   string
	ItemKey string
	Title   string
	Path    string
	Detail  string
}

// CommentFilter narrows the comments of one item before export.
type CommentFilter interface {
	Apply(comments []Comment) ([]Comment, error)
}

// DownloadOptions controls how resolved items are fetched and exported.
type DownloadOptions struct {
	// OutputDir receives one file per item. Created when missing.
	OutputDir string
	// Format defaults to FormatXML.
	Format OutputFormat
	// Filter is optional.
	Filter CommentFilter
}

// ItemResult describes the outcome for one content item.
type ItemResult struct {
	Item           ContentItem
	Path           string
	Comments       int
	FailedSegments []int
	Err            error
}

// DownloadReport summarizes a Download run.
type DownloadReport struct {
	Reference ResourceReference
	OutputDir string
	Items     []ItemResult
	Total     int
	Succeeded int
	Failed    int
}

// Download parses input, resolves it, and exports every item.
func (c *Client) Download(ctx context.Context, input string, options DownloadOptions) (*DownloadReport, error) {
	ref, list, err := c.ResolveInput(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.DownloadList(ctx, ref, list, options)
}

// DownloadList fetches and exports each item of list in order. A failing
// item is recorded in the report and the remaining items still run; the
// returned error is reserved for setup failures and cancellation.
func (c *Client) DownloadList(ctx context.Context, ref ResourceReference, list *ContentList, options DownloadOptions) (*DownloadReport, error) {
	format := options.Format
	if format == "" {
		format = FormatXML
	}
	if _, err := ParseOutputFormat(string(format)); err != nil {
		return nil, err
	}
	outputDir := options.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	report := &DownloadReport{Reference: ref, OutputDir: outputDir}
	if list == nil {
		return report, nil
	}
	report.Total = list.Len()
	for _, item := range list.Items() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := c.downloadItem(ctx, ref, item, outputDir, format, options.Filter)
		if result.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
		report.Items = append(report.Items, result)
	}
	return report, ctx.Err()
}

func (c *Client) downloadItem(ctx context.Context, ref ResourceReference, item ContentItem, outputDir string, format OutputFormat, filter CommentFilter) ItemResult {
	result := ItemResult{Item: item}
	c.emitDownloadEvent("fetch", "start", item, "", fmt.Sprintf("cid=%s duration=%d", item.CID, item.DurationSeconds))

	comments, stats := c.fetchDanmaku(ctx, item.CID, item.DurationSeconds)
	result.FailedSegments = stats.FailedSegments
	c.emitDownloadEvent("fetch", "complete", item, "",
		fmt.Sprintf("comments=%d segments=%d failed_segments=%d", stats.Comments, stats.Segments, len(stats.FailedSegments)))

	if filter != nil {
		kept, err := filter.Apply(comments)
		if err != nil {
			result.Err = fmt.Errorf("filter: %w", err)
			c.emitDownloadEvent("filter", "failure", item, "", err.Error())
			return result
		}
		c.emitDownloadEvent("filter", "complete", item, "", fmt.Sprintf("kept=%d dropped=%d", len(kept), len(comments)-len(kept)))
		comments = kept
	}

	path := filepath.Join(outputDir, OutputFilename(ref.RawID, item, format))
	result.Path = path
	if err := WriteDanmaku(path, comments, format); err != nil {
		result.Err = &ExportError{ItemKey: item.Key, Path: path, Err: err}
		c.emitDownloadEvent("export", "failure", item, path, err.Error())
		return result
	}
	result.Comments = len(comments)
	c.emitDownloadEvent("export", "complete", item, path, fmt.Sprintf("format=%s comments=%d", format, len(comments)))
	return result
}

func (c *Client) emitDownloadEvent(stage, phase string, item ContentItem, path, detail string) {
	if c == nil || c.config.OnDownloadEvent == nil {
		return
	}
	c.config.OnDownloadEvent(DownloadEvent{
		Stage:   stage,
		Phase:   phase,
		ItemKey: item.Key,
		Title:   item.Title,
		Path:    path,
		Detail:  detail,
	})
}
