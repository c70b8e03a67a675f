package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/famomatic/danmakudl/client"
	"github.com/famomatic/danmakudl/internal/filter"
)

// Runner drives one or more downloads and prints progress to Out.
type Runner struct {
	Out    io.Writer
	ErrOut io.Writer
	Logger client.Logger

	// Now stamps default interactive output directories.
	Now func() time.Time
	// Configure adjusts each client configuration before use.
	Configure func(*client.Config)
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Runner) errOut() io.Writer {
	if r.ErrOut == nil {
		return r.out()
	}
	return r.ErrOut
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Download runs the full pipeline for opts.ResourceID. Per-item failures are
// printed and do not produce an error; setup, resolve and cancellation
// failures do.
func (r *Runner) Download(ctx context.Context, opts Options) (*client.DownloadReport, error) {
	out := r.out()

	format, err := client.ParseOutputFormat(opts.Format)
	if err != nil {
		fmt.Fprintf(out, "Error: Invalid output format: %s\n", opts.Format)
		fmt.Fprintln(out, "Supported formats: xml, json, csv, txt")
		return nil, err
	}
	ref, err := client.ParseReference(opts.ResourceID)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil, err
	}

	var commentFilter client.CommentFilter
	if strings.TrimSpace(opts.Filter) != "" {
		f, err := filter.Compile(opts.Filter)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return nil, err
		}
		commentFilter = f
	}

	cfg, err := ToClientConfig(opts, r.errOut())
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil, err
	}
	cfg.Logger = r.Logger
	cfg.OnDownloadEvent = r.onDownloadEvent
	if r.Configure != nil {
		r.Configure(&cfg)
	}
	c := client.New(cfg)

	fmt.Fprintf(out, "Processing resource: %s\n", ref.RawID)
	fmt.Fprintln(out, "Fetching content metadata...")
	list, err := c.Resolve(ctx, ref)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil, err
	}
	PrintContentTable(out, ref, list)

	report, err := c.DownloadList(ctx, ref, list, client.DownloadOptions{
		OutputDir: opts.OutputDir,
		Format:    format,
		Filter:    commentFilter,
	})
	if err != nil {
		if ctx.Err() == nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return report, err
	}
	fmt.Fprintf(out, "Download completed! Files saved to: %s (%d succeeded, %d failed)\n",
		report.OutputDir, report.Succeeded, report.Failed)
	return report, nil
}

func (r *Runner) onDownloadEvent(evt client.DownloadEvent) {
	if r.Logger != nil {
		r.Logger.Debugf("%s", FormatDownloadEvent(evt))
	}
	out := r.out()
	switch {
	case evt.Stage == "export" && evt.Phase == "complete":
		fmt.Fprintf(out, "✓ Downloaded: %s\n", evt.Title)
	case evt.Phase == "failure":
		fmt.Fprintf(out, "✗ Failed: %s - %s\n", evt.Title, evt.Detail)
	}
}

// PrintContentTable lists the resolved items with M:SS durations.
func PrintContentTable(w io.Writer, ref client.ResourceReference, list *client.ContentList) {
	fmt.Fprintf(w, "Content of %s\n", ref.RawID)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTitle\tCID\tDuration")
	for _, item := range list.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Key, item.Title, item.CID, item.DurationLabel())
	}
	_ = tw.Flush()
}

// FormatDownloadEvent renders an event as a single log line.
func FormatDownloadEvent(evt client.DownloadEvent) string {
	parts := []string{fmt.Sprintf("[%s] %s", evt.Stage, evt.Phase)}
	if evt.ItemKey != "" {
		parts = append(parts, "item="+evt.ItemKey)
	}
	if evt.Path != "" {
		parts = append(parts, "path="+evt.Path)
	}
	if evt.Detail != "" {
		parts = append(parts, "detail="+evt.Detail)
	}
	return strings.Join(parts, " ")
}
