package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/famomatic/danmakudl/internal/dmseg"
)

// SegmentSeconds is the width of one comment segment.
const SegmentSeconds = 360

// Tier names used in attempt errors and logs.
const (
	TierSigned = "wbi"
	TierLegacy = "legacy"
)

// SegmentCount returns how many segments cover durationSeconds. One extra
// segment is always planned so trailing comments are not missed.
func SegmentCount(durationSeconds int64) int {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	n := int(durationSeconds/SegmentSeconds) + 1
	if n < 1 {
		return 1
	}
	return n
}

// SegmentSource fetches and decodes one 1-indexed segment.
type SegmentSource interface {
	FetchSegment(ctx context.Context, cid string, index int) ([]dmseg.Elem, error)
}

// SegmentSourceFunc adapts a function to SegmentSource.
type SegmentSourceFunc func(ctx context.Context, cid string, index int) ([]dmseg.Elem, error)

func (f SegmentSourceFunc) FetchSegment(ctx context.Context, cid string, index int) ([]dmseg.Elem, error) {
	return f(ctx, cid, index)
}

// Logger receives fallback and failure diagnostics.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any) {}
func (nopLogger) Warnf(string, ...any) {}

// Engine fetches every segment of a comment stream concurrently. Each
// segment tries the primary source, then the fallback.
type Engine struct {
	primary  SegmentSource
	fallback SegmentSource
	logger   Logger
}

func NewEngine(primary, fallback SegmentSource, logger Logger) *Engine {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Engine{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

type segmentResult struct {
	index int
	elems []dmseg.Elem
	err   *SegmentError
}

// FetchAll fetches segments 1..count and concatenates them in index order.
// Failed segments contribute nothing and are returned as diagnostics; no
// failure stops the other segments.
func (e *Engine) FetchAll(ctx context.Context, cid string, count int) ([]dmseg.Elem, []*SegmentError) {
	if count < 1 {
		count = 1
	}

	results := make(chan segmentResult, count)
	var wg sync.WaitGroup

	for i := 1; i <= count; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			elems, err := e.fetchSegment(ctx, cid, index)
			results <- segmentResult{index: index, elems: elems, err: err}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	slots := make([][]dmseg.Elem, count)
	var failures []*SegmentError
	for res := range results {
		if res.err != nil {
			failures = append(failures, res.err)
			continue
		}
		slots[res.index-1] = res.elems
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	out := make([]dmseg.Elem, 0, total)
	for _, s := range slots {
		out = append(out, s...)
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })
	return out, failures
}

func (e *Engine) fetchSegment(ctx context.Context, cid string, index int) ([]dmseg.Elem, *SegmentError) {
	var attempts []AttemptError

	if e.primary != nil {
		elems, err := e.primary.FetchSegment(ctx, cid, index)
		if err == nil {
			return elems, nil
		}
		attempts = append(attempts, AttemptError{Tier: TierSigned, Err: err})
		e.logger.Infof("segment %d cid=%s: %s failed (%v), falling back to %s", index, cid, TierSigned, err, TierLegacy)
	}

	if e.fallback != nil {
		elems, err := e.fallback.FetchSegment(ctx, cid, index)
		if err == nil {
			return elems, nil
		}
		attempts = append(attempts, AttemptError{Tier: TierLegacy, Err: err})
	}

	segErr := &SegmentError{CID: cid, Index: index, Attempts: attempts}
	e.logger.Warnf("%v", segErr)
	return nil, segErr
}
