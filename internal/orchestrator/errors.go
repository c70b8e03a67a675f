package orchestrator

import (
	"fmt"
	"strings"
)

// AttemptError captures one tier's failure for a segment.
type AttemptError struct {
	Tier string
	Err  error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tier, e.Err)
}

// SegmentError is reported when every tier failed for one segment.
type SegmentError struct {
	CID      string
	Index    int
	Attempts []AttemptError
}

func (e *SegmentError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("segment %d cid=%s: no source configured", e.Index, e.CID)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("segment %d cid=%s failed: %s", e.Index, e.CID, strings.Join(parts, "; "))
}

func (e *SegmentError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Err)
	}
	return out
}
