package filter

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/famomatic/danmakudl/internal/dmseg"
)

// DefaultBudget bounds how long one Apply call may run scripts.
const DefaultBudget = 5 * time.Second

var (
	// ErrInvalidExpression indicates the expression failed to compile.
	ErrInvalidExpression = errors.New("invalid filter expression")
	// ErrBudgetExceeded indicates Apply was interrupted by its time budget.
	ErrBudgetExceeded = errors.New("filter time budget exceeded")
)

// Filter is a compiled JavaScript predicate over comments. The comment is
// bound as `d` with the same field names the JSON export uses, for example
// `d.mode !== 7 && d.content.length <= 20`.
type Filter struct {
	expr   string
	budget time.Duration

	mu sync.Mutex
	vm *goja.Runtime
	fn goja.Callable
}

// Compile builds a Filter from a JavaScript expression.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	vm := goja.New()
	val, err := vm.RunString("(function(d) { return (" + expr + "\n); })")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, fmt.Errorf("%w: not callable", ErrInvalidExpression)
	}
	return &Filter{
		expr:   expr,
		budget: DefaultBudget,
		vm:     vm,
		fn:     fn,
	}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the predicate for one comment.
func (f *Filter) Match(e dmseg.Elem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match(e)
}

func (f *Filter) match(e dmseg.Elem) (bool, error) {
	out, err := f.fn(goja.Undefined(), f.vm.ToValue(commentObject(e)))
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return false, ErrBudgetExceeded
		}
		return false, fmt.Errorf("filter %q on comment %d: %w", f.expr, e.ID, err)
	}
	if out == nil || goja.IsUndefined(out) || goja.IsNull(out) {
		return false, nil
	}
	return out.ToBoolean(), nil
}

// Apply keeps the comments the predicate accepts, preserving order.
func (f *Filter) Apply(elems []dmseg.Elem) ([]dmseg.Elem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.vm.ClearInterrupt()
	timer := time.AfterFunc(f.budget, func() {
		f.vm.Interrupt("budget exceeded")
	})
	defer func() {
		timer.Stop()
		f.vm.ClearInterrupt()
	}()

	out := make([]dmseg.Elem, 0, len(elems))
	for _, e := range elems {
		ok, err := f.match(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func commentObject(e dmseg.Elem) map[string]any {
	return map[string]any{
		"id":       e.ID,
		"progress": e.Progress,
		"time":     float64(e.Progress) / 1000,
		"mode":     e.Mode,
		"fontsize": e.FontSize,
		"color":    e.Color,
		"midHash":  e.MidHash,
		"content":  e.Content,
		"ctime":    e.CTime,
		"weight":   e.Weight,
		"pool":     e.Pool,
		"attr":     e.Attr,
	}
}
