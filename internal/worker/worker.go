// ABOUTME: Runs one Gateway execution off the bubbletea Update loop
// ABOUTME: Tracker keeps a single current worker and drops stale completions by generation

package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
)

// ErrCancelled is passed to the error callback of a cancelled worker
var ErrCancelled = errors.New("execution cancelled")

// Mode selects between running a script and evaluating an expression
type Mode int

const (
	ModeExecute Mode = iota
	ModeEvaluate
)

func (m Mode) String() string {
	if m == ModeEvaluate {
		return "eval"
	}
	return "exec"
}

// Request is the code and variables one worker sends
type Request struct {
	Code      string
	Variables map[string]interface{}
	Mode      Mode
}

// Executor is the part of the Gateway client a worker needs
type Executor interface {
	ExecuteCode(ctx context.Context, code string, variables map[string]interface{}) (*client.ExecutionResult, error)
	EvaluateExpression(ctx context.Context, expression string, variables map[string]interface{}) (*client.ExecutionResult, error)
}

// OutcomeKind tags how a worker finished
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeTransportError
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one worker. Result is set only for OutcomeOK;
// a Python failure is still OutcomeOK with Result.Success false.
type Outcome struct {
	Kind    OutcomeKind
	Result  *client.ExecutionResult
	Err     error
	Elapsed time.Duration
}

// DoneMsg carries a worker's outcome back to the Update loop
type DoneMsg struct {
	Generation uint64
	Outcome    Outcome
}

// Worker runs exactly one client call and fires exactly one callback
type Worker struct {
	exec      Executor
	req       Request
	onSuccess func(*client.ExecutionResult)
	onError   func(error)

	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	once       sync.Once
}

// New creates a worker. Either callback may be nil.
func New(exec Executor, req Request, onSuccess func(*client.ExecutionResult), onError func(error)) *Worker {
	return &Worker{
		exec:      exec,
		req:       req,
		onSuccess: onSuccess,
		onError:   onError,
	}
}

// Request returns what the worker sends
func (w *Worker) Request() Request {
	return w.req
}

// Generation is the tracker generation the worker was started under, 0 before Start
func (w *Worker) Generation() uint64 {
	return w.generation
}

// run performs the blocking call. It runs inside a tea.Cmd goroutine.
func (w *Worker) run() Outcome {
	start := time.Now()

	var (
		res *client.ExecutionResult
		err error
	)
	switch w.req.Mode {
	case ModeEvaluate:
		res, err = w.exec.EvaluateExpression(w.ctx, w.req.Code, w.req.Variables)
	default:
		res, err = w.exec.ExecuteCode(w.ctx, w.req.Code, w.req.Variables)
	}

	o := Outcome{Elapsed: time.Since(start)}
	switch {
	case w.ctx.Err() != nil:
		o.Kind = OutcomeCancelled
		o.Err = ErrCancelled
	case err != nil:
		o.Kind = OutcomeTransportError
		o.Err = err
	case res == nil:
		o.Kind = OutcomeTransportError
		o.Err = errors.New("gateway returned no result")
	default:
		o.Kind = OutcomeOK
		o.Result = res
	}
	return o
}

// complete fires the matching callback once; later calls are no-ops
func (w *Worker) complete(o Outcome) bool {
	fired := false
	w.once.Do(func() {
		fired = true
		if o.Kind == OutcomeOK {
			if w.onSuccess != nil {
				w.onSuccess(o.Result)
			}
			return
		}
		if w.onError != nil {
			w.onError(o.Err)
		}
	})
	return fired
}

// Tracker owns the one in-flight worker of an IDE. It must only be used
// from the Update loop.
type Tracker struct {
	generation uint64
	current    *Worker
}

// Start supersedes any unfinished worker and returns the command that runs w.
// The superseded worker's context is cancelled and its completion will be dropped.
func (t *Tracker) Start(w *Worker) tea.Cmd {
	if prev := t.current; prev != nil {
		slog.Debug("Superseding in-flight execution", "generation", prev.generation)
		prev.cancel()
	}

	t.generation++
	w.generation = t.generation
	w.ctx, w.cancel = context.WithCancel(context.Background())
	t.current = w

	gen := t.generation
	slog.Debug("Execution started", "generation", gen, "mode", w.req.Mode.String())

	return func() tea.Msg {
		return DoneMsg{Generation: gen, Outcome: w.run()}
	}
}

// Deliver applies a completion. It returns false when the message belongs to
// a superseded or cancelled worker, in which case no callback runs.
func (t *Tracker) Deliver(msg DoneMsg) bool {
	if t.current == nil || msg.Generation != t.generation {
		slog.Debug("Dropping stale execution result", "generation", msg.Generation, "current", t.generation)
		return false
	}

	w := t.current
	t.current = nil
	w.cancel()

	slog.Debug("Execution finished",
		"generation", msg.Generation,
		"outcome", msg.Outcome.Kind.String(),
		"elapsed_ms", msg.Outcome.Elapsed.Milliseconds(),
	)
	return w.complete(msg.Outcome)
}

// Cancel stops the in-flight worker and fires its error callback with
// ErrCancelled right away. The HTTP call is aborted best effort; its late
// completion is dropped. Returns false when nothing was running.
func (t *Tracker) Cancel() bool {
	w := t.current
	if w == nil {
		return false
	}
	t.current = nil
	w.cancel()

	slog.Debug("Execution cancelled", "generation", w.generation)
	return w.complete(Outcome{Kind: OutcomeCancelled, Err: ErrCancelled})
}

// Running reports whether a worker is in flight
func (t *Tracker) Running() bool {
	return t.current != nil
}

// Generation returns the generation of the most recently started worker
func (t *Tracker) Generation() uint64 {
	return t.generation
}
