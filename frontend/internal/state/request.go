package state

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/forumstartup/forum/shared/errors"
	"github.com/forumstartup/forum/shared/logger"
	"github.com/forumstartup/forum/shared/metrics"
	"github.com/forumstartup/forum/shared/validation"
	"github.com/google/uuid"
)

// Request is the observable state of one kind of backend action: whether
// it is running, the message of its last failure, and per-field errors.
type Request struct {
	Loading     Cell[bool]
	Error       Cell[string]
	FieldErrors Cell[validation.Errors]
}

// Tracker is a Request that owns the token of its in-flight call. Starting
// a call cancels the previous one; a cancelled call never writes state.
type Tracker struct {
	Request

	name string
	log  *slog.Logger

	mu     sync.Mutex
	token  string
	cancel context.CancelFunc
}

func NewTracker(name string) *Tracker {
	return &Tracker{name: name, log: logger.For(name)}
}

// Cancel drops the in-flight call, if any, and clears the loading flag.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.token, t.cancel = "", nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		t.Loading.Set(false)
	}
}

// ClearErrors resets the error message and field errors.
func (t *Tracker) ClearErrors() {
	t.Error.Set("")
	t.FieldErrors.Set(validation.Errors{})
}

// Fail records msg as the failure of an action that did not reach the backend.
func (t *Tracker) Fail(msg string) {
	t.Error.Set(msg)
}

func (t *Tracker) begin(parent context.Context) (context.Context, string) {
	ctx, cancel := context.WithCancel(parent)
	token := uuid.NewString()

	t.mu.Lock()
	prev := t.cancel
	t.token, t.cancel = token, cancel
	t.mu.Unlock()

	if prev != nil {
		prev()
	}
	return ctx, token
}

// finish releases token and reports whether it was still the current one.
func (t *Tracker) finish(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != token {
		return false
	}
	t.cancel()
	t.token, t.cancel = "", nil
	return true
}

// settle clears the loading flag unless a newer call has started.
func (t *Tracker) settle() {
	t.mu.Lock()
	idle := t.token == ""
	t.mu.Unlock()
	if idle {
		t.Loading.Set(false)
	}
}

// Action describes one backend call made on behalf of a view.
type Action[T any] struct {
	// Name labels metrics and logs; defaults to the tracker name.
	Name string
	// Validate runs first. Any error aborts the action before the call.
	Validate func() validation.Errors
	// Precondition aborts the action with its error message when non-nil.
	Precondition func() error
	Call         func(ctx context.Context) (T, error)
	// Apply stores a successful result.
	Apply func(T)
	// Message maps a failure to a user message. An empty result falls
	// through to the server message and then Fallback.
	Message  func(err error) string
	Fallback string
	// FieldErrorsFromServer shows backend field errors on the form
	// instead of a single message.
	FieldErrorsFromServer bool
}

// Run executes a on t. It returns the call result and true on success.
// Validation, precondition and backend failures are recorded on t and
// reported as false; so is a call superseded by a newer one, which
// leaves t untouched.
func Run[T any](ctx context.Context, t *Tracker, a Action[T]) (T, bool) {
	var zero T
	name := a.Name
	if name == "" {
		name = t.name
	}

	t.ClearErrors()

	if a.Validate != nil {
		if errs := a.Validate(); !errs.Valid() {
			t.FieldErrors.Set(errs)
			metrics.ObserveAction(name, metrics.OutcomeInvalid)
			return zero, false
		}
	}
	if a.Precondition != nil {
		if err := a.Precondition(); err != nil {
			t.Error.Set(err.Error())
			metrics.ObserveAction(name, metrics.OutcomePrecondition)
			return zero, false
		}
	}

	callCtx, token := t.begin(ctx)
	t.Loading.Set(true)

	v, err := a.Call(callCtx)

	if !t.finish(token) {
		metrics.ObserveAction(name, metrics.OutcomeSuperseded)
		return zero, false
	}
	if err != nil && ctx.Err() != nil {
		t.settle()
		metrics.ObserveAction(name, metrics.OutcomeSuperseded)
		return zero, false
	}

	if err != nil {
		record(t, a, err)
		t.settle()
		t.log.Warn("action failed", "action", name, "status", errors.StatusCode(err), "error", err)
		metrics.ObserveAction(name, metrics.OutcomeFailed)
		return zero, false
	}

	if a.Apply != nil {
		a.Apply(v)
	}
	t.settle()
	metrics.ObserveAction(name, metrics.OutcomeOK)
	return v, true
}

func record[T any](t *Tracker, a Action[T], err error) {
	if a.FieldErrorsFromServer {
		if e, ok := errors.AsStatus(err); ok && len(e.FieldErrors) > 0 {
			fields := validation.Errors{}
			for k, v := range e.FieldErrors {
				fields[k] = v
			}
			t.FieldErrors.Set(fields)
			return
		}
	}
	if a.Message != nil {
		if msg := a.Message(err); msg != "" {
			t.Error.Set(msg)
			return
		}
	}
	t.Error.Set(ErrorMessage(err, a.Fallback))
}

// ErrorMessage is the message shown for err: the backend's own message
// when it sent one, the not-authenticated message, or fallback.
func ErrorMessage(err error, fallback string) string {
	if e, ok := errors.AsStatus(err); ok && e.Message != "" {
		return e.Message
	}
	if stderrors.Is(err, errors.ErrNotAuthenticated) {
		return errors.ErrNotAuthenticated.Error()
	}
	return fallback
}
