package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Maroua-Bm/PDF-project/internal/embed"
	"github.com/Maroua-Bm/PDF-project/internal/llm"
	"github.com/Maroua-Bm/PDF-project/internal/parser"
)

// Kind classifies a pipeline failure for callers.
type Kind string

const (
	KindFileOpen    Kind = "file_open"
	KindService     Kind = "service"
	KindRateLimited Kind = "rate_limited"
	KindGeneric     Kind = "generic"
)

// User-facing summarization messages.
const (
	MsgRateLimited   = "Rate limit exceeded. Please try again later or check your API usage."
	MsgSummaryFailed = "Internal error while summarizing PDF"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("search query must not be empty")

// Error is a classified pipeline failure. Msg, when set, replaces the cause
// in what callers show to users.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies err. Errors that are not recognised are generic.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var rl *llm.RateLimitError
	if errors.As(err, &rl) {
		return KindRateLimited
	}
	var oe *parser.OpenError
	if errors.As(err, &oe) {
		return KindFileOpen
	}
	var es *embed.ServiceError
	if errors.As(err, &es) {
		return KindService
	}
	var ls *llm.ServiceError
	if errors.As(err, &ls) {
		return KindService
	}
	return KindGeneric
}

// Message is the text shown to users for err.
func Message(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Msg != "" {
		return pe.Msg
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "operation timed out"
	}
	return err.Error()
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}
