package client

import (
	"context"
	"log/slog"

	"github.com/pyama86/device-query/domain/model"
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeInvalid
	OutcomeTransportFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeTransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}

const (
	MessageInvalid = "Please complete all fields with a valid email."
	MessageSent    = "Query sent! We'll reach out soon."
	MessageFailed  = "Could not send. Please try again."

	LabelSending = "Sending…"
	LabelIdle    = "Send query"
)

// Result is what the submitter sees. Err is nil only for OutcomeOK.
type Result struct {
	Outcome Outcome
	Err     error
}

// Message is the generic text shown for the outcome. It never names a field.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeOK:
		return MessageSent
	case OutcomeInvalid:
		return MessageInvalid
	default:
		return MessageFailed
	}
}

// Control is the submit control. It is disabled while a submission is in flight.
type Control interface {
	Disable(label string)
	Enable(label string)
}

// Submit validates sub, resolves the transport from s and sends once.
// Validation failures return before ctrl is touched. Once disabled, ctrl is
// re-enabled on every exit, panics included.
func Submit(ctx context.Context, r TransportResolver, s Settings, sub model.Submission, ctrl Control) Result {
	valid, err := model.Validate(sub)
	if err != nil {
		return Result{Outcome: OutcomeInvalid, Err: err}
	}

	if ctrl != nil {
		ctrl.Disable(LabelSending)
		defer ctrl.Enable(LabelIdle)
	}

	t, err := r.Resolve(s)
	if err != nil {
		slog.Error("Resolve failed", slog.Any("err", err))
		return Result{Outcome: OutcomeTransportFailed, Err: err}
	}
	if err := t.Send(ctx, valid); err != nil {
		slog.Error("Send failed", slog.String("transport", t.Name()), slog.Any("err", err))
		return Result{Outcome: OutcomeTransportFailed, Err: err}
	}
	return Result{Outcome: OutcomeOK}
}
