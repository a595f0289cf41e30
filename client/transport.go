package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pyama86/device-query/domain/model"
	"google.golang.org/api/option"
)

const DefaultTimeout = 10 * time.Second

// ErrNoTransport means neither an API base nor document store credentials are configured.
var ErrNoTransport = errors.New("no transport configured")

// Transport delivers one validated submission. Implementations never retry.
type Transport interface {
	Send(ctx context.Context, sub model.Submission) error
	Name() string
}

// TransportError wraps every delivery failure, including non-2xx responses.
type TransportError struct {
	Transport  string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s transport: unexpected status %d", e.Transport, e.StatusCode)
	}
	return fmt.Sprintf("%s transport: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type TransportResolver interface {
	Resolve(Settings) (Transport, error)
}

// Resolver picks the transport for a submission.
type Resolver struct {
	HTTPClient *http.Client
	// FirestoreOptions are appended after the API key option.
	FirestoreOptions []option.ClientOption
}

func NewResolver(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{HTTPClient: &http.Client{Timeout: timeout}}
}

// Resolve prefers the HTTP API whenever an API base is set, then the document store.
func (r *Resolver) Resolve(s Settings) (Transport, error) {
	if base := strings.TrimSuffix(s.APIBase, "/"); base != "" {
		return NewHTTPTransport(r.HTTPClient, base+"/api/queries"), nil
	}
	switch c := s.Credentials.(type) {
	case Configured:
		return NewFirestoreTransport(c, r.FirestoreOptions...), nil
	default:
		return nil, ErrNoTransport
	}
}
