package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pyama86/device-query/domain/model"
	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"
)

const firestoreCollection = "queries"

var timeNow = func() time.Time {
	return time.Now()
}

// FirestoreTransport writes straight into the document store. Nothing on the server
// side validates this path, the store's security rules are the only check.
type FirestoreTransport struct {
	creds Configured
	opts  []option.ClientOption

	mu  sync.Mutex
	svc *firestore.Service
}

func NewFirestoreTransport(creds Configured, opts ...option.ClientOption) *FirestoreTransport {
	return &FirestoreTransport{creds: creds, opts: opts}
}

func (t *FirestoreTransport) Name() string {
	return "firestore"
}

// service は初回の Send で作る。失敗したら次の Send でやり直す
func (t *FirestoreTransport) service(ctx context.Context) (*firestore.Service, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.svc != nil {
		return t.svc, nil
	}
	opts := append([]option.ClientOption{option.WithAPIKey(t.creds.APIKey)}, t.opts...)
	svc, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewService failed: %w", err)
	}
	t.svc = svc
	return svc, nil
}

func (t *FirestoreTransport) parent() string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents", t.creds.ProjectID)
}

func stringValue(s string) firestore.Value {
	return firestore.Value{StringValue: &s}
}

func (t *FirestoreTransport) Send(ctx context.Context, sub model.Submission) error {
	svc, err := t.service(ctx)
	if err != nil {
		return &TransportError{Transport: t.Name(), Err: err}
	}
	doc := &firestore.Document{
		Fields: map[string]firestore.Value{
			"name":       stringValue(sub.Name),
			"email":      stringValue(sub.Email),
			"device":     stringValue(sub.Device),
			"message":    stringValue(sub.Message),
			"created_at": stringValue(model.FormatTime(timeNow())),
		},
	}
	if _, err := svc.Projects.Databases.Documents.CreateDocument(t.parent(), firestoreCollection, doc).Context(ctx).Do(); err != nil {
		return &TransportError{Transport: t.Name(), Err: fmt.Errorf("CreateDocument failed: %w", err)}
	}
	return nil
}
