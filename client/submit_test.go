package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pyama86/device-query/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type recordingControl struct {
	events []string
}

func (c *recordingControl) Disable(label string) {
	c.events = append(c.events, "disable:"+label)
}

func (c *recordingControl) Enable(label string) {
	c.events = append(c.events, "enable:"+label)
}

var cycled = []string{"disable:" + LabelSending, "enable:" + LabelIdle}

type panickingTransport struct{}

func (panickingTransport) Send(context.Context, model.Submission) error { panic("boom") }
func (panickingTransport) Name() string { return "panic" }

type fixedResolver struct {
	t Transport
}

func (r fixedResolver) Resolve(Settings) (Transport, error) {
	return r.t, nil
}

func newAPIServer(t *testing.T, status int, calls *atomic.Int32, got *model.Submission) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmit_OK(t *testing.T) {
	var calls atomic.Int32
	var got model.Submission
	srv := newAPIServer(t, http.StatusCreated, &calls, &got)

	ctrl := &recordingControl{}
	in := model.Submission{Name: " Taro ", Email: " taro@example.com", Device: "Pixel 8 ", Message: "\tScreen flickers\n"}
	res := Submit(context.Background(), NewResolver(0), Settings{APIBase: srv.URL, Credentials: Unconfigured{}}, in, ctrl)

	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, MessageSent, res.Message())
	assert.Equal(t, cycled, ctrl.events)
	assert.Equal(t, testSubmission, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmit_Invalid(t *testing.T) {
	var calls atomic.Int32
	srv := newAPIServer(t, http.StatusCreated, &calls, nil)

	for _, in := range []model.Submission{
		{Name: "", Email: "a@b.com", Device: "phone", Message: "hi"},
		{Name: "a", Email: "a@b", Device: "phone", Message: "hi"},
		{Name: "a", Email: "notanemail", Device: "phone", Message: "hi"},
		{Name: "a", Email: "a@b.co", Device: "  ", Message: "hi"},
	} {
		ctrl := &recordingControl{}
		res := Submit(context.Background(), NewResolver(0), Settings{APIBase: srv.URL}, in, ctrl)
		assert.Equal(t, OutcomeInvalid, res.Outcome)
		assert.ErrorIs(t, res.Err, model.ErrInvalidSubmission)
		assert.Equal(t, MessageInvalid, res.Message())
		assert.Empty(t, ctrl.events)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubmit_TransportFailure(t *testing.T) {
	var calls atomic.Int32
	srv := newAPIServer(t, http.StatusInternalServerError, &calls, nil)

	ctrl := &recordingControl{}
	res := Submit(context.Background(), NewResolver(0), Settings{APIBase: srv.URL}, testSubmission, ctrl)

	assert.Equal(t, OutcomeTransportFailed, res.Outcome)
	var te *TransportError
	require.ErrorAs(t, res.Err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, MessageFailed, res.Message())
	assert.Equal(t, cycled, ctrl.events)
	// 自動リトライはしない
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmit_NoTransport(t *testing.T) {
	ctrl := &recordingControl{}
	res := Submit(context.Background(), NewResolver(0), Settings{Credentials: Unconfigured{}}, testSubmission, ctrl)

	assert.Equal(t, OutcomeTransportFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNoTransport)
	assert.Equal(t, MessageFailed, res.Message())
	assert.Equal(t, cycled, ctrl.events)
}

func TestSubmit_PrefersHTTPOverDocumentStore(t *testing.T) {
	var apiCalls, storeCalls atomic.Int32
	api := newAPIServer(t, http.StatusCreated, &apiCalls, nil)
	store := newFirestoreServer(t, http.StatusOK, &storeCalls, nil)

	r := NewResolver(0)
	r.FirestoreOptions = []option.ClientOption{option.WithEndpoint(store.URL + "/")}
	s := Settings{APIBase: api.URL, Credentials: testCreds}

	res := Submit(context.Background(), r, s, testSubmission, nil)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, int32(1), apiCalls.Load())
	assert.Equal(t, int32(0), storeCalls.Load())

	// API が落ちていても document store には切り替えない
	failing := newAPIServer(t, http.StatusServiceUnavailable, &apiCalls, nil)
	res = Submit(context.Background(), r, Settings{APIBase: failing.URL, Credentials: testCreds}, testSubmission, nil)
	assert.Equal(t, OutcomeTransportFailed, res.Outcome)
	assert.Equal(t, int32(0), storeCalls.Load())
}

func TestSubmit_DocumentStore(t *testing.T) {
	var calls atomic.Int32
	store := newFirestoreServer(t, http.StatusOK, &calls, nil)

	r := NewResolver(0)
	r.FirestoreOptions = []option.ClientOption{option.WithEndpoint(store.URL + "/")}

	res := Submit(context.Background(), r, Settings{Credentials: testCreds}, testSubmission, nil)
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmit_ReenablesOnPanic(t *testing.T) {
	ctrl := &recordingControl{}
	assert.Panics(t, func() {
		Submit(context.Background(), fixedResolver{t: panickingTransport{}}, Settings{}, testSubmission, ctrl)
	})
	assert.Equal(t, cycled, ctrl.events)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "invalid", OutcomeInvalid.String())
	assert.Equal(t, "transport_failed", OutcomeTransportFailed.String())
}
