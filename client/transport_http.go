package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pyama86/device-query/domain/model"
)

type HTTPTransport struct {
	client   *http.Client
	endpoint string
}

func NewHTTPTransport(client *http.Client, endpoint string) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPTransport{client: client, endpoint: endpoint}
}

func (t *HTTPTransport) Name() string {
	return "http"
}

func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

func (t *HTTPTransport) Send(ctx context.Context, sub model.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return &TransportError{Transport: t.Name(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Transport: t.Name(), Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.client.Do(req)
	if err != nil {
		return &TransportError{Transport: t.Name(), Err: err}
	}
	defer res.Body.Close()
	// 接続を再利用するため読み捨てる
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &TransportError{Transport: t.Name(), StatusCode: res.StatusCode}
	}
	return nil
}
