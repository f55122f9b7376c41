package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfer717/raven-go/internal/model"
)

// HTTPTransport is the preferred delivery mechanism: a pooled, keep-alive
// HTTP client shared across sends.
type HTTPTransport struct {
	client  *http.Client
	url     string
	auth    string
	headers map[string]string
}

// NewHTTP creates an HTTPTransport from resolved options.
func NewHTTP(opts Options) Transport {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{
		client:  client,
		url:     opts.DSN.StoreURL(),
		auth:    opts.DSN.AuthHeader(ClientVersion),
		headers: opts.Headers,
	}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, ev *model.Event) (model.Response, error) {
	return post(ctx, t.client, t.url, t.auth, t.headers, ev, false)
}

// RequestTransport is the conservative fallback: one connection per
// request, closed after the response. Used where pooled transports are
// unavailable.
type RequestTransport struct {
	client  *http.Client
	url     string
	auth    string
	headers map[string]string
}

// NewRequest creates a RequestTransport from resolved options.
func NewRequest(opts Options) Transport {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{DisableKeepAlives: true},
		}
	}
	return &RequestTransport{
		client:  client,
		url:     opts.DSN.StoreURL(),
		auth:    opts.DSN.AuthHeader(ClientVersion),
		headers: opts.Headers,
	}
}

// Send implements Transport.
func (t *RequestTransport) Send(ctx context.Context, ev *model.Event) (model.Response, error) {
	return post(ctx, t.client, t.url, t.auth, t.headers, ev, true)
}

// post delivers one JSON-encoded event. Network and collector failures
// map to a failed Response with a *DeliveryError, never a panic.
func post(ctx context.Context, client *http.Client, url, auth string,
	headers map[string]string, ev *model.Event, closeConn bool) (model.Response, error) {

	body, err := json.Marshal(ev)
	if err != nil {
		return model.Response{Status: model.StatusFailed},
			fmt.Errorf("transport: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.Response{Status: model.StatusFailed},
			fmt.Errorf("transport: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Sentry-Auth", auth)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if closeConn {
		req.Close = true
	}

	resp, err := client.Do(req)
	if err != nil {
		return model.Response{Status: model.StatusFailed},
			&DeliveryError{Reason: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Response{Status: model.StatusFailed, StatusCode: resp.StatusCode},
			&DeliveryError{StatusCode: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	return model.Response{
		Status:     model.StatusSuccess,
		StatusCode: resp.StatusCode,
		EventID:    ev.EventID,
	}, nil
}
