package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfer717/raven-go/internal/dsn"
	"github.com/wolfer717/raven-go/internal/model"
)

func testOptions(t *testing.T, serverURL string) Options {
	t.Helper()
	d, err := dsn.Parse(serverURL[:7] + "pub:sec@" + serverURL[7:] + "/42")
	require.NoError(t, err)
	return Options{DSN: d}
}

func TestSelect(t *testing.T) {
	explicit := Factory(func(Options) Transport { return &DumpTransport{} })

	tests := []struct {
		name     string
		explicit Factory
		caps     Capabilities
		want     Factory
	}{
		{"explicit wins over capable runtime", explicit, Capabilities{HTTP2: true}, explicit},
		{"explicit wins over fallback runtime", explicit, Capabilities{HTTP2: false}, explicit},
		{"capable runtime gets pooled transport", nil, Capabilities{HTTP2: true}, NewHTTP},
		{"incapable runtime gets request fallback", nil, Capabilities{HTTP2: false}, NewRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.explicit, tt.caps)
			assert.Equal(t,
				reflect.ValueOf(tt.want).Pointer(),
				reflect.ValueOf(got).Pointer())
		})
	}
}

func TestHTTPTransportSend(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Sentry-Auth")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	tr := NewHTTP(testOptions(t, srv.URL))
	ev := &model.Event{EventID: "abc", Message: "disk full"}

	resp, err := tr.Send(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, resp.Status)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "abc", resp.EventID)
	assert.Contains(t, gotAuth, "sentry_key=pub")
	assert.Contains(t, gotAuth, "sentry_client="+ClientVersion)
	assert.Equal(t, "application/json", gotContentType)

	var decoded model.Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "disk full", decoded.Message)
}

func TestSendCollectorRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	for name, factory := range map[string]Factory{"http": NewHTTP, "request": NewRequest} {
		t.Run(name, func(t *testing.T) {
			tr := factory(testOptions(t, srv.URL))
			resp, err := tr.Send(context.Background(), &model.Event{Message: "x"})

			assert.Equal(t, model.StatusFailed, resp.Status)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			var derr *DeliveryError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, http.StatusForbidden, derr.StatusCode)
		})
	}
}

func TestSendNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	tr := NewRequest(testOptions(t, srv.URL))
	resp, err := tr.Send(context.Background(), &model.Event{Message: "x"})

	assert.Equal(t, model.StatusFailed, resp.Status)
	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Zero(t, derr.StatusCode)
}

func TestSendHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewHTTP(testOptions(t, srv.URL))
	resp, err := tr.Send(ctx, &model.Event{Message: "x"})

	assert.Equal(t, model.StatusFailed, resp.Status)
	require.Error(t, err)
}

func TestDumpTransport(t *testing.T) {
	var buf bytes.Buffer
	tr := NewDump(&buf, false)

	resp, err := tr.Send(context.Background(), &model.Event{EventID: "abc", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, resp.Status)

	var decoded model.Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded.Message)
}
