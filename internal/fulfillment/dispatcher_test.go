package fulfillment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"swifteats/internal/config"
)

type recordedCall struct {
	path string
	body map[string]any
}

func recordingServer(t *testing.T, status int) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		calls = append(calls, recordedCall{path: r.URL.Path, body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	return srv, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestDispatcherCallsBothCollaborators(t *testing.T) {
	srv, calls := recordingServer(t, http.StatusCreated)
	defer srv.Close()

	client := NewClient(
		config.CollaboratorConfig{BaseURL: srv.URL, Timeout: time.Second},
		config.CollaboratorConfig{BaseURL: srv.URL, Timeout: time.Second},
	)
	d := NewDispatcher(client, 2, 16, zaptest.NewLogger(t))

	d.OrderConfirmed(42, "Pune", "corr-42")
	d.Close() // drains the queue

	got := calls()
	require.Len(t, got, 2)

	byPath := map[string]map[string]any{}
	for _, call := range got {
		byPath[call.path] = call.body
	}
	require.Contains(t, byPath, "/v1/deliveries/assign")
	require.Contains(t, byPath, "/v1/notifications")

	assert.Equal(t, float64(42), byPath["/v1/deliveries/assign"]["order_id"])
	assert.Equal(t, "Pune", byPath["/v1/deliveries/assign"]["city"])
	assert.Equal(t, NotificationOrderConfirmed, byPath["/v1/notifications"]["type"])
}

func TestDispatcherSwallowsCollaboratorFailures(t *testing.T) {
	srv, calls := recordingServer(t, http.StatusInternalServerError)
	defer srv.Close()

	client := NewClient(
		config.CollaboratorConfig{BaseURL: srv.URL, Timeout: time.Second},
		config.CollaboratorConfig{BaseURL: srv.URL, Timeout: time.Second},
	)
	d := NewDispatcher(client, 1, 16, zaptest.NewLogger(t))

	// Must not panic or block regardless of downstream failures.
	d.OrderConfirmed(1, "Pune", "corr-1")
	d.OrderConfirmed(2, "Pune", "corr-2")
	d.Close()

	assert.Len(t, calls(), 4, "both calls attempted per order, failures discarded")
}

func TestDispatcherEnqueueNeverBlocksWhenFull(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))

	client := NewClient(
		config.CollaboratorConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
		config.CollaboratorConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
	)
	d := NewDispatcher(client, 1, 1, zaptest.NewLogger(t))

	// Unblock the worker and drain the queue before the server goes away, so
	// no worker is left logging after the test returns. Runs on the failure
	// path too.
	t.Cleanup(func() {
		close(block)
		d.Close()
		srv.Close()
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			d.OrderConfirmed(int64(i), "Pune", "corr")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}
