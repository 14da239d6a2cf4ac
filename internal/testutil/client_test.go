package testutil

import (
	"net/http"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Seen-Request-Id", r.Header.Get(chimiddleware.RequestIDHeader))
		w.Header().Set("X-Seen-Accept", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `","n":1}`))
	})
}

func TestClientGet(t *testing.T) {
	resp := NewClient(echoHandler()).Get(t, "/api/data")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Path string `json:"path"`
		N    int    `json:"n"`
	}
	resp.JSON(t, &body)
	if body.Path != "/api/data" || body.N != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if got := resp.Header.Get("X-Seen-Request-Id"); got != "test-TestClientGet" {
		t.Fatalf("expected default request id, got %q", got)
	}
}

func TestClientWithHeader(t *testing.T) {
	base := NewClient(echoHandler())
	cbor := base.WithHeader("Accept", "application/cbor")

	if got := cbor.Get(t, "/").Header.Get("X-Seen-Accept"); got != "application/cbor" {
		t.Fatalf("expected Accept to be sent, got %q", got)
	}
	if got := base.Get(t, "/").Header.Get("X-Seen-Accept"); got != "" {
		t.Fatalf("expected base client to be unchanged, got %q", got)
	}
}

func TestResponseFields(t *testing.T) {
	fields := NewClient(echoHandler()).Get(t, "/").Fields(t)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", fields)
	}
	if string(fields["n"]) != "1" {
		t.Fatalf("expected n=1, got %s", fields["n"])
	}
}

func TestClientDoesNotRecoverPanics(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	defer func() {
		if rec := recover(); rec != "boom" {
			t.Fatalf("expected panic to reach the caller, got %v", rec)
		}
	}()
	NewClient(panicking).Get(t, "/")
	t.Fatal("expected panic")
}
