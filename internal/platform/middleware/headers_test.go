package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func containsToken(headerValue, target string) bool {
	for part := range strings.SplitSeq(headerValue, ",") {
		if strings.EqualFold(strings.TrimSpace(part), target) {
			return true
		}
	}
	return false
}

func TestCORSAllowsAnyOriginByDefault(t *testing.T) {
	called := false
	h := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "http://localhost/api/data", nil)
	req.Header.Set("Origin", "http://frontend.example")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if !called {
		t.Fatal("expected downstream handler to be called for GET request")
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected Access-Control-Allow-Origin '*', got %q", got)
	}
	if exposed := resp.Header().Get("Access-Control-Expose-Headers"); !containsToken(exposed, "X-Request-Id") {
		t.Fatalf("expected X-Request-Id to be exposed, got %q", exposed)
	}
}

func TestCORSRestrictsConfiguredOrigins(t *testing.T) {
	h := CORS("http://allowed.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	req.Header.Set("Origin", "http://allowed.example")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://allowed.example" {
		t.Fatalf("expected allowed origin to be echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	req.Header.Set("Origin", "http://other.example")
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for foreign origin, got %q", got)
	}
}

func TestCORSHandlesPreflightWithoutCallingNext(t *testing.T) {
	called := false
	h := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "http://localhost/api/data", nil)
	req.Header.Set("Origin", "http://frontend.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "traceparent")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if called {
		t.Fatal("expected preflight to be answered by the CORS middleware")
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); !containsToken(got, http.MethodGet) {
		t.Fatalf("expected GET in Access-Control-Allow-Methods, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Headers"); !containsToken(got, "traceparent") {
		t.Fatalf("expected traceparent in Access-Control-Allow-Headers, got %q", got)
	}
}

func TestVaryAddsAccept(t *testing.T) {
	h := Vary()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.WriteHeader(http.StatusCreated)
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected downstream status to be preserved, got %d", resp.Code)
	}
	values := resp.Header().Values("Vary")
	if len(values) != 2 || values[0] != "Accept" || values[1] != "Origin" {
		t.Fatalf("expected Vary [Accept Origin], got %v", values)
	}
}

func TestSecuritySetsHeaders(t *testing.T) {
	h := Security()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, kv := range securityHeaders {
		if got := resp.Header().Get(kv[0]); got != kv[1] {
			t.Errorf("%s: expected %q, got %q", kv[0], kv[1], got)
		}
	}
}

func TestSecurityDownstreamCanOverride(t *testing.T) {
	h := Security()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := resp.Header().Get("Cache-Control"); got != "max-age=60" {
		t.Fatalf("expected downstream Cache-Control to win, got %q", got)
	}
}

func TestSecuritySkipsExcludedPaths(t *testing.T) {
	h := Security("/api-docs", "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api-docs", nil))
	if got := resp.Header().Get("X-Frame-Options"); got != "" {
		t.Fatalf("expected no security headers on docs path, got X-Frame-Options %q", got)
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	if got := resp.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected security headers on API path, got X-Frame-Options %q", got)
	}
}
