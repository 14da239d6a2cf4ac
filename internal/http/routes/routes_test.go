package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/demo-backend/internal/api"
	applog "github.com/janisto/demo-backend/internal/platform/logging"
	appmiddleware "github.com/janisto/demo-backend/internal/platform/middleware"
	"github.com/janisto/demo-backend/internal/platform/respond"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(),
		respond.Recoverer(),
	)
	Register(humachi.New(router, api.NewConfig("test", "")))
	return router
}

func TestRegisterRoutes(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/", "/api/data"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(chimiddleware.RequestIDHeader, "routes-"+path)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestRegisterRoutesOnlyGET(t *testing.T) {
	router := newTestRouter()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(method, "/api/data", nil))

		if resp.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s /api/data: expected 405, got %d", method, resp.Code)
		}
	}
}

func TestRegisterRoutesUnknownPath(t *testing.T) {
	router := newTestRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/other", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestRegisterRoutesOpenAPI(t *testing.T) {
	router := chi.NewRouter()
	testAPI := humachi.New(router, api.NewConfig("test", ""))
	Register(testAPI)

	paths := testAPI.OpenAPI().Paths
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	for _, p := range []string{"/", "/api/data"} {
		if paths[p] == nil || paths[p].Get == nil {
			t.Fatalf("expected GET %s in OpenAPI", p)
		}
	}
}
