// Package respond renders the framework-level error responses shared by the
// router and the API: 404, 405 and recovered panics. Bodies are RFC 9457
// problem details encoded as JSON, or as CBOR when the client prefers it.
package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/demo-backend/internal/platform/logging"
)

const (
	ContentTypeProblemJSON = "application/problem+json"
	ContentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound            = "resource not found"
	msgInternalServerError = "internal server error"
)

// NotFoundHandler renders a 404 problem for unmatched routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler renders a 405 problem and lists the methods the
// matched path does support in the Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		WriteProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// Recoverer converts handler panics into 500 problems. http.ErrAbortHandler
// is re-panicked so net/http can abort the connection. If the handler already
// started writing, the partial response is left untouched.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(r.Context(), "panic recovered", panicError(rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					traceField(r),
					zap.ByteString("stack", debug.Stack()),
				)
				if rw.wroteHeader {
					return
				}
				WriteProblem(rw, r, http.StatusInternalServerError, msgInternalServerError)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// WriteProblem writes a problem details body for status, negotiated from the
// request's Accept header.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := &huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	if r.URL != nil {
		problem.Instance = r.URL.Path
	}

	contentType := ContentTypeProblemJSON
	var (
		body []byte
		err  error
	)
	if selectFormat(r.Header.Get("Accept")) {
		contentType = ContentTypeProblemCBOR
		body, err = cbor.Marshal(problem)
	} else {
		body, err = marshalJSON(problem)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err, zap.Int("status", status))
		http.Error(w, http.StatusText(status), status)
		return
	}

	applog.LogDebug(r.Context(), "problem response",
		zap.Int("status", status),
		zap.String("detail", detail),
		zap.String("contentType", contentType),
		traceField(r),
	)

	h := w.Header()
	h.Set("Content-Type", contentType)
	ensureVary(h, "Accept")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		applog.LogWarn(r.Context(), "failed to write problem", zap.Error(err))
	}
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// traceField carries the request's correlation ID, or is skipped when none is set.
func traceField(r *http.Request) zap.Field {
	if id := applog.TraceIDFromContext(r.Context()); id != nil {
		return zap.String("traceId", *id)
	}
	return zap.Skip()
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}

// responseWriter records whether the response has started so Recoverer does
// not write a second status line.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// ensureVary adds each value to Vary unless already listed.
func ensureVary(h http.Header, values ...string) {
	present := map[string]struct{}{}
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			present[strings.ToLower(strings.TrimSpace(part))] = struct{}{}
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := present[key]; ok || v == "" {
			continue
		}
		present[key] = struct{}{}
		h.Add("Vary", v)
	}
}

// allowedMethods asks chi which methods would match the request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.RawPath
	}
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}

	var allowed []string
	for _, method := range []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

type mediaRange struct {
	typ string
	q   float64
}

// parseAccept splits an Accept header into lower-cased media ranges with
// their q-values. Malformed entries and out-of-range q-values are dropped.
func parseAccept(accept string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(accept, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		typ := strings.ToLower(strings.TrimSpace(params[0]))
		if !strings.Contains(typ, "/") {
			continue
		}
		q, ok := 1.0, true
		for _, p := range params[1:] {
			k, v, found := strings.Cut(strings.TrimSpace(p), "=")
			if !found || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || parsed < 0 || parsed > 1 {
				ok = false
				break
			}
			q = parsed
		}
		if ok {
			ranges = append(ranges, mediaRange{typ: typ, q: q})
		}
	}
	return ranges
}

// selectFormat reports whether CBOR should be used for a response. JSON wins
// ties and is the default when neither format is acceptable.
func selectFormat(accept string) bool {
	ranges := parseAccept(accept)
	jsonQ := formatQuality(ranges, "json")
	cborQ := formatQuality(ranges, "cbor")
	return cborQ > 0 && cborQ > jsonQ
}

// formatQuality returns the q-value of the most specific range matching the
// given structured syntax suffix, or 0 when nothing matches.
func formatQuality(ranges []mediaRange, suffix string) float64 {
	best, q := 0, 0.0
	for _, mr := range ranges {
		rank := 0
		switch mr.typ {
		case "application/" + suffix, "application/problem+" + suffix:
			rank = 3
		case "application/*+" + suffix:
			rank = 2
		case "application/*", "*/*":
			rank = 1
		}
		if rank > best {
			best, q = rank, mr.q
		}
	}
	return q
}
