package logging

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context: {version}-{trace-id}-{parent-id}-{trace-flags}
// e.g. 00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01
var traceHeaderRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

var (
	projectIDOnce   sync.Once
	projectIDMu     sync.RWMutex
	cachedProjectID string
)

// SetProjectID pins the Google Cloud project used for trace correlation.
// An empty id leaves environment-based resolution in place.
func SetProjectID(id string) {
	if id == "" {
		return
	}
	projectIDOnce.Do(func() {})
	projectIDMu.Lock()
	cachedProjectID = id
	projectIDMu.Unlock()
}

func loggerWithTrace(base *zap.Logger, header, projectID, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	fields := traceFields(header, projectID)
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func traceFields(header, projectID string) []zap.Field {
	if projectID == "" {
		return nil
	}
	m := traceHeaderRe.FindStringSubmatch(header)
	if len(m) != 5 {
		return nil
	}
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", projectID, m[2])),
		zap.String("logging.googleapis.com/spanId", m[3]),
		zap.Bool("logging.googleapis.com/trace_sampled", m[4] == "01"),
	}
}

func traceResource(header, projectID string) string {
	if projectID == "" {
		return ""
	}
	m := traceHeaderRe.FindStringSubmatch(header)
	if len(m) != 5 {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", projectID, m[2])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveProjectID() string {
	projectIDOnce.Do(func() {
		projectIDMu.Lock()
		cachedProjectID = firstNonEmpty(
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
			os.Getenv("GCP_PROJECT"),
			os.Getenv("GCLOUD_PROJECT"),
			os.Getenv("PROJECT_ID"),
		)
		projectIDMu.Unlock()
	})
	projectIDMu.RLock()
	defer projectIDMu.RUnlock()
	return cachedProjectID
}
