package logging

import (
	"context"

	"go.uber.org/zap"
)

type (
	ctxLoggerKey  struct{}
	ctxTraceIDKey struct{}
)

// LoggerFromContext returns the request-scoped logger, falling back to the process-wide logger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Logger()
	}
	if l, ok := ctx.Value(ctxLoggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return Logger()
}

// TraceIDFromContext returns the correlation identifier (trace resource or request ID) if present.
func TraceIDFromContext(ctx context.Context) *string {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxTraceIDKey{}).(*string); ok && v != nil && *v != "" {
		return v
	}
	return nil
}

// WithLogger returns a copy of ctx carrying logger. Tests use it to inject an observer core.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return contextWithLogger(ctx, logger)
}

// helperLogger skips the Log* frame so the caller field points at the call site.
func helperLogger(ctx context.Context) *zap.Logger {
	return LoggerFromContext(ctx).WithOptions(zap.AddCallerSkip(1))
}

func LogDebug(ctx context.Context, msg string, fields ...zap.Field) {
	helperLogger(ctx).Debug(msg, fields...)
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	helperLogger(ctx).Info(msg, fields...)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	helperLogger(ctx).Warn(msg, fields...)
}

// LogError appends err as the "error" field when it is non-nil.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	helperLogger(ctx).Error(msg, fields...)
}

func contextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

func contextWithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	id := traceID
	return context.WithValue(ctx, ctxTraceIDKey{}, &id)
}
