// Package logger provides the two logs of an application: the long-lived
// application logger and the per-request buffer.
//
// # Application logger
//
// New builds a slog.Logger writing JSON (or text) to stdout, optionally
// fanned out to Sentry. Context extractors inject request-scoped attributes
// on every call:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(requestIDKey{}).(string)
//		return slog.String("request_id", id), ok && id != ""
//	}
//	log := logger.New(logger.Config{Level: "info"}, requestID)
//
// With an empty Sentry DSN the logger falls back to stdout only.
//
// # Request buffer
//
// A Buffer collects everything one request logs and writes nothing until
// Flush. Every line is prefixed with the caller, the elapsed time since the
// request started and the memory delta since the previous line:
//
//	[     gateway.go: 98] (3.12 ms) (+12 KiB) SQL failure database=default
//
// Benchmark measures the code between two calls with the same id, which is
// how the database gateway times each statement.
//
// Flush hands a Report to a Sink chosen by Location: Void, File, Console,
// Store or Structured. File and Store keep only reports that contain an
// error; Console and Structured receive every report.
package logger
