// Package logging provides structured logging for the Media Node.
//
// It wraps log/slog with level parsing, JSON or text output, and
// default service/version fields. Packages that log declare their own
// small Logger interface; *logging.Logger satisfies all of them.
package logging
