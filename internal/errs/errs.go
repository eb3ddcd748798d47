// Package errs defines the error shapes returned to API clients.
//
// Every error that reaches the global error handler is rendered as an
// HTTPError so clients always receive the same JSON structure, optionally
// with field-level errors for forms and an action hint such as a redirect.
package errs
