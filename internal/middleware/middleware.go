// Package middleware holds the global and route-level echo middleware:
// request ids, the request-scoped logger, bearer-token authentication,
// admin checks, rate limiting, New Relic tracing and the error handler.
package middleware
