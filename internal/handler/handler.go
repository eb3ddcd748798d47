// Package handler is the HTTP layer between the router and the services.
// Every endpoint is a typed function wrapped by Handle, which binds and
// validates the request, then logs and traces the call.
package handler
