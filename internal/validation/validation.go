// Package validation binds request payloads and turns validator errors into
// field errors the client can show next to form inputs.
package validation
