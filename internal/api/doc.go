// Package api provides the HTTP request executor for the remote
// administration API.
//
// # Overview
//
// Client wraps net/http with a per-request deadline, content-type
// negotiation and structured error translation. Domain facades depend on the
// Executor interface rather than on *Client so tests can count calls.
//
// # Request Handling
//
// All requests:
//   - Derive their own context.WithTimeout from the caller's context
//   - Set Accept: application/json (and Content-Type: application/json for Do)
//   - Include User-Agent: bodega/0.1
//   - Attach "Authorization: Bearer <token>" when a TokenSource yields one
//
// Upload sends multipart/form-data and takes its Content-Type from the
// multipart writer, so the boundary is always correct.
//
// # Error Handling
//
// Every failure is an *Error with a Kind:
//
//   - KindTimeout: the request deadline fired first
//   - KindNetworkUnavailable: no response (DNS, refused, reset)
//   - KindValidationFailed: 4xx, usually with a field map
//   - KindServerError: 5xx, an HTML page, or a malformed JSON body
//   - KindUnexpectedFormat: 2xx body that is plain text or an unknown shape
//   - KindUnauthenticated / KindForbidden / KindNotFound: 401 / 403 / 404
//
// For non-2xx replies the message is built from the error envelope: the
// "errors" field map wins ("Errores de validación: ruc: El RUC ya existe"),
// then "message", then "error", then the HTTP status line.
//
// # Envelopes
//
// Collection accepts a bare array, {"<plural>": [...]}, {"data": [...]} and
// the paginated {"data", "links", "meta"} envelope, returning one
// Paginated[gjson.Result] shape. Single accepts {"success","message","data"}
// or a bare record. Both use gjson so the raw records stay tolerant of
// field-name variants until the facade maps them.
//
// # Thread Safety
//
// Client is safe for concurrent use. Requests share nothing but the
// underlying http.Client, and each owns its own cancellation.
package api
