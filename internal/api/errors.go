package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies every failure the executor can surface.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetworkUnavailable
	KindValidationFailed
	KindServerError
	KindUnexpectedFormat
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindValidationFailed:
		return "validation_failed"
	case KindServerError:
		return "server_error"
	case KindUnexpectedFormat:
		return "unexpected_format"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Connectivity reports whether the kind means the server could not be reached
// (or could not answer sensibly), as opposed to a problem with the data sent.
func (k Kind) Connectivity() bool {
	switch k {
	case KindTimeout, KindNetworkUnavailable, KindServerError:
		return true
	default:
		return false
	}
}

// Error is the structured failure returned by Client.
type Error struct {
	Kind    Kind
	Op      string // "GET /clientes"
	Status  int    // zero when no response was received
	Message string
	Fields  []FieldError
	Err     error
}

// FieldError is one entry of a field-level validation map.
type FieldError struct {
	Field    string
	Messages []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf extracts the Kind from err, returning KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// errorFromBody builds the error for a non-2xx response. The field map wins
// over message/error, which win over the status line.
func errorFromBody(op string, status int, statusLine string, body []byte, isJSON bool) *Error {
	e := &Error{Kind: kindForStatus(status), Op: op, Status: status}

	if isJSON && gjson.ValidBytes(body) {
		root := gjson.ParseBytes(body)
		if fields := fieldErrors(root.Get("errors")); len(fields) > 0 {
			e.Fields = fields
			e.Message = validationMessage(fields)
			if status < 500 && e.Kind != KindUnauthenticated && e.Kind != KindForbidden {
				e.Kind = KindValidationFailed
			}
			return e
		}
		if msg := strings.TrimSpace(root.Get("message").String()); msg != "" {
			e.Message = msg
			return e
		}
		if errField := root.Get("error"); errField.Exists() {
			msg := errField.String()
			if errField.IsObject() {
				msg = errField.Get("message").String()
			}
			if msg = strings.TrimSpace(msg); msg != "" {
				e.Message = msg
				return e
			}
		}
	}

	e.Message = "HTTP " + statusLine
	return e
}

func kindForStatus(status int) Kind {
	switch {
	case status == 401:
		return KindUnauthenticated
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status >= 500:
		return KindServerError
	case status >= 400:
		return KindValidationFailed
	default:
		return KindUnexpectedFormat
	}
}

// fieldErrors reads {"field": ["msg", ...]} or {"field": "msg"}, keeping the
// order the server sent.
func fieldErrors(v gjson.Result) []FieldError {
	if !v.IsObject() {
		return nil
	}
	var out []FieldError
	v.ForEach(func(key, value gjson.Result) bool {
		fe := FieldError{Field: key.String()}
		if value.IsArray() {
			for _, m := range value.Array() {
				if s := strings.TrimSpace(m.String()); s != "" {
					fe.Messages = append(fe.Messages, s)
				}
			}
		} else if s := strings.TrimSpace(value.String()); s != "" {
			fe.Messages = append(fe.Messages, s)
		}
		if len(fe.Messages) > 0 {
			out = append(out, fe)
		}
		return true
	})
	return out
}

func validationMessage(fields []FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+": "+strings.Join(f.Messages, ", "))
	}
	return "Errores de validación: " + strings.Join(parts, "; ")
}
