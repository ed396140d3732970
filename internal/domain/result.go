package domain

import "strings"

// SubmissionResult is what every write returns to the UI. A failed result
// never carries Data and always carries a presentable Message.
type SubmissionResult[T any] struct {
	Success bool
	Message string
	Data    *T
	Err     error // classified cause, for programmatic checks; nil on success
}

// Succeeded builds a successful result.
func Succeeded[T any](message string, data T) SubmissionResult[T] {
	return SubmissionResult[T]{Success: true, Message: message, Data: &data}
}

// Failed builds a failed result, guaranteeing a non-empty message.
func Failed[T any](message string, cause error) SubmissionResult[T] {
	if strings.TrimSpace(message) == "" {
		message = "No se pudo completar la operación"
	}
	return SubmissionResult[T]{Message: message, Err: cause}
}
