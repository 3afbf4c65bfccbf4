package models

import "encoding/json"

// Result is the outcome of one upstream call: either a payload or a failure message.
// The zero value is a failure with an empty message.
type Result[T any] struct {
	value   *T
	message string
}

// Success wraps a payload.
func Success[T any](v T) Result[T] {
	return Result[T]{value: &v}
}

// Failure carries a human-readable description of what went wrong.
func Failure[T any](message string) Result[T] {
	return Result[T]{message: message}
}

// OK reports whether the result holds a payload.
func (r Result[T]) OK() bool {
	return r.value != nil
}

// Value returns the payload and true on success, or the zero value and false.
func (r Result[T]) Value() (T, bool) {
	if r.value == nil {
		var zero T
		return zero, false
	}
	return *r.value, true
}

// Message returns the failure message. Empty on success.
func (r Result[T]) Message() string {
	return r.message
}

type failureBody struct {
	Error string `json:"error"`
}

// MarshalJSON encodes the payload on success and {"error": message} on failure.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.value != nil {
		return json.Marshal(r.value)
	}
	return json.Marshal(failureBody{Error: r.message})
}
