// ===== internal/api/errors.go =====
package api

import "fmt"

// TransportError reports a failed exchange with the Welcome server:
// connection refused, timeout, or a non-2xx response.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError reports a response that did not match the expected shape:
// malformed JSON or a missing/ill-typed required field.
type SchemaError struct {
	Entity string
	Field  string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: missing or invalid field %q", e.Entity, e.Field)
	}
	return fmt.Sprintf("invalid %s: %v", e.Entity, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
