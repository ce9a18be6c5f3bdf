// internal/gateway/errors.go
package gateway

import "fmt"

// RequestError wraps transport failures talking to the gateway
type RequestError struct {
	Op         string
	Underlying error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Underlying)
}

func (e *RequestError) Unwrap() error { return e.Underlying }

// StatusError is returned when the gateway answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: gateway returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: gateway returned %d - %s", e.Op, e.StatusCode, e.Body)
}

// ImportError carries the plain-text reason the gateway rejected an import
type ImportError struct {
	Collection string
	Message    string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import into %s rejected: %s", e.Collection, e.Message)
}

// WrapRequestError creates a RequestError from underlying error
func WrapRequestError(op string, err error) error {
	return &RequestError{Op: op, Underlying: err}
}
