package marketplace

// APIError is returned for every failed marketplace call. Callers only get a message; the
// underlying cause, when there is one, stays reachable through errors.Cause.
type APIError struct {
	Message string
	cause   error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Cause() error { return e.cause }

func (e *APIError) Unwrap() error { return e.cause }
