package catalog

import "fmt"

// UnavailableError reports a failure to talk to the Consul catalog:
// connection refused, timeout, or a non-success HTTP status.
type UnavailableError struct {
	URL    string
	Status int   // 0 when the request never completed
	Err    error // nil when Status is set
}

func (e *UnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog unavailable: %s returned %d", e.URL, e.Status)
	}
	return fmt.Sprintf("catalog unavailable: %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that is not valid JSON or does
// not match the expected catalog schema.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding catalog response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
