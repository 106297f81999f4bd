package service

import "fmt"

// UpstreamFetchError reports a failed call to the catalog backend: transport failure,
// timeout, non-success status, or a body that is not a catalog page.
type UpstreamFetchError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog upstream error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog upstream error: %v", e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}
