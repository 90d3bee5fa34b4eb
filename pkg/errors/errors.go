package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// Probe errors
	ErrProbeNotFound = errors.New("probe command not found")
	ErrProbeTimeout  = errors.New("probe timed out")
	ErrNoOutput      = errors.New("probe produced no output")
	ErrNoHops        = errors.New("no hops parsed from probe output")
	ErrNoResponsive  = errors.New("no responsive hops found")
	ErrNoSamples     = errors.New("no round-trip samples extracted")

	// Server list errors
	ErrNoAddresses    = errors.New("address source yielded no addresses")
	ErrColumnNotFound = errors.New("address column not found")

	// Geolocation errors
	ErrGeoLookupFailed = errors.New("geolocation lookup failed")
	ErrNoPublicIP      = errors.New("could not determine public IP")

	// Storage errors
	ErrNotFound = errors.New("not found")
)

// ProbeError wraps a failure measuring a single destination.
type ProbeError struct {
	Destination string
	Op          string // "ping" or "traceroute"
	Err         error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Destination, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// FetchError wraps a failure retrieving the server list.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch '%s': %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-200 HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s for %s", e.StatusCode, e.Status, e.URL)
}
