package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound collaborator call. The climate API
// can return a century of daily data in one response, so this is generous.
const DefaultTimeout = 60 * time.Second

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
