// Package httpclient builds the resty clients shared across the toolkit.
package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds outbound calls when the caller passes none.
const DefaultTimeout = 15 * time.Second

// NewRestyHTTPClient returns a resty client with the given timeout applied.
// A non-positive timeout falls back to DefaultTimeout.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}
