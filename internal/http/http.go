// Package http provides a wrapper around the retryablehttp.Client
// for making HTTP requests with retry capabilities.
package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type HTTPDoer interface {
	Do(*retryablehttp.Request) (*http.Response, error)
}

type HTTP struct {
	*retryablehttp.Client
}

var _ HTTPDoer = (*retryablehttp.Client)(nil)

const (
	defaultRetryMax     = 3
	defaultRetryWaitMax = 5 * time.Second
	defaultTimeout      = 15 * time.Second
)

func DefaultConfig() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = defaultRetryMax
	client.RetryWaitMax = defaultRetryWaitMax
	client.HTTPClient.Timeout = defaultTimeout
	return client
}

// New wraps client, routing its retry logs to logger. A nil logger
// silences them.
func New(client *retryablehttp.Client, logger *slog.Logger) *HTTP {
	if logger != nil {
		client.Logger = retryablehttp.LeveledLogger(logger)
	} else {
		client.Logger = nil
	}
	return &HTTP{
		Client: client,
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ExpectStatus2xx returns a *StatusError and closes the body when the
// response is not successful.
func ExpectStatus2xx(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
