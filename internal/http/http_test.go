package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestExpectStatus2xx(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no content", status: http.StatusNoContent},
		{name: "bad request", status: http.StatusBadRequest, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tt.status,
				Body:       io.NopCloser(strings.NewReader("details")),
			}
			err := ExpectStatus2xx(resp)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ExpectStatus2xx() error = %v", err)
				}
				return
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected *StatusError, got %v", err)
			}
			if statusErr.StatusCode != tt.status || statusErr.Body != "details" {
				t.Errorf("StatusError = %+v", statusErr)
			}
		})
	}
}

func TestNewSilencesLogger(t *testing.T) {
	client := New(DefaultConfig(), nil)
	if client.Logger != nil {
		t.Errorf("expected nil logger, got %T", client.Logger)
	}
	if client.RetryMax != defaultRetryMax {
		t.Errorf("RetryMax = %d, want %d", client.RetryMax, defaultRetryMax)
	}
}
