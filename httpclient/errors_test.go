package httpclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTimeout, "timeout"},
		{ErrCodeConnection, "connection"},
		{ErrCodeNotFound, "not_found"},
		{ErrCodeRateLimit, "rate_limit"},
		{ErrCodeClient, "client"},
		{ErrCodeServer, "server"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("expected %q for code %d, got %q", tt.want, tt.code, got)
		}
	}
}

func TestError_Error(t *testing.T) {
	e := &Error{StatusCode: 404, Code: ErrCodeNotFound, Message: "Not Found"}
	if got, want := e.Error(), "httpclient: not_found (HTTP 404): Not Found"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	e = &Error{Code: ErrCodeConnection, Message: "connection refused"}
	if got, want := e.Error(), "httpclient: connection: connection refused"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{400, ErrCodeClient, false},
		{403, ErrCodeClient, false},
		{404, ErrCodeNotFound, false},
		{429, ErrCodeRateLimit, true},
		{500, ErrCodeServer, true},
		{503, ErrCodeServer, true},
		{302, ErrCodeServer, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyStatusCode(tt.status, []byte("body"))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, err.Retryable)
			}
			if string(err.Body) != "body" {
				t.Errorf("expected body to be kept, got %q", err.Body)
			}
		})
	}

	for _, status := range []int{200, 201, 204} {
		if err := ClassifyStatusCode(status, nil); err != nil {
			t.Errorf("expected nil for %d, got %v", status, err)
		}
	}
}

func TestPredicates(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	wrapped := fmt.Errorf("remote printer: %w", NewConnectionError(cause))

	if !IsRetryable(wrapped) {
		t.Error("expected wrapped connection error to be retryable")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected the cause to be reachable through Unwrap")
	}
	if IsTimeout(wrapped) {
		t.Error("expected connection error not to be a timeout")
	}
	if !IsTimeout(NewTimeoutError(cause)) {
		t.Error("expected timeout error to be a timeout")
	}
	if !IsNotFound(ClassifyStatusCode(404, nil)) {
		t.Error("expected 404 to be not found")
	}
	if IsRetryable(cause) {
		t.Error("expected plain errors not to be retryable")
	}
}
