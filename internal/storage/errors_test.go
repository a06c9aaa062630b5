package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, KindNotFound},
		{"no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, KindNotFound},
		{"not found", &smithy.GenericAPIError{Code: "NotFound"}, KindNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, KindAccessDenied},
		{"bad credentials", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}, KindAccessDenied},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, KindQuota},
		{"internal error", &smithy.GenericAPIError{Code: "InternalError"}, KindTransient},
		{"service unavailable", &smithy.GenericAPIError{Code: "ServiceUnavailable"}, KindTransient},
		{"server fault fallback", &smithy.GenericAPIError{Code: "SomethingNew", Fault: smithy.FaultServer}, KindTransient},
		{"deadline exceeded", context.DeadlineExceeded, KindTransient},
		{"wrapped deadline", fmt.Errorf("page: %w", context.DeadlineExceeded), KindTransient},
		{"plain error", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorRetryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindTransient, true},
		{KindQuota, true},
		{KindNotFound, false},
		{KindAccessDenied, false},
		{KindUnknown, false},
	}

	for _, tt := range tests {
		e := &Error{Op: "get", Bucket: "b", Key: "k", Kind: tt.kind, Err: errors.New("x")}
		if got := e.Retryable(); got != tt.want {
			t.Errorf("Retryable() with kind %v = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "NoSuchKey"}
	wrapped := wrapErr("get", "photos", "a.jpg", cause)

	var apiErr smithy.APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("wrapped error does not unwrap to smithy.APIError")
	}
	if wrapped.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", wrapped.Kind, KindNotFound)
	}
}
