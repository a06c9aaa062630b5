package storage

import (
	"context"
	"errors"
	"fmt"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrorKind partitions store failures into the categories the pipeline
// cares about: whether retrying could ever help, and who is at fault.
type ErrorKind int

const (
	// KindUnknown is an unclassified failure, treated as permanent.
	KindUnknown ErrorKind = iota
	// KindNotFound means the object or bucket does not exist.
	KindNotFound
	// KindAccessDenied means the caller lacks permission.
	KindAccessDenied
	// KindTransient means a retry by the transport may succeed.
	KindTransient
	// KindQuota means a service quota or rate limit was exceeded.
	KindQuota
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindAccessDenied:
		return "access-denied"
	case KindTransient:
		return "transient"
	case KindQuota:
		return "quota"
	default:
		return "unknown"
	}
}

// Error wraps an S3 failure with the operation, location, and classified kind.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Kind   ErrorKind
	Err    error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("s3 %s s3://%s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("s3 %s s3://%s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the transport's redelivery mechanism should see
// this failure. Quota errors are rate limits and also clear on retry.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindQuota
}

// wrapErr classifies err and wraps it with operation context.
func wrapErr(op, bucket, key string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Kind: classify(err), Err: err}
}

// classify maps an SDK error to an ErrorKind. Deadline expiry counts as
// transient: the bounded per-call timeout exists so slow calls surface as
// retry-eligible failures instead of hanging the invocation.
func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}

	var noSuchKey *s3types.NoSuchKey
	var noSuchBucket *s3types.NoSuchBucket
	if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return KindNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return KindNotFound
		case "AccessDenied", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return KindAccessDenied
		case "SlowDown", "TooManyRequests", "RequestLimitExceeded":
			return KindQuota
		case "RequestTimeout", "InternalError", "ServiceUnavailable":
			return KindTransient
		}
		if apiErr.ErrorFault() == smithy.FaultServer {
			return KindTransient
		}
	}

	return KindUnknown
}
