package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// ErrNoKey reports a trigger payload carrying no actionable object key.
// The handler maps it to a 400 response.
var ErrNoKey = errors.New("no object key in trigger payload")

// Notification is one upload event, normalized from the trigger payload.
// Key is already URL-decoded.
type Notification struct {
	Bucket    string
	Key       string
	EventName string
}

// directInvocation is the non-event payload shape, kept for manual backfills:
// {"bucket": "...", "key": "..."}.
type directInvocation struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ParseTrigger normalizes a raw Lambda payload into a notification batch.
// S3 event envelopes yield one notification per storage record; records from
// other event sources are dropped. Payloads without a Records array are
// treated as direct invocations, with defaultBucket filling an absent bucket.
//
// S3 delivers object keys percent-encoded with "+" for spaces; both are
// undone here so downstream components only ever see decoded keys.
func ParseTrigger(payload []byte, defaultBucket string) ([]Notification, error) {
	var probe struct {
		Records []json.RawMessage `json:"Records"`
	}
	if err := json.Unmarshal(payload, &probe); err == nil && len(probe.Records) > 0 {
		var event events.S3Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("parse S3 event: %w", err)
		}
		return fromS3Event(event), nil
	}

	var direct directInvocation
	if err := json.Unmarshal(payload, &direct); err != nil {
		return nil, fmt.Errorf("parse trigger payload: %w", err)
	}
	if direct.Key == "" {
		return nil, ErrNoKey
	}
	bucket := direct.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	return []Notification{{Bucket: bucket, Key: direct.Key}}, nil
}

func fromS3Event(event events.S3Event) []Notification {
	var batch []Notification
	for _, record := range event.Records {
		if record.EventSource != "aws:s3" {
			continue
		}
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			// Undecodable keys pass through raw; the classifier and the
			// store will reject them with a concrete error.
			key = record.S3.Object.Key
		}
		batch = append(batch, Notification{
			Bucket:    record.S3.Bucket.Name,
			Key:       key,
			EventName: record.EventName,
		})
	}
	return batch
}
