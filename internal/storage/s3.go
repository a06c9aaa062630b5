// Package storage wraps the S3 object operations used by the thumbnail
// pipeline behind a narrow client with typed errors and bounded per-call
// timeouts.
package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// DefaultCallTimeout bounds each individual S3 call.
const DefaultCallTimeout = 30 * time.Second

// S3API is the subset of the S3 client the pipeline needs. Narrowing the
// surface keeps tests to a small in-memory fake.
type S3API interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Object is a fetched S3 object held fully in memory. Thumbnail sources are
// photos, small enough that streaming to disk buys nothing.
type Object struct {
	Bytes       []byte
	ContentType string
}

// ObjectInfo is one listing entry.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client is a thin S3 wrapper. Safe for concurrent use.
type Client struct {
	api     S3API
	timeout time.Duration
}

// NewClient wraps api. A non-positive timeout falls back to DefaultCallTimeout.
func NewClient(api S3API, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Client{api: api, timeout: timeout}
}

// Get fetches an object's bytes and declared content type.
func (c *Client) Get(ctx context.Context, bucket, key string) (*Object, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapErr("get", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, wrapErr("get", bucket, key, err)
	}

	log.Debug().Str("bucket", bucket).Str("key", key).Int("size", len(data)).Msg("Object downloaded")

	return &Object{
		Bytes:       data,
		ContentType: aws.ToString(result.ContentType),
	}, nil
}

// Put stores data at bucket/key with the given content type. The metadata
// map is optional and carries through as S3 object metadata.
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		return wrapErr("put", bucket, key, err)
	}

	log.Debug().Str("bucket", bucket).Str("key", key).Int("size", len(data)).Msg("Object stored")
	return nil
}

// List enumerates every object in bucket, following continuation tokens
// until the listing is exhausted. The per-call timeout applies to each page
// independently.
func (c *Client) List(ctx context.Context, bucket string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := c.nextPage(ctx, paginator)
		if err != nil {
			return nil, wrapErr("list", bucket, "", err)
		}
		for _, item := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(item.Key),
				Size:         aws.ToInt64(item.Size),
				LastModified: aws.ToTime(item.LastModified),
			})
		}
	}

	log.Debug().Str("bucket", bucket).Int("count", len(objects)).Msg("Bucket listed")
	return objects, nil
}

func (c *Client) nextPage(ctx context.Context, paginator *s3.ListObjectsV2Paginator) (*s3.ListObjectsV2Output, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return paginator.NextPage(ctx)
}
