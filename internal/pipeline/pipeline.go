// Package pipeline orchestrates thumbnail generation for storage upload
// notifications: classify the key, fetch the source bytes, transcode, derive
// the destination key, store the derivative.
//
// Batch items are independent. One item's failure never aborts its siblings,
// and results always come back in input order.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/photoshare-app/photoshare/internal/imaging"
	"github.com/photoshare-app/photoshare/internal/naming"
	"github.com/photoshare-app/photoshare/internal/storage"
)

// DefaultParallelism bounds concurrent item processing within a batch.
// S3 event batches are small; four in-flight downloads saturate the Lambda
// network allocation without ballooning memory.
const DefaultParallelism = 4

// ObjectStore is the pipeline's view of the object store.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) (*storage.Object, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error
}

// Options configures a Pipeline.
type Options struct {
	DestinationBucket string
	Spec              imaging.Spec
	Parallelism       int
}

// Pipeline generates thumbnails for notification batches. Stateless apart
// from configuration; safe for concurrent use.
type Pipeline struct {
	store       ObjectStore
	mapper      *naming.Mapper
	destBucket  string
	spec        imaging.Spec
	parallelism int
}

// New builds a Pipeline.
func New(store ObjectStore, mapper *naming.Mapper, opts Options) *Pipeline {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Pipeline{
		store:       store,
		mapper:      mapper,
		destBucket:  opts.DestinationBucket,
		spec:        opts.Spec,
		parallelism: parallelism,
	}
}

// Process handles a notification batch and returns one result per
// notification, in input order. Items run concurrently up to the configured
// parallelism; failures are captured in the result, never propagated as an
// error from this call.
func (p *Pipeline) Process(ctx context.Context, batch []Notification) []Result {
	results := make([]Result, len(batch))

	g := new(errgroup.Group)
	g.SetLimit(p.parallelism)
	for i, n := range batch {
		i, n := i, n
		g.Go(func() error {
			results[i] = p.processOne(ctx, n)
			return nil
		})
	}
	g.Wait()

	return results
}

func (p *Pipeline) processOne(ctx context.Context, n Notification) Result {
	logger := log.With().Str("bucket", n.Bucket).Str("key", n.Key).Logger()

	if n.Key == "" || strings.HasSuffix(n.Key, "/") {
		logger.Debug().Msg("Skipping: not an object")
		return Result{Key: n.Key, Outcome: OutcomeSkipped, Reason: "not an object"}
	}

	switch p.mapper.Classify(n.Key) {
	case naming.AlreadyDerivative:
		logger.Debug().Msg("Skipping: already a thumbnail")
		return Result{Key: n.Key, Outcome: OutcomeSkipped, Reason: "already a thumbnail"}
	case naming.Unsupported:
		logger.Debug().Msg("Skipping: unsupported file type")
		return Result{Key: n.Key, Outcome: OutcomeSkipped, Reason: "unsupported file type"}
	}

	obj, err := p.store.Get(ctx, n.Bucket, n.Key)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch source object")
		return Result{Key: n.Key, Outcome: OutcomeFailed, Err: err}
	}

	derivative, err := imaging.Transcode(obj.Bytes, p.spec)
	if err != nil {
		// Corrupt or unsupported content. Not retried: the bytes will not
		// get better, so the batch just moves on.
		logger.Error().Err(err).Msg("Failed to transcode image")
		return Result{Key: n.Key, Outcome: OutcomeFailed, Err: err}
	}

	destKey := p.mapper.DeriveKey(n.Key)
	metadata := captureMetadata(obj.Bytes, logger)

	if err := p.store.Put(ctx, p.destBucket, destKey, derivative.Bytes, derivative.ContentType, metadata); err != nil {
		logger.Error().Err(err).Str("thumbKey", destKey).Msg("Failed to store thumbnail")
		return Result{Key: n.Key, Outcome: OutcomeFailed, Err: err}
	}

	logger.Info().
		Str("thumbKey", destKey).
		Str("contentType", derivative.ContentType).
		Int("thumbWidth", derivative.Width).
		Int("thumbHeight", derivative.Height).
		Int("thumbSize", len(derivative.Bytes)).
		Msg("Thumbnail created")

	return Result{Key: n.Key, Outcome: OutcomeCreated, DerivativeKey: destKey}
}

// captureMetadata reads EXIF capture info from the source bytes,
// best-effort. Most PNG and GIF uploads carry none; that is not an error.
func captureMetadata(raw []byte, logger zerolog.Logger) map[string]string {
	info, err := imaging.ReadCaptureInfo(raw)
	if err != nil {
		logger.Debug().Err(err).Msg("No EXIF metadata extracted")
		return nil
	}
	return info.Metadata()
}

// RetryableFailure reports whether any result failed with a store error the
// triggering transport should redeliver. The write-path handler rethrows in
// that case so the async invoke retry and DLQ machinery engages; swallowing
// it would silently drop the upload.
func RetryableFailure(results []Result) bool {
	for _, r := range results {
		if r.Outcome != OutcomeFailed {
			continue
		}
		var serr *storage.Error
		if errors.As(r.Err, &serr) && serr.Retryable() {
			return true
		}
	}
	return false
}
