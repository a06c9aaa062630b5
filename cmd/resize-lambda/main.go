// Package main provides the Lambda entry point for thumbnail generation.
//
// Triggered by S3 ObjectCreated events on the photo upload bucket. Direct
// invocations with {"bucket": "...", "key": "..."} are also accepted for
// manual backfills. Each notification in the batch is processed
// independently: the classifier gate drops derivatives and non-images, the
// transcoder produces a format-preserving resized copy, and the result is
// stored under the derived thumbnail key in the destination bucket.
//
// Error contract: per-item decode/encode failures are logged and reported in
// the 200 summary body; retrying corrupt bytes cannot help. Transient store
// failures instead make the handler return a non-nil error after logging, so
// the S3 async-invoke retry and DLQ machinery redelivers the event.
//
// Memory: 512 MB
// Timeout: 1 minute
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/photoshare-app/photoshare/internal/config"
	"github.com/photoshare-app/photoshare/internal/lambdaboot"
	"github.com/photoshare-app/photoshare/internal/logging"
	"github.com/photoshare-app/photoshare/internal/metrics"
	"github.com/photoshare-app/photoshare/internal/pipeline"
	"github.com/photoshare-app/photoshare/internal/storage"
)

var coldStart = true

// Initialized at cold start.
var (
	cfg  config.Config
	pipe *pipeline.Pipeline
)

func init() {
	initStart := time.Now()
	logging.Init()

	cfg = config.FromEnv()
	awsCfg := lambdaboot.InitAWS()
	store := storage.NewClient(lambdaboot.InitS3(awsCfg), cfg.CallTimeout)

	pipe = pipeline.New(store, cfg.Mapper(), pipeline.Options{
		DestinationBucket: cfg.DestinationBucket,
		Spec:              cfg.Spec(),
		Parallelism:       cfg.Parallelism,
	})

	lambdaboot.StartupLog("resize-lambda", initStart).
		S3Bucket("source", cfg.SourceBucket).
		S3Bucket("destination", cfg.DestinationBucket).
		Config("thumbnailPrefix", cfg.ThumbnailPrefix).
		Config("thumbnailBounds", fmt.Sprintf("%dx%d", cfg.ThumbnailWidth, cfg.ThumbnailHeight)).
		Config("parallelism", fmt.Sprintf("%d", cfg.Parallelism)).
		Log()
}

func main() {
	lambda.Start(handler)
}

// Response mirrors the API-style envelope callers of direct invocations
// expect: a status code and a JSON body with a message.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func respond(status int, message string) Response {
	body, _ := json.Marshal(map[string]string{"message": message})
	return Response{StatusCode: status, Body: string(body)}
}

func handler(ctx context.Context, payload json.RawMessage) (Response, error) {
	batchStart := time.Now()
	if coldStart {
		coldStart = false
		log.Info().Str("function", "resize-lambda").Msg("Cold start, first invocation")
	}

	batchID := uuid.NewString()
	logger := log.With().Str("batchId", batchID).Logger()

	batch, err := pipeline.ParseTrigger(payload, cfg.SourceBucket)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoKey) {
			logger.Warn().Msg("Trigger payload contained no object key")
			return respond(400, "no image key specified"), nil
		}
		logger.Error().Err(err).Msg("Unparseable trigger payload")
		return respond(400, "malformed trigger payload"), nil
	}
	if len(batch) == 0 {
		logger.Info().Msg("No storage records in payload")
		return respond(200, "no storage events to process"), nil
	}

	logger.Info().Int("notifications", len(batch)).Msg("Processing upload batch")

	results := pipe.Process(ctx, batch)
	created, skipped, failed := pipeline.Summarize(results)

	metrics.New("PhotoShare/Thumbnails").
		Dimension("Path", "write").
		Metric("Created", float64(created), metrics.UnitCount).
		Metric("Skipped", float64(skipped), metrics.UnitCount).
		Metric("Failed", float64(failed), metrics.UnitCount).
		Duration("BatchDuration", time.Since(batchStart)).
		Property("batchId", batchID).
		Flush()

	logger.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("duration", time.Since(batchStart)).
		Msg("Batch complete")

	if pipeline.RetryableFailure(results) {
		// A non-nil error triggers the async invoke retry path.
		err := fmt.Errorf("transient store failure in batch %s", batchID)
		return respond(500, err.Error()), err
	}

	summary := fmt.Sprintf("processed %d notifications: %d created, %d skipped, %d failed",
		len(batch), created, skipped, failed)
	return respond(200, summary), nil
}
