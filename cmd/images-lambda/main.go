// Package main provides the Lambda entry point for the image listing API.
//
// Served behind an API Gateway HTTP API (payload format 2.0). The proxy
// adapter bridges Gateway events onto a plain net/http mux, so handlers are
// ordinary http.HandlerFunc values testable with httptest.
//
// Routes:
//
//	GET /api/images  - all original images in the upload bucket, with
//	                   public URL, size and last-modified timestamp
//	GET /api/health  - liveness probe
//
// Memory: 256 MB
// Timeout: 29 seconds (API Gateway integration limit)
package main

import (
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/photoshare-app/photoshare/internal/catalog"
	"github.com/photoshare-app/photoshare/internal/config"
	"github.com/photoshare-app/photoshare/internal/lambdaboot"
	"github.com/photoshare-app/photoshare/internal/logging"
	"github.com/photoshare-app/photoshare/internal/metrics"
	"github.com/photoshare-app/photoshare/internal/storage"
)

var coldStart = true

// Initialized at cold start.
var cat *catalog.Catalog

func init() {
	initStart := time.Now()
	logging.Init()

	cfg := config.FromEnv()
	awsCfg := lambdaboot.InitAWS()
	store := storage.NewClient(lambdaboot.InitS3(awsCfg), cfg.CallTimeout)
	cat = catalog.New(store, cfg.Mapper(), cfg.SourceBucket, cfg.Region)

	lambdaboot.StartupLog("images-lambda", initStart).
		S3Bucket("source", cfg.SourceBucket).
		Config("region", cfg.Region).
		Log()
}

func main() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", handleHealth)
	mux.HandleFunc("/api/images", handleImages)

	adapter := httpadapter.NewV2(withCORS(mux))
	lambda.Start(adapter.ProxyWithContext)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/images
// Lists every original image in the source bucket. Thumbnails and non-image
// objects are filtered out by the shared key classifier.
func handleImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	if coldStart {
		coldStart = false
		log.Info().Str("function", "images-lambda").Msg("Cold start, first invocation")
	}

	images, err := cat.ListImages(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list images")
		httpError(w, http.StatusInternalServerError, "failed to list images")
		return
	}

	metrics.New("PhotoShare/Gallery").
		Dimension("Path", "read").
		Metric("ImagesListed", float64(len(images)), metrics.UnitCount).
		Duration("ListDuration", time.Since(start)).
		Flush()

	log.Info().Int("images", len(images)).Dur("duration", time.Since(start)).Msg("Listed images")
	respondJSON(w, http.StatusOK, map[string]any{"images": images})
}
