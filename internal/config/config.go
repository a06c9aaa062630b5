// Package config loads pipeline configuration from the environment.
//
// Every knob has a default; a missing or malformed override logs a warning
// and falls back rather than failing startup. Components receive this struct
// (or values derived from it) explicitly; nothing reads the environment
// after init.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/photoshare-app/photoshare/internal/imaging"
	"github.com/photoshare-app/photoshare/internal/naming"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultSourceBucket      = "photo-sharing-app-bucket"
	DefaultDestinationBucket = "photo-sharing-thumbnails"
	DefaultThumbnailWidth    = 300
	DefaultThumbnailHeight   = 300
	DefaultRegion            = "eu-west-1"
	DefaultCallTimeout       = 30 * time.Second
	DefaultParallelism       = 4
)

// Config is the process-lifetime configuration for both Lambda entry points.
type Config struct {
	SourceBucket      string
	DestinationBucket string
	ThumbnailWidth    int
	ThumbnailHeight   int
	ThumbnailPrefix   string
	DerivativeRoot    string
	Region            string
	CallTimeout       time.Duration
	Parallelism       int
}

// FromEnv reads configuration from the environment, applying defaults for
// anything unset. Never fails.
func FromEnv() Config {
	return Config{
		SourceBucket:      stringEnv("SOURCE_BUCKET", DefaultSourceBucket),
		DestinationBucket: stringEnv("DESTINATION_BUCKET", DefaultDestinationBucket),
		ThumbnailWidth:    intEnv("THUMBNAIL_WIDTH", DefaultThumbnailWidth),
		ThumbnailHeight:   intEnv("THUMBNAIL_HEIGHT", DefaultThumbnailHeight),
		ThumbnailPrefix:   stringEnv("THUMBNAIL_PREFIX", naming.DefaultPrefix),
		DerivativeRoot:    stringEnv("THUMBNAIL_ROOT", ""),
		Region:            stringEnv("AWS_REGION", DefaultRegion),
		CallTimeout:       secondsEnv("S3_TIMEOUT_SECONDS", DefaultCallTimeout),
		Parallelism:       intEnv("PIPELINE_PARALLELISM", DefaultParallelism),
	}
}

// Spec returns the thumbnail bounds for the transcoder.
func (c Config) Spec() imaging.Spec {
	return imaging.Spec{MaxWidth: c.ThumbnailWidth, MaxHeight: c.ThumbnailHeight}
}

// Mapper returns the key classifier/mapper for this configuration.
func (c Config) Mapper() *naming.Mapper {
	return naming.NewMapper(c.ThumbnailPrefix, c.DerivativeRoot)
}

func stringEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func intEnv(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("envVar", name).Str("value", v).Int("fallback", fallback).
			Msg("Invalid integer override, using default")
		return fallback
	}
	return n
}

func secondsEnv(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("envVar", name).Str("value", v).Dur("fallback", fallback).
			Msg("Invalid timeout override, using default")
		return fallback
	}
	return time.Duration(n) * time.Second
}
