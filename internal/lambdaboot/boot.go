// Package lambdaboot provides shared Lambda cold-start bootstrap logic.
//
// Both entry points need the same sequence: global logger, AWS config, S3
// client, startup log. Extracting it keeps each Lambda's init() a short
// composition of helpers.
package lambdaboot

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/photoshare-app/photoshare/internal/logging"
)

// InitAWS loads the default AWS config. Fatals on failure: without
// credentials and region resolution nothing downstream can work.
func InitAWS() aws.Config {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return cfg
}

// InitS3 creates an S3 client from the loaded config.
func InitS3(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

// StartupLog is a convenience wrapper for the consolidated cold-start log.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
