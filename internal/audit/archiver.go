// Package audit persists raw gateway response payloads for later
// audit. Archival is strictly best-effort: it runs outside the
// transactional core and its failures are logged, never returned.
package audit

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Archiver records a raw gateway payload for an order operation.
type Archiver interface {
	// Archive never blocks the caller and never returns an error;
	// failures go to the archiver's own log channel.
	Archive(orderID, operation string, payload []byte)
}

const uploadTimeout = 10 * time.Second

// s3Archiver implements Archiver on top of AWS S3.
type s3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Archiver creates an S3-backed archiver.
func NewS3Archiver(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Archiver, error) {
	logger = logger.With().Str("component", "s3-audit-archiver").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 audit archiver initialised")

	return &s3Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Archive uploads the payload in the background. The upload carries
// its own timeout so a slow S3 endpoint cannot leak goroutines.
func (a *s3Archiver) Archive(orderID, operation string, payload []byte) {
	key := fmt.Sprintf("%sgateway/%s/%s-%d.json",
		a.prefix, orderID, operation, time.Now().UnixNano())

	body := make([]byte, len(payload))
	copy(body, payload)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			a.logger.Error().
				Err(err).
				Str("bucket", a.bucket).
				Str("key", key).
				Msg("failed to archive gateway response")
			return
		}

		a.logger.Debug().
			Str("key", key).
			Int("size", len(body)).
			Msg("gateway response archived")
	}()
}

// nopArchiver discards payloads. Used when archival is disabled and
// in tests.
type nopArchiver struct{}

// NewNopArchiver returns an archiver that discards everything.
func NewNopArchiver() Archiver {
	return nopArchiver{}
}

func (nopArchiver) Archive(string, string, []byte) {}
