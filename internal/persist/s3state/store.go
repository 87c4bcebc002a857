// Package s3state keeps the snapshot as a single object in an S3-compatible
// bucket (AWS S3 or MinIO).
package s3state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jocilejr/whatsbot/internal/model"
	"github.com/jocilejr/whatsbot/internal/persist"
)

const (
	defaultRegion = "us-east-1"
	defaultKey    = "whatsbot/state.json"
)

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, e.g. MinIO
	Key             string
	PathStyle       bool
	AccessKeyID     string // optional, falls back to the default credentials chain
	SecretAccessKey string
	HTTPClient      *http.Client // optional, used by tests
}

type Store struct {
	client *s3.Client
	bucket string
	key    string
	logger *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	key := cfg.Key
	if key == "" {
		key = defaultKey
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		key:    key,
		logger: logger.With("component", "persist", "backend", "s3"),
	}, nil
}

func (s *Store) Name() string { return "s3" }

func (s *Store) Load(ctx context.Context) model.Snapshot {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn("state object unreadable, starting empty", "bucket", s.bucket, "key", s.key, "error", err)
		}
		return model.EmptySnapshot()
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		s.logger.Warn("state object read failed, starting empty", "key", s.key, "error", err)
		return model.EmptySnapshot()
	}
	snap, err := persist.Decode(data)
	if err != nil {
		if !errors.Is(err, persist.ErrEmpty) {
			s.logger.Warn("state object corrupt, starting empty", "key", s.key, "error", err)
		}
		return model.EmptySnapshot()
	}
	return snap
}

func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := persist.Encode(snap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

func isNotFound(err error) bool {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode() == http.StatusNotFound
	}
	return false
}
