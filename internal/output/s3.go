// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidS3URL is returned for s3:// targets without a bucket or key.
var ErrInvalidS3URL = errors.New("invalid s3 url")

// PutObjectAPI is the subset of the S3 client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds connection settings for the S3 sink.
type S3Config struct {
	// Region is the AWS region of the bucket.
	Region string
	// Endpoint is an optional custom endpoint (MinIO, LocalStack).
	Endpoint string
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
}

// NewS3Client creates an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// S3Sink uploads documents as S3 objects.
type S3Sink struct {
	Client      PutObjectAPI
	Bucket      string
	Key         string
	ContentType string
}

// Write implements Sink.
func (s *S3Sink) Write(ctx context.Context, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
		Body:   bytes.NewReader(data),
	}
	if s.ContentType != "" {
		input.ContentType = aws.String(s.ContentType)
	}
	if _, err := s.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return nil
}

func (s *S3Sink) String() string { return "s3://" + s.Bucket + "/" + s.Key }

// IsS3URL reports whether target uses the s3 scheme.
func IsS3URL(target string) bool {
	return strings.HasPrefix(target, "s3://")
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(target string) (bucket, key string, err error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidS3URL, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: scheme must be s3, got %q", ErrInvalidS3URL, u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %s needs a bucket and an object key", ErrInvalidS3URL, target)
	}
	return u.Host, key, nil
}
