// Package audio hands out URLs for the reference and accompaniment
// recordings kept in an S3-compatible bucket.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jsphweid/practice/constants"
)

var ErrNoKey = errors.New("recording key required")

type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional, e.g. MinIO
	AccessKeyID     string // optional, falls back to the default credentials chain
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
	Expiry          time.Duration
}

type Presigner struct {
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

func New(ctx context.Context, cfg Config) (*Presigner, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("audio bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Presigner{presign: s3.NewPresignClient(client), bucket: cfg.Bucket, expiry: expiry}, nil
}

// NewFromEnv returns nil without error when AUDIO_BUCKET is unset.
func NewFromEnv(ctx context.Context) (*Presigner, error) {
	if constants.GetAudioBucket() == "" {
		return nil, nil
	}
	return New(ctx, Config{
		Region:    constants.GetAwsRegion(),
		Bucket:    constants.GetAudioBucket(),
		Endpoint:  constants.GetAudioEndpoint(),
		PathStyle: constants.GetAudioPathStyle(),
		Expiry:    constants.GetAudioURLExpiry(),
	})
}

// URL returns a time-limited GET URL for the recording stored under key.
func (p *Presigner) URL(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", ErrNoKey
	}
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("presign %v: %w", key, err)
	}
	return req.URL, nil
}
