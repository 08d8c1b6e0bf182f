package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds construction parameters for the S3 store.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, e.g. MinIO
	PathStyle       bool
	AccessKeyID     string // optional, falls back to the default credential chain
	SecretAccessKey string
	PublicBaseURL   string // optional, e.g. a CDN in front of the bucket

	httpClient aws.HTTPClient
}

// S3 stores uploads in a single S3-compatible bucket.
type S3 struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.httpClient != nil {
			o.HTTPClient = cfg.httpClient
		}
	})

	return &S3{client: client, bucket: cfg.Bucket, baseURL: publicBase(cfg)}, nil
}

// publicBase picks the URL prefix uploads are served from.
func publicBase(cfg S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "" && cfg.PathStyle:
		return joinURL(cfg.Endpoint, cfg.Bucket)
	case cfg.Endpoint != "":
		return cfg.Endpoint
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func (s *S3) Driver() Driver { return DriverS3 }

func (s *S3) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	// Uploads are single photos or signatures; buffering gives the SDK a
	// seekable body with a known length.
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := ObjectKey(name)
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: bytes.NewReader(body)}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		log.Printf("Error uploading %s to bucket %s: %v", key, s.bucket, err)
		return "", err
	}
	return joinURL(s.baseURL, key), nil
}
