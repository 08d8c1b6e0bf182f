// Package blob stores uploaded photos and signatures and hands back a public URL.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/buildsafe/safety-backend/internal/config"
)

type Driver string

const (
	DriverMemory Driver = "memory"
	DriverS3     Driver = "s3"
)

// Store is the blob collaborator: upload(name, bytes) -> publicUrl.
type Store interface {
	Driver() Driver
	Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

// Open selects a Store implementation from the blob configuration.
func Open(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case "", DriverMemory:
		return NewMemory(cfg.PublicBaseURL), nil
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds "<uuid>/<sanitized name>" so uploads never collide.
func ObjectKey(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "upload"
	}
	return uuid.NewString() + "/" + base
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
