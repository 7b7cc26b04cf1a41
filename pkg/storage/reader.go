package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Reader fetches objects as text.
type Reader interface {
	ReadText(ctx context.Context, loc Location) (string, error)
}

// Storage backend types.
const (
	TypeS3    = "s3"
	TypeLocal = "local"
)

// New creates the reader selected by cfg.Type. An empty type means S3.
func New(ctx context.Context, cfg core.StorageConfig, logger *slog.Logger) (Reader, error) {
	switch cfg.Type {
	case TypeS3, "":
		return NewS3Reader(ctx, S3Config{
			Region:         cfg.Region,
			Endpoint:       cfg.Endpoint,
			AccessKeyID:    cfg.AccessKeyID,
			SecretKey:      cfg.SecretKey,
			ForcePathStyle: cfg.ForcePathStyle,
		}, WithLogger(logger))
	case TypeLocal:
		return NewLocalReader(cfg.Root)
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q (available: %s, %s)", ErrInvalidConfig, cfg.Type, TypeS3, TypeLocal)
	}
}
