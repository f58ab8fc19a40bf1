package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chiringuito/internal/config"
	"chiringuito/internal/logging"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Resolver turns a stored image reference into a URL a browser can load.
type Resolver interface {
	ImageURL(ctx context.Context, ref string) (string, error)
}

// Passthrough returns references unchanged.
type Passthrough struct{}

func (Passthrough) ImageURL(_ context.Context, ref string) (string, error) {
	return ref, nil
}

// MinioResolver presigns object keys in one bucket. Absolute URLs and rooted paths
// are returned as they are.
type MinioResolver struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	logger *zap.Logger
}

func NewMinio(cfg config.MediaConfig, logger *zap.Logger) (*MinioResolver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media bucket required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MinioResolver{client: client, bucket: cfg.Bucket, ttl: ttl, logger: logging.OrNop(logger)}, nil
}

func (m *MinioResolver) ImageURL(ctx context.Context, ref string) (string, error) {
	if ref == "" || isAbsolute(ref) {
		return ref, nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, ref, m.ttl, nil)
	if err != nil {
		m.logger.Error("presign image", zap.String("object", ref), zap.Error(err))
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}
	return u.String(), nil
}

func isAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "/")
}
