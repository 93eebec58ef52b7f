package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

type fetchFunc func(ctx context.Context, bucket, key string) ([]byte, error)

// SettingsLoader reads a YAML settings document from object storage and
// parses it the same way configuration.FileProvider parses local files.
type SettingsLoader struct {
	cfg      Config
	fetch    fetchFunc
	observer observability.Observer
}

// NewSettingsLoader creates the MinIO client. No request is made until Load.
func NewSettingsLoader(cfg Config) (*SettingsLoader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}
	return &SettingsLoader{cfg: cfg, fetch: getObject(client)}, nil
}

// WithObserver attaches an observer for load operations.
func (l *SettingsLoader) WithObserver(observer observability.Observer) *SettingsLoader {
	l.observer = observer
	return l
}

// Load downloads and parses the document.
func (l *SettingsLoader) Load(ctx context.Context) (*configuration.FileProvider, error) {
	start := time.Now()
	data, err := l.fetch(ctx, l.cfg.Bucket, l.cfg.ObjectKey)
	provider, err := l.parse(data, err)
	observeOperation(l.observer, "load", l.cfg.Bucket, l.cfg.ObjectKey, time.Since(start), err, int64(len(data)))
	return provider, err
}

func (l *SettingsLoader) parse(data []byte, fetchErr error) (*configuration.FileProvider, error) {
	if fetchErr != nil {
		return nil, fetchErr
	}
	provider, err := configuration.ParseFileProvider(data)
	if err != nil {
		return nil, fmt.Errorf("minio: %s/%s: %w", l.cfg.Bucket, l.cfg.ObjectKey, err)
	}
	if l.cfg.SectionName != "" {
		if err := provider.SetDefaultSectionName(l.cfg.SectionName); err != nil {
			return nil, err
		}
	}
	return provider, nil
}

func getObject(client *minio.Client) fetchFunc {
	return func(ctx context.Context, bucket, key string) ([]byte, error) {
		obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, translateError(err)
		}
		defer obj.Close()
		data, err := io.ReadAll(obj)
		if err != nil {
			return nil, translateError(err)
		}
		return data, nil
	}
}

func translateError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" || minio.ToErrorResponse(err).Code == "NoSuchBucket" {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}
	return err
}
