package database

import (
	"context"
	"fmt"
	"io"
	"time"

	"renderbox/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOClientRepo 物件儲存操作
type MinIOClientRepo interface {
	PutObject(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
}

type minIOClient struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOConnection create a new minio connection have retry
func NewMinIOConnection(ctx context.Context, d MinIOConnection) (MinIOClientRepo, error) {
	var (
		mc  MinIOClientRepo
		err error
	)

	attempts := d.RetryCount
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		mc, err = newMinioClient(ctx, d)
		if err == nil {
			logger.Log.Info("minIO connected", zap.String("endpoint", d.Endpoint), zap.Int("attempt", i))
			return mc, nil
		}

		logger.Log.Warn("minIO connect failed, retrying...",
			zap.String("endpoint", d.Endpoint),
			zap.Int("attempt", i),
			zap.Error(err),
		)
		if i < attempts {
			time.Sleep(d.RetryInterval * time.Second)
		}
	}

	return nil, err
}

func newMinioClient(ctx context.Context, d MinIOConnection) (*minIOClient, error) {
	client, err := minio.New(d.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(d.User, d.Password, ""),
		Secure: d.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 失敗: %w", err)
	}

	exists, err := client.BucketExists(ctx, d.BucketName)
	if err != nil {
		return nil, fmt.Errorf("檢查 bucket [%s] 失敗: %w", d.BucketName, err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, d.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("建立 bucket [%s] 失敗: %w", d.BucketName, err)
		}
		logger.Log.Info("bucket created", zap.String("bucket", d.BucketName))
	}

	return &minIOClient{client: client, bucketName: d.BucketName}, nil
}

func (m *minIOClient) PutObject(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucketName, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}
