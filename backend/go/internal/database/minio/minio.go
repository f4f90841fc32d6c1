package minio

import (
	"context"
	"fmt"
	"sync"

	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	client  *minio.Client
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化并返回一个 MinIO 客户端实例。
// 初始化时会确认知识库存储桶存在。
func GetClient(ctx context.Context, cfg *config.MinIOConfig) (*minio.Client, error) {
	once.Do(func() {
		c, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.Secure,
		})
		if err != nil {
			initErr = fmt.Errorf("无法创建 MinIO 客户端: %w", err)
			return
		}

		if cfg.Bucket != "" {
			ok, err := c.BucketExists(ctx, cfg.Bucket)
			if err != nil {
				initErr = fmt.Errorf("MinIO 初始化健康检查失败: %w", err)
				return
			}
			if !ok {
				initErr = fmt.Errorf("MinIO 存储桶 '%s' 不存在", cfg.Bucket)
				return
			}
		}

		logger.New("minio", "", "").WithField("endpoint", cfg.Endpoint).Info("成功连接到 MinIO")
		client = c
	})
	return client, initErr
}

// HealthCheck 检查 MinIO 连接的健康状况。
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("MinIO 客户端未初始化")
	}
	if _, err := client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("MinIO 健康检查失败: %w", err)
	}
	return nil
}
