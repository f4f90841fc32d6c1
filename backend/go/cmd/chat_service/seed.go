package main

import (
	"context"
	"fmt"
	"time"

	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/internal/database/minio"
	"Concierge/backend/go/internal/knowledge/loaders"
	"Concierge/backend/go/internal/models"
	chathttp "Concierge/backend/go/pkg/http"
	"Concierge/backend/go/pkg/logger"
)

type indexer interface {
	Run(ctx context.Context, docs []models.SourceDocument) (int, error)
}

// seedOrWarn 执行启动导入，失败时只记录错误，服务继续以现有知识库运行。
func seedOrWarn(ctx context.Context, cfg *config.AppConfig, idx indexer, log *logger.Logger) bool {
	if err := seedKnowledge(ctx, cfg, idx, log); err != nil {
		log.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to seed knowledge base, serving without it")
		return false
	}
	return true
}

// seedKnowledge 在启动时导入配置中的本地路径、网页和 MinIO 对象。
// 单个网页抓取失败只记录日志，本地路径与对象存储失败会中止本次导入。
func seedKnowledge(ctx context.Context, cfg *config.AppConfig, idx indexer, log *logger.Logger) error {
	k := cfg.Knowledge
	var docs []models.SourceDocument

	files := loaders.NewFileLoader()
	for _, path := range k.SeedPaths {
		d, err := files.Load(ctx, path)
		if err != nil {
			return err
		}
		docs = append(docs, d...)
	}

	if len(k.SeedURLs) > 0 {
		client, err := chathttp.NewClient(cfg.Middleware.CircuitBreaker, 30*time.Second)
		if err != nil {
			return err
		}
		web := loaders.NewWebLoader(client)
		for _, url := range k.SeedURLs {
			d, err := web.Load(ctx, url)
			if err != nil {
				log.WithError(models.ErrorInfo{Message: err.Error()}).WithField("url", url).Warn("Skipping seed URL")
				continue
			}
			docs = append(docs, d...)
		}
	}

	if k.SeedPrefix != "" {
		mc, err := minio.GetClient(ctx, &cfg.Databases.MinIO)
		if err != nil {
			return err
		}
		d, err := loaders.NewObjectLoader(mc, cfg.Databases.MinIO.Bucket).Load(ctx, k.SeedPrefix)
		if err != nil {
			return err
		}
		docs = append(docs, d...)
	}

	if len(docs) == 0 {
		return nil
	}
	n, err := idx.Run(ctx, docs)
	if err != nil {
		return fmt.Errorf("indexing %d documents: %w", len(docs), err)
	}
	log.Info(fmt.Sprintf("Seeded %d chunks from %d documents", n, len(docs)))
	return nil
}
