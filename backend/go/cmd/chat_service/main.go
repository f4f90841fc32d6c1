package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Concierge/backend/go/internal/analytics"
	"Concierge/backend/go/internal/assistant/api"
	"Concierge/backend/go/internal/assistant/service"
	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/internal/database/kafka"
	"Concierge/backend/go/internal/database/milvus"
	"Concierge/backend/go/internal/database/mongo"
	"Concierge/backend/go/internal/database/redis"
	"Concierge/backend/go/internal/embedding"
	"Concierge/backend/go/internal/knowledge/pipeline"
	"Concierge/backend/go/internal/knowledge/splitter"
	"Concierge/backend/go/internal/leads"
	"Concierge/backend/go/internal/llm"
	memsvc "Concierge/backend/go/internal/memory/service"
	"Concierge/backend/go/internal/memory/store"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/internal/vectorstore"
	chathttp "Concierge/backend/go/pkg/http"
	"Concierge/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "backend/go/internal/config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	serviceLogger := logger.New("ChatService", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var closers []func()
	fatal := func(err error, msg string) {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal(msg)
	}

	// Model providers
	embedder, err := embedding.NewEmdModel(cfg.Embedding)
	if err != nil {
		fatal(err, "Failed to create embedding model")
	}
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		fatal(err, "Failed to create LLM client")
	}
	llmClient = llm.WithTimeout(llmClient, config.Duration(cfg.LLM.Timeout, 0))

	// Vector store
	vectors, closeVectors, err := newVectorStore(ctx, cfg, serviceLogger)
	if err != nil {
		fatal(err, "Failed to create vector store")
	}
	closers = append(closers, closeVectors)

	// Memory
	profiles, err := newProfileStore(ctx, cfg, vectors)
	if err != nil {
		fatal(err, "Failed to create profile store")
	}
	if cfg.Profile.Backend == "redis" {
		closers = append(closers, func() { _ = redis.Close() })
	}
	memory := memsvc.NewMemoryService(store.NewConversationStore(vectors), profiles, embedder, serviceLogger.WithField("component", "memory"))

	// Analytics
	statsOpts := []analytics.Option{analytics.WithLogger(serviceLogger.WithField("component", "analytics"))}
	if cfg.Analytics.Publish {
		kc, err := kafka.GetClient(&cfg.Databases.Kafka)
		if err != nil {
			fatal(err, "Failed to connect to Kafka")
		}
		publisher := kafka.NewEventPublisher(kc, cfg.Analytics.Topic)
		statsOpts = append(statsOpts, analytics.WithPublisher(publisher))
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Kafka publisher")
			}
			_ = kc.Close()
		})
		serviceLogger.Info("Publishing interactions to Kafka topic " + cfg.Analytics.Topic)
	}
	stats := analytics.NewService(statsOpts...)

	// Leads
	var recorder leads.Recorder = leads.Noop{}
	if cfg.Leads.Enabled {
		coll, err := mongo.Collection(&cfg.Databases.MongoDB, cfg.Databases.MongoDB.Collection)
		if err != nil {
			fatal(err, "Failed to connect to MongoDB")
		}
		recorder = leads.NewMongoRecorder(coll)
		closers = append(closers, func() {
			if err := mongo.Close(context.Background()); err != nil {
				serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error disconnecting from MongoDB")
			}
		})
	}

	// Knowledge
	chunker, err := splitter.NewSentenceSplitter(cfg.Knowledge.ChunkSize, cfg.Knowledge.Overlap)
	if err != nil {
		fatal(err, "Invalid chunking configuration")
	}
	indexer := pipeline.NewIndexingPipeline(chunker, embedder, vectors, serviceLogger.WithField("component", "indexing"),
		cfg.Knowledge.BatchSize, cfg.Knowledge.Concurrency)
	retriever := pipeline.NewRetrievalPipeline(embedder, vectors, serviceLogger.WithField("component", "retrieval"),
		cfg.Knowledge.TopK, float32(cfg.Knowledge.MinScore))

	seedOrWarn(ctx, cfg, indexer, serviceLogger)

	// Assistant
	persona, err := service.PersonaByKey(cfg.Assistant.Persona)
	if err != nil {
		fatal(err, "Unknown persona")
	}
	assistant := service.NewAssistantService(llmClient, retriever, memory, stats, recorder, service.Options{
		Persona:           persona,
		Temperature:       cfg.Assistant.Temperature,
		MaxTokens:         cfg.Assistant.MaxTokens,
		HistoryLimit:      cfg.Assistant.HistoryLimit,
		HistoryWindow:     cfg.Assistant.HistoryWindow,
		BackgroundTimeout: config.Duration(cfg.Assistant.BackgroundTimeout, 30*time.Second),
	}, serviceLogger.WithField("component", "assistant"))

	idle := config.Duration(cfg.Analytics.IdleTimeout, 30*time.Minute)
	go stats.RunSweeper(ctx, config.Duration(cfg.Analytics.SweepInterval, time.Minute), idle)

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewAPI(assistant, stats, indexer, serviceLogger.WithField("component", "api")))
	srv, err := chathttp.NewServer(cfg, router, serviceLogger)
	if err != nil {
		fatal(err, "Failed to create HTTP server")
	}

	go func() {
		serviceLogger.Info("Starting HTTP server on " + cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil {
			fatal(err, "HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	serviceLogger.Info("Shutting down server...")

	if err := srv.Shutdown(context.Background()); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Server forced to shutdown")
	}
	cancel()
	assistant.Wait()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	serviceLogger.Info("Server gracefully stopped")
}

// newVectorStore 按配置创建向量库。返回的关闭函数会停止自动刷新并断开连接。
func newVectorStore(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (vectorstore.Store, func(), error) {
	dim := cfg.Embedding.Dimension
	if cfg.VectorStore.Backend == "memory" {
		log.Info(fmt.Sprintf("Using in-memory vector store (dim=%d)", dim))
		return vectorstore.NewMemoryStore(dim), func() {}, nil
	}

	mc, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		return nil, nil, err
	}
	if err := mc.EnsureCollection(ctx, dim); err != nil {
		mc.Close()
		return nil, nil, err
	}
	if interval := config.Duration(cfg.Databases.Milvus.FlushInterval, 0); interval > 0 {
		mc.StartAutoFlush(interval)
	}
	ms, err := vectorstore.NewMilvusStore(mc, dim, log.WithField("component", "milvus"))
	if err != nil {
		mc.Close()
		return nil, nil, err
	}
	closeFn := func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		mc.StopAutoFlush(stopCtx)
		mc.Close()
	}

	if !cfg.VectorStore.CircuitBreaker {
		return ms, closeFn, nil
	}
	breaker, err := chathttp.NewBreaker(cfg.Middleware.CircuitBreaker)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return vectorstore.NewGuarded(ms, breaker), closeFn, nil
}

func newProfileStore(ctx context.Context, cfg *config.AppConfig, vectors vectorstore.Store) (store.ProfileRepository, error) {
	if cfg.Profile.Backend != "redis" {
		return store.NewProfileStore(vectors), nil
	}
	rdb, err := redis.GetClient(ctx, &cfg.Databases.Redis)
	if err != nil {
		return nil, err
	}
	return store.NewRedisProfileStore(rdb, cfg.Databases.Redis.KeyPrefix, config.Duration(cfg.Profile.TTL, 0)), nil
}
