package milvus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/pkg/logger"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient 包含了 Milvus 客户端实例和相关配置。
type MilvusClient struct {
	Client client.Client        // Milvus 客户端实例。
	Config *config.MilvusConfig // Milvus 配置。
	log    *logger.Logger

	mu              sync.Mutex
	cancelAutoFlush context.CancelFunc
	flushDone       chan struct{}
}

// GetClient 使用单例模式创建并返回一个 Milvus 客户端实例。
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("无法连接到 Milvus: %w", err)
			return
		}
		instance = New(c, cfg)
		instance.log.Info("成功连接到 Milvus")
	})
	return instance, initErr
}

// New 包装一个已建立的客户端，主要供测试和自定义连接使用。
func New(c client.Client, cfg *config.MilvusConfig) *MilvusClient {
	return &MilvusClient{
		Client: c,
		Config: cfg,
		log:    logger.New("milvus", "", "").WithField("collection", cfg.Schema.CollectionName),
	}
}

// Close 停止自动刷新并关闭与 Milvus 的连接。
func (c *MilvusClient) Close() {
	if c.Client == nil {
		return
	}
	c.StopAutoFlush(context.Background())
	c.Client.Close()
	c.log.Info("已关闭 Milvus 连接")
}

// HealthCheck 检查 Milvus 连接的健康状况。
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("Milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}

// FlushCollection 手动触发一次刷新操作，将内存中的数据写入磁盘。
func (c *MilvusClient) FlushCollection(ctx context.Context) error {
	collName := c.Config.Schema.CollectionName
	if err := c.Client.Flush(ctx, collName, false); err != nil {
		return fmt.Errorf("刷新集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// StartAutoFlush 启动后台自动刷新任务。重复调用不会启动第二个任务。
func (c *MilvusClient) StartAutoFlush(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelAutoFlush != nil || interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelAutoFlush = cancel
	c.flushDone = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		c.log.WithField("interval", interval.String()).Info("已启动自动刷新任务")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := c.FlushCollection(flushCtx); err != nil {
					c.log.WithError(errorInfo(err)).Error("自动刷新失败")
				}
				flushCancel()
			}
		}
	}(c.flushDone)
}

// StopAutoFlush 停止后台自动刷新任务，并执行最后一次刷新以确保数据一致性。
func (c *MilvusClient) StopAutoFlush(ctx context.Context) {
	c.mu.Lock()
	cancel, done := c.cancelAutoFlush, c.flushDone
	c.cancelAutoFlush, c.flushDone = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	if err := c.FlushCollection(ctx); err != nil {
		c.log.WithError(errorInfo(err)).Error("停止自动刷新时最终刷新失败")
	}
}

// EnsureCollection 确保 Milvus 集合存在并已加载。集合不存在时按配置（或内置记录 Schema）创建。
func (c *MilvusClient) EnsureCollection(ctx context.Context, dim int) error {
	collName := c.Config.Schema.CollectionName
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("检查集合是否存在时出错: %w", err)
	}
	if !exists {
		fields := c.Config.Schema.Fields
		if len(fields) == 0 {
			fields = RecordFields(c.Config.Schema.VectorField, dim)
		}
		schema := entity.NewSchema().
			WithName(collName).
			WithDescription(c.Config.Schema.Description)
		for _, fieldCfg := range fields {
			field, err := buildField(fieldCfg)
			if err != nil {
				return err
			}
			schema = schema.WithField(field)
		}

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("创建集合失败: %w", err)
		}
		idx, err := c.buildIndexFromConfig()
		if err != nil {
			return err
		}
		if err := c.Client.CreateIndex(ctx, collName, c.Config.Schema.Index.FieldName, idx, false); err != nil {
			return fmt.Errorf("为字段 '%s' 创建索引失败: %w", c.Config.Schema.Index.FieldName, err)
		}
		c.log.Info("已创建集合")
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("加载 Milvus 集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// RecordFields 返回知识、对话、画像三类记录共用的集合字段。
func RecordFields(vectorField string, dim int) []config.FieldConfig {
	varchar := func(name string, max int) config.FieldConfig {
		return config.FieldConfig{Name: name, DataType: "VarChar", MaxLength: max}
	}
	boolean := func(name string) config.FieldConfig {
		return config.FieldConfig{Name: name, DataType: "Bool"}
	}
	return []config.FieldConfig{
		{Name: "id", DataType: "VarChar", IsPrimaryKey: true, MaxLength: 512},
		{Name: vectorField, DataType: "FloatVector", Dim: dim},
		varchar("content", 65535),
		varchar("role", 32),
		varchar("sessionId", 256),
		varchar("type", 32),
		varchar("profileKey", 128),
		varchar("profileValue", 1024),
		varchar("source", 512),
		boolean("hasPortfolio"),
		boolean("hasProcess"),
		boolean("hasPricing"),
		boolean("hasServices"),
		{Name: "timestamp", DataType: "Int64"},
	}
}

func buildField(fieldCfg config.FieldConfig) (*entity.Field, error) {
	field := entity.NewField().WithName(fieldCfg.Name)
	if fieldCfg.IsPrimaryKey {
		field = field.WithIsPrimaryKey(true)
	}
	if fieldCfg.IsAutoID {
		field = field.WithIsAutoID(true)
	}

	switch fieldCfg.DataType {
	case "Int64":
		field = field.WithDataType(entity.FieldTypeInt64)
	case "VarChar":
		field = field.WithDataType(entity.FieldTypeVarChar).WithMaxLength(int64(fieldCfg.MaxLength))
	case "FloatVector":
		field = field.WithDataType(entity.FieldTypeFloatVector).WithDim(int64(fieldCfg.Dim))
	case "Float":
		field = field.WithDataType(entity.FieldTypeFloat)
	case "Double":
		field = field.WithDataType(entity.FieldTypeDouble)
	case "Bool":
		field = field.WithDataType(entity.FieldTypeBool)
	default:
		return nil, fmt.Errorf("不支持的数据类型: %s", fieldCfg.DataType)
	}
	return field, nil
}

// buildIndexFromConfig 从配置构建索引实体。
func (c *MilvusClient) buildIndexFromConfig() (entity.Index, error) {
	indexCfg := c.Config.Schema.Index
	metricType := entity.MetricType(indexCfg.MetricType)

	switch indexCfg.IndexType {
	case "IVF_FLAT":
		return entity.NewIndexIvfFlat(metricType, intParam(indexCfg.Params, "nlist", 128))
	case "HNSW":
		return entity.NewIndexHNSW(metricType,
			intParam(indexCfg.Params, "M", 8),
			intParam(indexCfg.Params, "efConstruction", 96))
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("不支持的索引类型: %s", indexCfg.IndexType)
	}
}

// SearchParam 返回与索引类型匹配的搜索参数。
func (c *MilvusClient) SearchParam() (entity.SearchParam, error) {
	params := c.Config.Schema.Index.Params
	switch c.Config.Schema.Index.IndexType {
	case "IVF_FLAT":
		return entity.NewIndexIvfFlatSearchParam(intParam(params, "nprobe", 10))
	case "HNSW":
		return entity.NewIndexHNSWSearchParam(intParam(params, "ef", 64))
	default:
		return entity.NewIndexAUTOINDEXSearchParam(1)
	}
}

// intParam 读取 YAML 中的整数参数，yaml.v3 解码到 interface{} 时整数为 int。
func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key].(int); ok {
		return v
	}
	return def
}

func errorInfo(err error) models.ErrorInfo {
	return models.ErrorInfo{Message: err.Error(), Type: "milvus_error"}
}
