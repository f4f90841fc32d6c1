package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FieldConfig 定义了 Milvus 集合中字段的配置。
type FieldConfig struct {
	Name         string `yaml:"name"`                // 字段名称
	DataType     string `yaml:"dataType"`            // 字段数据类型 (例如: "Int64", "VarChar", "FloatVector")
	IsPrimaryKey bool   `yaml:"isPrimaryKey"`        // 是否为主键
	IsAutoID     bool   `yaml:"isAutoID"`            // 是否自动生成ID
	Dim          int    `yaml:"dim,omitempty"`       // 向量维度 (仅适用于向量类型)
	MaxLength    int    `yaml:"maxLength,omitempty"` // 最大长度 (仅适用于VarChar类型)
}

// IndexConfig 定义了 Milvus 集合中索引的配置。
type IndexConfig struct {
	FieldName  string                 `yaml:"fieldName"`  // 要创建索引的字段名称
	IndexType  string                 `yaml:"indexType"`  // 索引类型 (例如: "IVF_FLAT", "HNSW")
	MetricType string                 `yaml:"metricType"` // 相似度度量类型，这里固定使用 "COSINE"
	Params     map[string]interface{} `yaml:"params"`     // 索引参数 (例如: {"nlist": 128})
}

// SchemaConfig 定义了 Milvus 集合的 Schema 配置。
type SchemaConfig struct {
	CollectionName string        `yaml:"collectionName"` // 集合名称
	Description    string        `yaml:"description"`    // 集合描述
	VectorField    string        `yaml:"vectorField"`    // 向量字段名称
	Fields         []FieldConfig `yaml:"fields"`         // 字段配置列表，为空时使用内置的记录 Schema
	Index          IndexConfig   `yaml:"index"`          // 索引配置
}

// MilvusConfig 定义了 Milvus 数据库的连接和 Schema 配置。
type MilvusConfig struct {
	Address       string       `yaml:"address"`       // Milvus 服务地址
	FlushInterval string       `yaml:"flushInterval"` // 自动刷新间隔，例如 "30s"，为空则不启动
	Schema        SchemaConfig `yaml:"schema"`        // Milvus 集合 Schema 配置
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address   string `yaml:"address"`   // Redis 服务器地址 (例如: "localhost:6379")
	Password  string `yaml:"password"`  // Redis 密码
	DB        int    `yaml:"db"`        // Redis 数据库编号
	KeyPrefix string `yaml:"keyPrefix"` // 键前缀
}

// MinIOConfig 定义了 MinIO 对象存储的连接配置。
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`  // MinIO 服务端点
	AccessKey string `yaml:"accessKey"` // 访问密钥
	SecretKey string `yaml:"secretKey"` // Secret 密钥
	Bucket    string `yaml:"bucket"`    // 知识库文档所在的存储桶
	Secure    bool   `yaml:"secure"`    // 是否使用HTTPS
}

// MongoConfig 定义了 MongoDB 数据库的连接配置。
type MongoConfig struct {
	Address    string `yaml:"address"`    // MongoDB 服务器地址
	Username   string `yaml:"username"`   // 用户名
	Password   string `yaml:"password"`   // 密码
	Database   string `yaml:"database"`   // 数据库名称
	Collection string `yaml:"collection"` // 线索记录所在集合
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
	Topics  []string `yaml:"topics"`  // 启动时确保存在的主题列表
}

// DatabaseConfigs 包含所有外部存储的配置。
type DatabaseConfigs struct {
	Milvus  MilvusConfig `yaml:"milvus"`  // Milvus 数据库配置
	Redis   RedisConfig  `yaml:"redis"`   // Redis 数据库配置
	MinIO   MinIOConfig  `yaml:"minio"`   // MinIO 对象存储配置
	MongoDB MongoConfig  `yaml:"mongodb"` // MongoDB 数据库配置
	Kafka   KafkaConfig  `yaml:"kafka"`   // Kafka 消息队列配置
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ServerConfig 定义了 HTTP 服务的配置。
type ServerConfig struct {
	Address         string `yaml:"address"`         // 监听地址
	ReadTimeout     string `yaml:"readTimeout"`     // 例如: "15s"
	WriteTimeout    string `yaml:"writeTimeout"`    // 例如: "60s"
	ShutdownTimeout string `yaml:"shutdownTimeout"` // 优雅关闭的最长等待时间
}

// ProviderConfig 是单个模型提供商的通用配置。
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey"`  // API 密钥
	BaseURL string `yaml:"baseURL"` // 自定义端点 (OpenAI 兼容服务或 Ollama 地址)
	Model   string `yaml:"model"`   // 模型名称
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider string         `yaml:"provider"` // "openai", "ollama", "gemini"
	OpenAI   ProviderConfig `yaml:"openai"`
	Ollama   ProviderConfig `yaml:"ollama"`
	Gemini   ProviderConfig `yaml:"gemini"`
	Timeout  string         `yaml:"timeout"` // 单次补全调用的超时
}

// EmbeddingCacheConfig 定义了查询向量缓存。
type EmbeddingCacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Capacity int    `yaml:"capacity"`
	TTL      string `yaml:"ttl"`
}

// EmbeddingConfig 包含了不同Embedding提供商的配置。
type EmbeddingConfig struct {
	Provider  string               `yaml:"provider"`  // "openai", "ollama", "gemini"
	Dimension int                  `yaml:"dimension"` // 向量维度，必须与向量库一致
	OpenAI    ProviderConfig       `yaml:"openai"`
	Ollama    ProviderConfig       `yaml:"ollama"`
	Gemini    ProviderConfig       `yaml:"gemini"`
	Cache     EmbeddingCacheConfig `yaml:"cache"`
}

// VectorStoreConfig 选择向量库后端。
type VectorStoreConfig struct {
	Backend        string `yaml:"backend"`        // "memory" 或 "milvus"
	CircuitBreaker bool   `yaml:"circuitBreaker"` // 是否用熔断器包装远程后端
}

// KnowledgeConfig 定义了知识库的切分、检索与初始化导入。
type KnowledgeConfig struct {
	ChunkSize   int      `yaml:"chunkSize"`   // 每个片段的最大字符数
	Overlap     int      `yaml:"overlap"`     // 重叠字符数，实际保留 overlap/10 个单词
	TopK        int      `yaml:"topK"`        // 检索返回的候选数量
	MinScore    float64  `yaml:"minScore"`    // 相似度阈值（严格大于）
	BatchSize   int      `yaml:"batchSize"`   // 每批向量化的片段数
	Concurrency int      `yaml:"concurrency"` // 并发批次数
	SeedPaths   []string `yaml:"seedPaths"`   // 启动时导入的本地文件或目录
	SeedURLs    []string `yaml:"seedURLs"`    // 启动时导入的网页
	SeedPrefix  string   `yaml:"seedPrefix"`  // 启动时从 MinIO 存储桶导入的对象前缀
}

// AssistantConfig 定义了对话编排相关的参数。
type AssistantConfig struct {
	Persona           string  `yaml:"persona"`           // "agency" 或 "legal"
	Temperature       float32 `yaml:"temperature"`       // 采样温度
	MaxTokens         int     `yaml:"maxTokens"`         // 回复的最大 token 数
	HistoryLimit      int     `yaml:"historyLimit"`      // 拉取的历史轮次
	HistoryWindow     int     `yaml:"historyWindow"`     // 写入提示词的最近轮次
	BackgroundTimeout string  `yaml:"backgroundTimeout"` // 后台持久化任务的超时
}

// ProfileConfig 选择用户画像的存储后端。
type ProfileConfig struct {
	Backend string `yaml:"backend"` // "vector" 或 "redis"
	TTL     string `yaml:"ttl"`     // 仅 redis 后端使用，为空表示不过期
}

// AnalyticsConfig 定义了会话统计。
type AnalyticsConfig struct {
	IdleTimeout   string `yaml:"idleTimeout"`   // 超过该时长无交互的会话标记为 abandoned
	SweepInterval string `yaml:"sweepInterval"` // 空闲扫描的周期
	Publish       bool   `yaml:"publish"`       // 是否把交互事件发送到 Kafka
	Topic         string `yaml:"topic"`         // 交互事件主题
}

// LeadsConfig 控制线索记录。
type LeadsConfig struct {
	Enabled bool `yaml:"enabled"` // 开启后写入 MongoDB
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App         AppInfo           `yaml:"app"`         // 应用程序信息
	Logger      LoggerConfig      `yaml:"logger"`      // 日志记录器配置
	Server      ServerConfig      `yaml:"server"`      // HTTP 服务配置
	LLM         LLMConfig         `yaml:"llm"`         // LLM 配置部分
	Embedding   EmbeddingConfig   `yaml:"embedding"`   // Embedding 配置部分
	VectorStore VectorStoreConfig `yaml:"vectorStore"` // 向量库配置
	Knowledge   KnowledgeConfig   `yaml:"knowledge"`   // 知识库配置
	Assistant   AssistantConfig   `yaml:"assistant"`   // 对话编排配置
	Profile     ProfileConfig     `yaml:"profile"`     // 用户画像配置
	Analytics   AnalyticsConfig   `yaml:"analytics"`   // 统计配置
	Leads       LeadsConfig       `yaml:"leads"`       // 线索配置
	Databases   DatabaseConfigs   `yaml:"databases"`   // 数据库配置
	Middleware  MiddlewareConfig  `yaml:"middleware"`  // 中间件配置
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了限流器的配置。限流按客户端 IP 分桶。
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // 支持: "fixedWindow", "tokenBucket"
	MaxClients  int               `yaml:"maxClients"`
	IdleTTL     string            `yaml:"idleTTL"` // 空闲客户端的桶被回收的时间
	FixedWindow FixedWindowConfig `yaml:"fixedWindow"`
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
}

// FixedWindowConfig 定义了固定窗口计数器算法的配置。
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "30s"
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// LoadConfig 从指定路径加载并解析 YAML 配置文件，然后填充默认值并应用环境变量覆盖。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取、解析或校验失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	return Parse(yamlFile)
}

// Parse 解析 YAML 内容。
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Duration 解析时长字符串，为空或无法解析时返回 def。
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
