package kafka

import (
	"fmt"
	"sync"
	"time"

	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// KafkaClient 持有管理连接和配置。生产者按主题单独创建。
type KafkaClient struct {
	Conn   *kafka.Conn // 用于管理的连接
	Config *config.KafkaConfig
}

var (
	client  *KafkaClient
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化并返回一个 KafkaClient 实例。
// 首次调用时，它会连接到 Kafka 并根据配置自动创建所有缺失的主题。
func GetClient(cfg *config.KafkaConfig) (*KafkaClient, error) {
	once.Do(func() {
		if len(cfg.Brokers) == 0 {
			initErr = fmt.Errorf("未配置 Kafka brokers")
			return
		}
		log := logger.New("kafka", "", "")

		conn, err := kafka.Dial("tcp", cfg.Brokers[0])
		if err != nil {
			initErr = fmt.Errorf("kafka 初始化连接失败: %w", err)
			return
		}

		partitions, err := conn.ReadPartitions()
		if err != nil {
			conn.Close()
			initErr = fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
			return
		}
		existing := make(map[string]struct{})
		for _, p := range partitions {
			existing[p.Topic] = struct{}{}
		}

		var toCreate []kafka.TopicConfig
		for _, topic := range cfg.Topics {
			if _, ok := existing[topic]; !ok {
				toCreate = append(toCreate, kafka.TopicConfig{
					Topic:             topic,
					NumPartitions:     1,
					ReplicationFactor: 1,
				})
			}
		}
		if len(toCreate) > 0 {
			if err := conn.CreateTopics(toCreate...); err != nil {
				conn.Close()
				initErr = fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
				return
			}
			log.WithField("count", len(toCreate)).Info("已创建 Kafka 主题")
		}

		log.Info("成功初始化 Kafka 客户端")
		client = &KafkaClient{Conn: conn, Config: cfg}
	})
	return client, initErr
}

// NewWriter 为指定主题创建一个异步 writer。
func (c *KafkaClient) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		Async:        true,
	}
}

// Close 关闭管理连接。
func (c *KafkaClient) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	if err := c.Conn.Close(); err != nil {
		return fmt.Errorf("关闭 Kafka 管理连接失败: %w", err)
	}
	return nil
}

// HealthCheck 检查 Kafka 连接的健康状况。
func (c *KafkaClient) HealthCheck() error {
	if c == nil || c.Conn == nil {
		return fmt.Errorf("kafka 客户端未初始化，无法进行健康检查")
	}
	_, err := c.Conn.Controller()
	return err
}
