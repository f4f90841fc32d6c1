package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher 把会话交互事件以 JSON 发送到 Kafka，按 sessionId 分区以保持同一会话内的顺序。
type EventPublisher struct {
	writer messageWriter
	log    *logger.Logger
}

// NewEventPublisher 创建一个写入 topic 的发布者。
func NewEventPublisher(client *KafkaClient, topic string) *EventPublisher {
	w := client.NewWriter(topic)
	p := &EventPublisher{writer: w, log: logger.New("kafka", "", "").WithField("topic", topic)}
	w.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			p.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "kafka_error"}).
				Error(fmt.Sprintf("丢弃了 %d 条交互事件", len(messages)))
		}
	}
	return p
}

// PublishInteraction 序列化并发送一条事件。writer 是异步的，调用不会阻塞在网络上。
func (p *EventPublisher) PublishInteraction(ctx context.Context, event models.InteractionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.SessionID), Value: data}); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close 刷新并关闭底层 writer。
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
