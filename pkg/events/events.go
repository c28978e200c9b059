package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"renderbox/pkg/database"

	"github.com/segmentio/kafka-go"
	"github.com/streadway/amqp"
)

// Drivers
const (
	DriverNone     = "none"
	DriverRabbitMQ = "rabbitmq"
	DriverKafka    = "kafka"
)

// Publisher 發佈 JSON 事件
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher 不發佈任何事件
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, any) error { return nil }
func (nopPublisher) Close() error                             { return nil }

type rabbitPublisher struct {
	repo  database.RabbitRepo
	queue string
}

// NewRabbitPublisher 以預設 exchange 發佈到 durable queue
func NewRabbitPublisher(repo database.RabbitRepo, queue string) (Publisher, error) {
	if err := repo.DeclareQueue(queue); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &rabbitPublisher{repo: repo, queue: queue}, nil
}

func (p *rabbitPublisher) Publish(_ context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.repo.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *rabbitPublisher) Close() error {
	return p.repo.Close()
}

// KafkaWriter *kafka.Writer 的子集
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer KafkaWriter
}

// NewKafkaPublisher 以 key 作為 partition key
func NewKafkaPublisher(w KafkaWriter) Publisher {
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
