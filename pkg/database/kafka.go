package database

import (
	"context"
	"fmt"
	"time"

	"renderbox/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var dialKafka = func(ctx context.Context, broker string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	return conn.Close()
}

// NewKafkaWriterWithRetry 確認 broker 可連線後建立 Kafka Writer
func NewKafkaWriterWithRetry(ctx context.Context, k KafkaConnection) (*kafka.Writer, error) {
	if len(k.Brokers) == 0 || k.Brokers[0] == "" {
		return nil, fmt.Errorf("kafka brokers are not set")
	}

	var err error
	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		if err = dialKafka(ctx, k.Brokers[0]); err == nil {
			logger.Log.Info("Kafka broker reachable", zap.Strings("brokers", k.Brokers), zap.Int("attempt", attempt))
			return &kafka.Writer{
				Addr:                   kafka.TCP(k.Brokers...),
				Topic:                  k.Topic,
				Balancer:               &kafka.LeastBytes{},
				AllowAutoTopicCreation: true,
			}, nil
		}

		logger.Log.Warn("Kafka broker unreachable, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max", k.RetryCount),
			zap.Error(err),
		)
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("無法建立 Kafka Writer，經過 %d 次嘗試: %w", k.RetryCount, err)
}
