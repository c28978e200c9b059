package database

import "time"

// Connection definition sql setting
type Connection struct {
	ConnectStr string

	MaxOpenConns   int
	MaxIdleTime    time.Duration
	ConnectTimeout time.Duration

	RetryCount    int
	RetryInterval time.Duration
}

// MinIOConnection definition minio
type MinIOConnection struct {
	Endpoint   string
	User       string
	Password   string
	BucketName string
	UseSSL     bool

	RetryCount    int
	RetryInterval time.Duration
}

// KafkaConnection definition kafka
type KafkaConnection struct {
	Brokers       []string
	Topic         string
	RetryCount    int
	RetryInterval time.Duration
}

// RedisConnection definition redis
type RedisConnection struct {
	Addr     string
	Password string
	DB       int
}
