package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// RenderBox definition renderbox YAML structure
type RenderBox struct {
	IP        string `mapstructure:"ip"`
	Port      string `mapstructure:"port" validate:"omitempty,numeric"`
	PprofAddr string `mapstructure:"pprof_addr"`

	Upload     UploadConfig     `mapstructure:"upload"`
	PostgreSQL DatabaseConfig   `mapstructure:"pg"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Redis      RedisConfig      `mapstructure:"redis"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Events     EventsConfig     `mapstructure:"events"`
}

// UploadConfig 上傳限制與目標資料夾
type UploadConfig struct {
	MaxVideoBytes int64  `mapstructure:"max_video_bytes" validate:"gte=0"`
	MaxImageBytes int64  `mapstructure:"max_image_bytes" validate:"gte=0"`
	VideoFolder   string `mapstructure:"video_folder"`
	ImageFolder   string `mapstructure:"image_folder"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	DSN            string        `mapstructure:"dsn"`
	MaxOpenConns   int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RetryInterval  int           `mapstructure:"retry_interval"`
	RetryCount     int           `mapstructure:"retry_count"`
}

// CloudinaryConfig media service credentials
type CloudinaryConfig struct {
	CloudName   string        `mapstructure:"cloud_name"`
	APIKey      string        `mapstructure:"api_key"`
	APISecret   string        `mapstructure:"api_secret"`
	UploadURL   string        `mapstructure:"upload_url" validate:"omitempty,url"`
	DeliveryURL string        `mapstructure:"delivery_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AuthConfig token 與跳轉設定
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	SignInPath string        `mapstructure:"sign_in_path"`
	HomePath   string        `mapstructure:"home_path"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	RedisDB  int    `mapstructure:"redis_db"`
}

// MinIOConfig 原始檔封存
type MinIOConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryInterval int    `mapstructure:"retry_interval"`
}

// EventsConfig 上傳事件發佈，driver: none | rabbitmq | kafka
type EventsConfig struct {
	Driver   string         `mapstructure:"driver" validate:"omitempty,oneof=none rabbitmq kafka"`
	Topic    string         `mapstructure:"topic"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	URL           string `mapstructure:"url"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryInterval int    `mapstructure:"retry_interval"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	RetryCount    int      `mapstructure:"retry_count"`
	RetryInterval int      `mapstructure:"retry_interval"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 檢查 YAML 數值範圍與 events driver 所需的連線資訊
func (c RenderBox) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Events.Driver {
	case "rabbitmq":
		if c.Events.RabbitMQ.URL == "" {
			return fmt.Errorf("invalid config: events.rabbitmq.url is required for driver rabbitmq")
		}
	case "kafka":
		if len(c.Events.Kafka.Brokers) == 0 || c.Events.Kafka.Brokers[0] == "" {
			return fmt.Errorf("invalid config: events.kafka.brokers is required for driver kafka")
		}
	}
	return nil
}
