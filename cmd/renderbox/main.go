package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "renderbox/cmd/renderbox/docs" // 引入生成的 Swagger 文档
	"renderbox/internal/api/handlers"
	"renderbox/internal/api/router"
	"renderbox/internal/media/app"
	"renderbox/internal/media/delivery"
	"renderbox/internal/media/domain"
	"renderbox/internal/media/repository"
	"renderbox/internal/web"
	"renderbox/pkg/cloudinary"
	"renderbox/pkg/config"
	"renderbox/pkg/database"
	"renderbox/pkg/events"
	"renderbox/pkg/logger"
	"renderbox/pkg/middlewares"
	testtool "renderbox/pkg/test_tool"
	"renderbox/pkg/token"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ServiceName, config.EnvConfig.LogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.RenderBox](config.EnvConfig.ServiceName, config.EnvConfig.YAMLPath)
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("config validation failed", zap.Error(err))
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token.Configure(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// 1. 連線 PostgreSQL
	db, err := database.NewPGConnection(database.Connection{
		ConnectStr:     cfg.PostgreSQL.DSN,
		MaxOpenConns:   cfg.PostgreSQL.MaxOpenConns,
		MaxIdleTime:    cfg.PostgreSQL.MaxIdleTime,
		ConnectTimeout: cfg.PostgreSQL.ConnectTimeout,
		RetryCount:     cfg.PostgreSQL.RetryCount,
		RetryInterval:  time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries", zap.Error(err))
	}

	// 自動遷移影片資料表
	videoRepo := repository.NewVideoRepo(db)
	if err := videoRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("videos table migration failed", zap.Error(err))
	}

	// 2. 媒體服務
	uploader := cloudinary.NewClient(cloudinary.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		UploadURL: cfg.Cloudinary.UploadURL,
		Timeout:   cfg.Cloudinary.Timeout,
	})
	if cfg.Cloudinary.CloudName == "" {
		logger.Log.Warn("CLOUDINARY_CLOUD_NAME is not set, uploads and media urls will fail")
	}
	builder := delivery.NewBuilder(cfg.Cloudinary.DeliveryURL, cfg.Cloudinary.CloudName)

	// 3. 選配：原檔封存、token 撤銷、上傳事件
	archive := connectArchive(ctx, cfg.MinIO)
	revocations := connectRevocations(ctx, cfg.Redis)
	publisher := connectPublisher(ctx, cfg.Events)

	usecase := app.NewMediaUseCase(uploader, videoRepo, archive, publisher, app.Options{
		MaxVideoBytes: cfg.Upload.MaxVideoBytes,
		MaxImageBytes: cfg.Upload.MaxImageBytes,
		VideoFolder:   cfg.Upload.VideoFolder,
		ImageFolder:   cfg.Upload.ImageFolder,
	})

	pages, err := web.New(web.Options{
		Media:        usecase,
		Builder:      builder,
		Revocations:  revocations,
		SelfSignUp:   !config.IsProduction(),
		SecureCookie: config.IsProduction(),
	})
	if err != nil {
		logger.Log.Fatal("load page templates failed", zap.Error(err))
	}

	gate := middlewares.DefaultGateConfig()
	gate.Revocations = revocations
	if cfg.Auth.SignInPath != "" {
		gate.SignInPath = cfg.Auth.SignInPath
	}
	if cfg.Auth.HomePath != "" {
		gate.HomePath = cfg.Auth.HomePath
	}

	// 添加日志中间件
	accessLog, err := os.OpenFile(filepath.Join(config.EnvConfig.LogPath, "access.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Log.Fatal("Failed to open access log", zap.Error(err))
	}
	defer accessLog.Close()

	r := router.New(router.Options{
		Media:     handlers.NewMediaHandler(usecase),
		Gate:      gate,
		BodyLimit: int(usecase.Limits().MaxVideoBytes + 1<<20),
		AccessLog: accessLog,
		Pages:     pages,
	})

	testtool.StartPprof(cfg.PprofAddr)

	go func() {
		addr := cfg.IP + ":" + cfg.Port
		logger.Log.Info("RenderBox listening", zap.String("addr", addr))
		if err := r.Listen(addr); err != nil {
			logger.Log.Error("Server failed to start", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Error("fiber shutdown failed", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Log.Error("close event publisher failed", zap.Error(err))
	}
	if err := database.ClosePG(db); err != nil {
		logger.Log.Error("close postgres failed", zap.Error(err))
	}
}

func connectArchive(ctx context.Context, c config.MinIOConfig) database.MinIOClientRepo {
	if !c.Enabled {
		return nil
	}
	mc, err := database.NewMinIOConnection(ctx, database.MinIOConnection{
		Endpoint:      fmt.Sprintf("%s:%d", c.Host, c.Port),
		User:          c.User,
		Password:      c.Password,
		BucketName:    c.Bucket,
		UseSSL:        c.UseSSL,
		RetryCount:    c.RetryCount,
		RetryInterval: time.Duration(c.RetryInterval),
	})
	if err != nil {
		logger.Log.Warn("minio unavailable, original files will not be archived", zap.Error(err))
		return nil
	}
	return mc
}

func connectRevocations(ctx context.Context, c config.RedisConfig) middlewares.RevocationStore {
	if !c.Enabled {
		return middlewares.NewMemoryRevocationStore()
	}
	client, err := database.NewRedisClient(ctx, database.RedisConnection{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.RedisDB,
	})
	if err != nil {
		logger.Log.Warn("redis unavailable, token revocation is kept in memory", zap.Error(err))
		return middlewares.NewMemoryRevocationStore()
	}
	return middlewares.NewRedisRevocationStore(database.NewRedisRepository[bool](client))
}

func connectPublisher(ctx context.Context, c config.EventsConfig) events.Publisher {
	topic := c.Topic
	if topic == "" {
		topic = domain.EventVideoUploaded
	}

	var (
		p   events.Publisher
		err error
	)
	switch c.Driver {
	case events.DriverRabbitMQ:
		var repo database.RabbitRepo
		repo, err = database.ConnectRabbitMQWithRetry(database.Connection{
			ConnectStr:    c.RabbitMQ.URL,
			RetryCount:    atLeastOne(c.RabbitMQ.RetryCount),
			RetryInterval: time.Duration(c.RabbitMQ.RetryInterval),
		})
		if err == nil {
			p, err = events.NewRabbitPublisher(repo, topic)
		}
	case events.DriverKafka:
		w, kerr := database.NewKafkaWriterWithRetry(ctx, database.KafkaConnection{
			Brokers:       c.Kafka.Brokers,
			Topic:         topic,
			RetryCount:    atLeastOne(c.Kafka.RetryCount),
			RetryInterval: time.Duration(c.Kafka.RetryInterval),
		})
		if err = kerr; err == nil {
			p = events.NewKafkaPublisher(w)
		}
	default:
		return events.NewNopPublisher()
	}

	if err != nil {
		logger.Log.Warn("event broker unavailable, video.uploaded events are disabled",
			zap.String("driver", c.Driver), zap.Error(err))
		return events.NewNopPublisher()
	}
	logger.Log.Info("event publisher ready", zap.String("driver", c.Driver), zap.String("topic", topic))
	return p
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
