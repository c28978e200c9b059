package database

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"renderbox/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrMissingDSN 未設定 DATABASE_URL
var ErrMissingDSN = errors.New("database connection string is not set")

// 連線池預設值
const (
	DefaultMaxOpenConns   = 5
	DefaultMaxIdleTime    = 10 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

var openGorm = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// NewPGConnection create a pooled postgreSQL connection via gorm
func NewPGConnection(d Connection) (*gorm.DB, error) {
	if strings.TrimSpace(d.ConnectStr) == "" {
		return nil, ErrMissingDSN
	}
	applyPoolDefaults(&d)

	dsn := withConnectTimeout(d.ConnectStr, d.ConnectTimeout)
	attempts := d.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < attempts; i++ {
		db, err = openGorm(dsn)
		if err == nil {
			err = configurePool(db, d)
		}
		if err == nil {
			return db, nil
		}
		logger.Log.Warn(
			"Failed to connect to postgreSQL database, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		if i < attempts-1 {
			time.Sleep(d.RetryInterval * time.Second)
		}
	}

	return nil, fmt.Errorf("connect postgreSQL after %d attempts: %w", attempts, err)
}

// ClosePG 關閉底層連線池
func ClosePG(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyPoolDefaults(d *Connection) {
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = DefaultMaxOpenConns
	}
	if d.MaxIdleTime <= 0 {
		d.MaxIdleTime = DefaultMaxIdleTime
	}
	if d.ConnectTimeout <= 0 {
		d.ConnectTimeout = DefaultConnectTimeout
	}
}

func configurePool(db *gorm.DB, d Connection) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(d.MaxOpenConns)
	sqlDB.SetMaxIdleConns(d.MaxOpenConns)
	sqlDB.SetConnMaxIdleTime(d.MaxIdleTime)
	return sqlDB.Ping()
}

// withConnectTimeout 在 DSN 未指定時補上 connect_timeout（秒）
func withConnectTimeout(dsn string, timeout time.Duration) string {
	secs := strconv.Itoa(int(timeout.Seconds()))
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		if q.Get("connect_timeout") == "" {
			q.Set("connect_timeout", secs)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if strings.Contains(dsn, "connect_timeout=") {
		return dsn
	}
	return dsn + " connect_timeout=" + secs
}
