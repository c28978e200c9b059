package repository

import (
	"context"
	"errors"

	"renderbox/internal/media/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoRepo 影片中繼資料存取
type VideoRepo interface {
	AutoMigrate() error
	Create(ctx context.Context, video *domain.Video) error
	List(ctx context.Context) ([]domain.Video, error)
	GetByID(ctx context.Context, id string) (*domain.Video, error)
}

type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo create VideoRepo
func NewVideoRepo(db *gorm.DB) VideoRepo {
	return &videoRepo{db: db}
}

// AutoMigrate 建立或補齊 videos 表，id 預設值依賴 postgres 13+ 的 gen_random_uuid()
func (r *videoRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Video{})
}

// Create 寫入一筆影片，ID 與時間戳由資料庫與 gorm 填入
func (r *videoRepo) Create(ctx context.Context, video *domain.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// List 全部影片，新的在前
func (r *videoRepo) List(ctx context.Context) ([]domain.Video, error) {
	videos := []domain.Video{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// GetByID 非 uuid 格式或查無資料回傳 domain.ErrVideoNotFound
func (r *videoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrVideoNotFound
	}

	var v domain.Video
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
