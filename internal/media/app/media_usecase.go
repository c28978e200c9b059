package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"renderbox/internal/media/domain"
	"renderbox/internal/media/repository"
	"renderbox/pkg/cloudinary"
	"renderbox/pkg/database"
	errprocess "renderbox/pkg/err"
	"renderbox/pkg/events"
	"renderbox/pkg/logger"
	"renderbox/pkg/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 預設上限
const (
	DefaultMaxVideoBytes int64 = 70 * 1024 * 1024
	DefaultMaxImageBytes int64 = 10 * 1024 * 1024
)

// MediaUseCase 上傳與查詢
type MediaUseCase interface {
	UploadVideo(ctx context.Context, req domain.UploadVideoReq) (*domain.Video, error)
	UploadImage(ctx context.Context, req domain.UploadImageReq) (*domain.UploadImageRes, error)
	ListVideos(ctx context.Context) ([]domain.Video, error)
	GetVideo(ctx context.Context, id string) (*domain.Video, error)
	Limits() Options
}

// Options 上傳限制與資料夾
type Options struct {
	MaxVideoBytes int64
	MaxImageBytes int64
	VideoFolder   string
	ImageFolder   string
}

type mediaUseCase struct {
	uploader  cloudinary.Uploader
	videoRepo repository.VideoRepo
	archive   database.MinIOClientRepo
	publisher events.Publisher
	opts      Options
}

// 測試時可替換
var (
	newEventID = uuid.NewString
	now        = time.Now
)

// NewMediaUseCase archive 可為 nil，publisher 為 nil 時不發佈事件
func NewMediaUseCase(uploader cloudinary.Uploader,
	repo repository.VideoRepo,
	archive database.MinIOClientRepo,
	publisher events.Publisher,
	opts Options,
) MediaUseCase {
	if opts.MaxVideoBytes <= 0 {
		opts.MaxVideoBytes = DefaultMaxVideoBytes
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &mediaUseCase{
		uploader:  uploader,
		videoRepo: repo,
		archive:   archive,
		publisher: publisher,
		opts:      opts,
	}
}

func (s *mediaUseCase) Limits() Options {
	return s.opts
}

// ValidateVideoFields 標題必填且去除前後空白，長度以字元計
func ValidateVideoFields(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return "", "", domain.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", "", domain.ErrTitleTooLong
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return "", "", domain.ErrDescriptionTooLong
	}
	return title, description, nil
}

// sniff 依內容判斷型別，讀完後回到檔頭
func sniff(r io.ReadSeeker, family string) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	if !strings.HasPrefix(mt.String(), family+"/") {
		return mt.String(), domain.ErrUnsupportedType
	}
	return mt.String(), nil
}

// UploadVideo 驗證 → 上傳媒體服務 → 封存原檔 → 寫入中繼資料 → 發佈事件
func (s *mediaUseCase) UploadVideo(ctx context.Context, req domain.UploadVideoReq) (*domain.Video, error) {
	if req.File == nil {
		return nil, domain.ErrMissingFile
	}
	if req.Size > s.opts.MaxVideoBytes {
		metrics.RecordUpload("video", "rejected", req.Size)
		return nil, domain.ErrFileTooLarge
	}
	title, description, err := ValidateVideoFields(req.Title, req.Description)
	if err != nil {
		return nil, err
	}
	contentType, err := sniff(req.File, "video")
	if err != nil {
		metrics.RecordUpload("video", "rejected", req.Size)
		return nil, err
	}

	if req.DeclaredSize != "" {
		if declared, perr := strconv.ParseInt(req.DeclaredSize, 10, 64); perr != nil || declared != req.Size {
			logger.Log.Warn("declared originalSize differs from received bytes, keeping received size",
				zap.String("declared", req.DeclaredSize),
				zap.Int64("received", req.Size),
			)
		}
	}

	start := now()
	result, err := s.uploader.Upload(ctx, req.File, cloudinary.UploadParams{
		ResourceType:   "video",
		Folder:         s.opts.VideoFolder,
		Transformation: "q_auto",
		Format:         "mp4",
		FileName:       req.FileName,
	})
	metrics.RecordMediaService("upload_video", metrics.Status(err), time.Since(start).Seconds())
	if err != nil {
		metrics.RecordUpload("video", metrics.StatusError, req.Size)
		return nil, errprocess.Wrap(domain.ErrUploadFailed, fmt.Sprintf("fileName[%s] 上傳媒體服務失敗 : %v", req.FileName, err))
	}

	s.archiveOriginal(ctx, result.PublicID, req.FileName, req.File, req.Size, contentType)

	video := domain.Video{
		Title:          title,
		Description:    description,
		PublicID:       result.PublicID,
		OriginalSize:   req.Size,
		CompressedSize: result.Bytes,
		Duration:       result.Duration,
	}
	if err := s.videoRepo.Create(ctx, &video); err != nil {
		metrics.RecordUpload("video", metrics.StatusError, req.Size)
		return nil, errprocess.Wrap(domain.ErrPersistence,
			fmt.Sprintf("publicID[%s] 資料庫建立影片失敗，遠端檔案未回收 : %v", result.PublicID, err))
	}

	s.publishUploaded(ctx, video)
	metrics.RecordUpload("video", metrics.StatusSuccess, req.Size)
	logger.Log.Info("video uploaded",
		zap.String("video_id", video.ID),
		zap.String("public_id", video.PublicID),
		zap.Int64("original_size", video.OriginalSize),
		zap.Int64("compressed_size", video.CompressedSize),
	)
	return &video, nil
}

func (s *mediaUseCase) archiveOriginal(ctx context.Context, publicID, fileName string, file io.ReadSeeker, size int64, contentType string) {
	if s.archive == nil {
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		logger.Log.Warn("archive skipped, cannot rewind upload", zap.String("public_id", publicID), zap.Error(err))
		metrics.RecordSideEffect("archive", metrics.StatusError)
		return
	}

	objectName := fmt.Sprintf("original/%s/%s", publicID, path.Base("/"+fileName))
	err := s.archive.PutObject(ctx, objectName, file, size, contentType)
	metrics.RecordSideEffect("archive", metrics.Status(err))
	if err != nil {
		logger.Log.Warn("archive original failed", zap.String("object", objectName), zap.Error(err))
	}
}

func (s *mediaUseCase) publishUploaded(ctx context.Context, v domain.Video) {
	evt := domain.VideoUploadedEvent{
		EventID:        newEventID(),
		VideoID:        v.ID,
		PublicID:       v.PublicID,
		Title:          v.Title,
		OriginalSize:   v.OriginalSize,
		CompressedSize: v.CompressedSize,
		Duration:       v.Duration,
		CreatedAt:      v.CreatedAt,
	}
	err := s.publisher.Publish(ctx, v.ID, evt)
	metrics.RecordSideEffect("event", metrics.Status(err))
	if err != nil {
		logger.Log.Warn("publish video.uploaded failed", zap.String("video_id", v.ID), zap.Error(err))
	}
}

// UploadImage 圖片只存在媒體服務，不寫資料庫
func (s *mediaUseCase) UploadImage(ctx context.Context, req domain.UploadImageReq) (*domain.UploadImageRes, error) {
	if req.File == nil {
		return nil, domain.ErrMissingFile
	}
	if req.Size > s.opts.MaxImageBytes {
		metrics.RecordUpload("image", "rejected", req.Size)
		return nil, domain.ErrFileTooLarge
	}
	if _, err := sniff(req.File, "image"); err != nil {
		metrics.RecordUpload("image", "rejected", req.Size)
		return nil, err
	}

	start := now()
	result, err := s.uploader.Upload(ctx, req.File, cloudinary.UploadParams{
		ResourceType: "image",
		Folder:       s.opts.ImageFolder,
		FileName:     req.FileName,
	})
	metrics.RecordMediaService("upload_image", metrics.Status(err), time.Since(start).Seconds())
	if err != nil {
		metrics.RecordUpload("image", metrics.StatusError, req.Size)
		return nil, errprocess.Wrap(domain.ErrUploadFailed, fmt.Sprintf("fileName[%s] 上傳圖片失敗 : %v", req.FileName, err))
	}

	metrics.RecordUpload("image", metrics.StatusSuccess, req.Size)
	return &domain.UploadImageRes{PublicID: result.PublicID}, nil
}

// ListVideos 全部影片，新的在前
func (s *mediaUseCase) ListVideos(ctx context.Context) ([]domain.Video, error) {
	videos, err := s.videoRepo.List(ctx)
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrListFailed, fmt.Sprintf("list videos err : %v", err))
	}
	return videos, nil
}

// GetVideo get one video
func (s *mediaUseCase) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	v, err := s.videoRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrVideoNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, errprocess.Wrap(domain.ErrListFailed, fmt.Sprintf("videoID[%s] get video err : %v", id, err))
	}
	return v, nil
}
