package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"renderbox/internal/media/domain"
	"renderbox/pkg/cloudinary"
	"renderbox/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mp4 ftyp header，足以讓內容判斷為 video/mp4
var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fakeFile(header []byte, size int) *bytes.Reader {
	buf := make([]byte, size)
	copy(buf, header)
	return bytes.NewReader(buf)
}

// MockUploader 是媒體服務的 Mock
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, file io.Reader, p cloudinary.UploadParams) (*cloudinary.UploadResult, error) {
	args := m.Called(ctx, file, p)
	if r, ok := args.Get(0).(*cloudinary.UploadResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockVideoRepo 是 VideoRepo 的 Mock
type MockVideoRepo struct {
	mock.Mock
}

func (m *MockVideoRepo) AutoMigrate() error {
	return m.Called().Error(0)
}

func (m *MockVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockVideoRepo) List(ctx context.Context) ([]domain.Video, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).([]domain.Video); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*domain.Video); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockArchive 是 MinIO 的 Mock
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) PutObject(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	return m.Called(ctx, objectName, r, size, contentType).Error(0)
}

// MockPublisher 是事件發佈的 Mock
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, payload any) error {
	return m.Called(ctx, key, payload).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type fixture struct {
	uploader  *MockUploader
	repo      *MockVideoRepo
	archive   *MockArchive
	publisher *MockPublisher
	uc        MediaUseCase
}

func newFixture() *fixture {
	logger.SetNewNop()
	newEventID = func() string { return "evt-1" }

	f := &fixture{
		uploader:  new(MockUploader),
		repo:      new(MockVideoRepo),
		archive:   new(MockArchive),
		publisher: new(MockPublisher),
	}
	f.uc = NewMediaUseCase(f.uploader, f.repo, f.archive, f.publisher, Options{
		MaxVideoBytes: 1024,
		MaxImageBytes: 512,
		VideoFolder:   "video-uploads",
		ImageFolder:   "images",
	})
	return f
}

func videoReq(size int) domain.UploadVideoReq {
	return domain.UploadVideoReq{
		Title:        "  demo  ",
		Description:  "first upload",
		FileName:     "demo.mp4",
		Size:         int64(size),
		DeclaredSize: "512",
		File:         fakeFile(mp4Header, size),
	}
}

func TestUploadVideo(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("成功上傳並寫入資料", func(t *testing.T) {
		f := newFixture()
		f.uploader.On("Upload", ctx, mock.Anything, cloudinary.UploadParams{
			ResourceType:   "video",
			Folder:         "video-uploads",
			Transformation: "q_auto",
			Format:         "mp4",
			FileName:       "demo.mp4",
		}).Return(&cloudinary.UploadResult{PublicID: "abc123", Bytes: 300, Duration: 30}, nil)
		f.archive.On("PutObject", ctx, "original/abc123/demo.mp4", mock.Anything, int64(512), "video/mp4").Return(nil)
		f.repo.On("Create", ctx, mock.MatchedBy(func(v *domain.Video) bool {
			return v.Title == "demo" && v.PublicID == "abc123" && v.OriginalSize == 512 && v.CompressedSize == 300 && v.Duration == 30
		})).Run(func(args mock.Arguments) {
			v := args.Get(1).(*domain.Video)
			v.ID = "vid-1"
			v.CreatedAt = created
		}).Return(nil)
		f.publisher.On("Publish", ctx, "vid-1", domain.VideoUploadedEvent{
			EventID:        "evt-1",
			VideoID:        "vid-1",
			PublicID:       "abc123",
			Title:          "demo",
			OriginalSize:   512,
			CompressedSize: 300,
			Duration:       30,
			CreatedAt:      created,
		}).Return(nil)

		v, err := f.uc.UploadVideo(ctx, videoReq(512))
		require.NoError(t, err)
		assert.Equal(t, "vid-1", v.ID)
		assert.Equal(t, "30", v.ToView().Duration)

		f.uploader.AssertExpectations(t)
		f.archive.AssertExpectations(t)
		f.repo.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("上傳後檔案從頭讀取", func(t *testing.T) {
		f := newFixture()
		f.uploader.On("Upload", ctx, mock.MatchedBy(func(r io.Reader) bool {
			head := make([]byte, len(mp4Header))
			_, err := io.ReadFull(r, head)
			return err == nil && bytes.Equal(head, mp4Header)
		}), mock.Anything).Return(&cloudinary.UploadResult{PublicID: "p"}, nil)
		f.archive.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.repo.On("Create", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.UploadVideo(ctx, videoReq(256))
		require.NoError(t, err)
	})

	t.Run("檔案過大不呼叫媒體服務", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.UploadVideo(ctx, videoReq(2048))
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
		f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("欄位驗證", func(t *testing.T) {
		f := newFixture()

		req := videoReq(100)
		req.Title = "   "
		_, err := f.uc.UploadVideo(ctx, req)
		assert.ErrorIs(t, err, domain.ErrTitleRequired)

		req = videoReq(100)
		req.Title = strings.Repeat("影", 101)
		_, err = f.uc.UploadVideo(ctx, req)
		assert.ErrorIs(t, err, domain.ErrTitleTooLong)

		req = videoReq(100)
		req.Title = strings.Repeat("影", 100)
		req.Description = strings.Repeat("d", 501)
		_, err = f.uc.UploadVideo(ctx, req)
		assert.ErrorIs(t, err, domain.ErrDescriptionTooLong)

		req = videoReq(100)
		req.File = nil
		_, err = f.uc.UploadVideo(ctx, req)
		assert.ErrorIs(t, err, domain.ErrMissingFile)

		f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("非影片內容", func(t *testing.T) {
		f := newFixture()
		req := videoReq(100)
		req.File = fakeFile(pngHeader, 100)
		_, err := f.uc.UploadVideo(ctx, req)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("媒體服務失敗不寫資料", func(t *testing.T) {
		f := newFixture()
		f.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		_, err := f.uc.UploadVideo(ctx, videoReq(100))
		assert.ErrorIs(t, err, domain.ErrUploadFailed)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.archive.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("資料庫失敗", func(t *testing.T) {
		f := newFixture()
		f.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return(&cloudinary.UploadResult{PublicID: "orphan"}, nil)
		f.archive.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.repo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.uc.UploadVideo(ctx, videoReq(100))
		assert.ErrorIs(t, err, domain.ErrPersistence)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("封存與事件失敗不影響結果", func(t *testing.T) {
		f := newFixture()
		f.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return(&cloudinary.UploadResult{PublicID: "p"}, nil)
		f.archive.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))
		f.repo.On("Create", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

		v, err := f.uc.UploadVideo(ctx, videoReq(100))
		require.NoError(t, err)
		assert.Equal(t, "p", v.PublicID)
	})

	t.Run("未設定封存與事件", func(t *testing.T) {
		logger.SetNewNop()
		uploader := new(MockUploader)
		repo := new(MockVideoRepo)
		uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return(&cloudinary.UploadResult{PublicID: "p"}, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		uc := NewMediaUseCase(uploader, repo, nil, nil, Options{})
		_, err := uc.UploadVideo(ctx, videoReq(100))
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxVideoBytes, uc.Limits().MaxVideoBytes)
	})
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("成功", func(t *testing.T) {
		f := newFixture()
		f.uploader.On("Upload", ctx, mock.Anything, cloudinary.UploadParams{
			ResourceType: "image",
			Folder:       "images",
			FileName:     "cat.png",
		}).Return(&cloudinary.UploadResult{PublicID: "img-1"}, nil)

		res, err := f.uc.UploadImage(ctx, domain.UploadImageReq{FileName: "cat.png", Size: 100, File: fakeFile(pngHeader, 100)})
		require.NoError(t, err)
		assert.Equal(t, "img-1", res.PublicID)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("過大", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.UploadImage(ctx, domain.UploadImageReq{Size: 1000, File: fakeFile(pngHeader, 1000)})
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})

	t.Run("非圖片", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.UploadImage(ctx, domain.UploadImageReq{Size: 100, File: fakeFile(mp4Header, 100)})
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("媒體服務失敗", func(t *testing.T) {
		f := newFixture()
		f.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("500"))
		_, err := f.uc.UploadImage(ctx, domain.UploadImageReq{Size: 100, File: fakeFile(pngHeader, 100)})
		assert.ErrorIs(t, err, domain.ErrUploadFailed)
	})
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("列表", func(t *testing.T) {
		f := newFixture()
		f.repo.On("List", ctx).Return([]domain.Video{{ID: "b"}, {ID: "a"}}, nil)
		videos, err := f.uc.ListVideos(ctx)
		require.NoError(t, err)
		assert.Len(t, videos, 2)
	})

	t.Run("列表失敗", func(t *testing.T) {
		f := newFixture()
		f.repo.On("List", ctx).Return(nil, errors.New("down"))
		_, err := f.uc.ListVideos(ctx)
		assert.ErrorIs(t, err, domain.ErrListFailed)
	})

	t.Run("查無影片", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, "x").Return(nil, domain.ErrVideoNotFound)
		_, err := f.uc.GetVideo(ctx, "x")
		assert.ErrorIs(t, err, domain.ErrVideoNotFound)
	})
}
