package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"renderbox/internal/media/domain"
	"renderbox/pkg/flow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	auth        string
	title       string
	description string
	size        string
	fileName    string
	fileBytes   int
}

func newServer(t *testing.T, hits *int32, got *received, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		got.auth = r.Header.Get("Authorization")

		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			got.title = r.FormValue("title")
			got.description = r.FormValue("description")
			got.size = r.FormValue("originalSize")
			f, fh, err := r.FormFile("file")
			require.NoError(t, err)
			b, _ := io.ReadAll(f)
			got.fileName = fh.Filename
			got.fileBytes = len(b)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type recorder struct {
	mu    sync.Mutex
	snaps []flow.Snapshot
}

func (r *recorder) record(s flow.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) last() flow.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func TestUploadVideo(t *testing.T) {
	t.Run("成功上傳並回報進度", func(t *testing.T) {
		var hits int32
		got := &received{}
		srv := newServer(t, &hits, got, http.StatusOK, domain.VideoView{
			ID: "v1", Title: "demo", PublicID: "abc123",
			OriginalSize: "2048", CompressedSize: "1024", Duration: "30",
		})

		rec := &recorder{}
		c := New(srv.URL, WithToken("tok"), WithHTTPClient(srv.Client()))
		view, err := c.UploadVideo(context.Background(), VideoUpload{
			FileName: "demo.mp4",
			Size:     2048,
			File:     bytes.NewReader(make([]byte, 2048)),
		}, rec.record)
		require.NoError(t, err)

		assert.Equal(t, "abc123", view.PublicID)
		assert.Equal(t, "Bearer tok", got.auth)
		assert.Equal(t, "demo", got.title)
		assert.Equal(t, "2048", got.size)
		assert.Equal(t, "demo.mp4", got.fileName)
		assert.Equal(t, 2048, got.fileBytes)

		last := rec.last()
		assert.Equal(t, flow.StateUploaded, last.State)
		assert.Equal(t, 100, last.Percent)
		assert.Equal(t, "abc123", last.PublicID)
		assert.Equal(t, flow.StateUploading, rec.snaps[0].State)
	})

	t.Run("標題與描述截斷", func(t *testing.T) {
		var hits int32
		got := &received{}
		srv := newServer(t, &hits, got, http.StatusOK, domain.VideoView{PublicID: "x"})

		_, err := New(srv.URL).UploadVideo(context.Background(), VideoUpload{
			Title:       strings.Repeat("標", 120),
			Description: strings.Repeat("d", 600),
			FileName:    "a.mp4",
			Size:        1,
			File:        strings.NewReader("a"),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("標", domain.MaxTitleLength), got.title)
		assert.Len(t, got.description, domain.MaxDescriptionLength)
	})

	t.Run("超過上限不送出請求", func(t *testing.T) {
		var hits int32
		srv := newServer(t, &hits, &received{}, http.StatusOK, nil)

		c := New(srv.URL, WithLimits(Limits{MaxVideoBytes: 70 << 20}))
		_, err := c.UploadVideo(context.Background(), VideoUpload{
			FileName: "big.mp4",
			Size:     80 << 20,
			File:     strings.NewReader(""),
		}, nil)
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
		assert.Zero(t, atomic.LoadInt32(&hits))
	})

	t.Run("缺檔案", func(t *testing.T) {
		_, err := New("http://127.0.0.1:1").UploadVideo(context.Background(), VideoUpload{Title: "x"}, nil)
		assert.ErrorIs(t, err, domain.ErrMissingFile)
	})

	t.Run("伺服器錯誤", func(t *testing.T) {
		var hits int32
		srv := newServer(t, &hits, &received{}, http.StatusInternalServerError, map[string]string{"error": "Failed to upload video"})

		rec := &recorder{}
		_, err := New(srv.URL).UploadVideo(context.Background(), VideoUpload{
			Title: "x", FileName: "x.mp4", Size: 3, File: strings.NewReader("abc"),
		}, rec.record)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "Failed to upload video", apiErr.Message)
		assert.Equal(t, flow.StateFailed, rec.last().State)
	})
}

func TestUploadImage(t *testing.T) {
	var hits int32
	got := &received{}
	srv := newServer(t, &hits, got, http.StatusOK, domain.UploadImageRes{PublicID: "img-1"})

	res, err := New(srv.URL).UploadImage(context.Background(), ImageUpload{
		FileName: "cat.png", Size: 4, File: strings.NewReader("cat!"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "img-1", res.PublicID)
	assert.Equal(t, 4, got.fileBytes)

	_, err = New(srv.URL, WithLimits(Limits{MaxImageBytes: 3})).UploadImage(context.Background(), ImageUpload{
		FileName: "cat.png", Size: 4, File: strings.NewReader("cat!"),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestListVideos(t *testing.T) {
	t.Run("回傳列表", func(t *testing.T) {
		var hits int32
		srv := newServer(t, &hits, &received{}, http.StatusOK, []domain.VideoView{
			{ID: "v2", Title: "new"}, {ID: "v1", Title: "old"},
		})

		videos, err := New(srv.URL).ListVideos(context.Background())
		require.NoError(t, err)
		require.Len(t, videos, 2)
		assert.Equal(t, "v2", videos[0].ID)
	})

	t.Run("空列表", func(t *testing.T) {
		var hits int32
		srv := newServer(t, &hits, &received{}, http.StatusOK, []domain.VideoView{})

		videos, err := New(srv.URL).ListVideos(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, videos)
		assert.Empty(t, videos)
	})

	t.Run("查詢失敗", func(t *testing.T) {
		var hits int32
		srv := newServer(t, &hits, &received{}, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch videos"})

		_, err := New(srv.URL).ListVideos(context.Background())
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Failed to fetch videos", apiErr.Message)
	})
}
