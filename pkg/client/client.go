package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"renderbox/internal/media/domain"
	"renderbox/pkg/flow"

	"github.com/go-resty/resty/v2"
)

// 上傳上限，與伺服器預設相同
const (
	DefaultMaxVideoBytes int64 = 70 * 1024 * 1024
	DefaultMaxImageBytes int64 = 10 * 1024 * 1024
)

// Limits 本地端檢查，超過時不會送出任何請求
type Limits struct {
	MaxVideoBytes int64
	MaxImageBytes int64
}

// APIError 伺服器回傳 {"error": "..."}
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("renderbox api %d: %s", e.StatusCode, e.Message)
}

// ProgressFunc 每次狀態或進度改變時呼叫，可能在另一個 goroutine 執行
type ProgressFunc func(flow.Snapshot)

// Client RenderBox API client
type Client struct {
	http   *resty.Client
	limits Limits
}

type settings struct {
	token      string
	httpClient *http.Client
	limits     Limits
	timeout    time.Duration
}

// Option client option
type Option func(*settings)

// WithToken 以 Bearer 帶上 token
func WithToken(token string) Option {
	return func(s *settings) { s.token = token }
}

// WithHTTPClient 使用自訂的 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithLimits 覆寫本地上傳上限，0 表示使用預設
func WithLimits(l Limits) Option {
	return func(s *settings) { s.limits = l }
}

// WithTimeout 單一請求逾時
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// New create client
func New(baseURL string, opts ...Option) *Client {
	s := settings{timeout: 10 * time.Minute}
	for _, o := range opts {
		o(&s)
	}
	if s.limits.MaxVideoBytes <= 0 {
		s.limits.MaxVideoBytes = DefaultMaxVideoBytes
	}
	if s.limits.MaxImageBytes <= 0 {
		s.limits.MaxImageBytes = DefaultMaxImageBytes
	}

	rc := resty.New()
	if s.httpClient != nil {
		rc = resty.NewWithClient(s.httpClient)
	}
	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(s.timeout)
	if s.token != "" {
		rc.SetAuthToken(s.token)
	}

	return &Client{http: rc, limits: s.limits}
}

// VideoUpload 影片上傳內容，Title 留空時使用檔名
type VideoUpload struct {
	Title       string
	Description string
	FileName    string
	Size        int64
	File        io.Reader
}

// ImageUpload 圖片上傳內容
type ImageUpload struct {
	FileName string
	Size     int64
	File     io.Reader
}

// UploadVideo POST /api/video-upload
func (c *Client) UploadVideo(ctx context.Context, u VideoUpload, progress ProgressFunc) (*domain.VideoView, error) {
	if u.File == nil {
		return nil, domain.ErrMissingFile
	}
	if u.Size > c.limits.MaxVideoBytes {
		return nil, domain.ErrFileTooLarge
	}

	title := strings.TrimSpace(u.Title)
	if title == "" {
		title = domain.DefaultTitle(u.FileName)
	}
	fields := [][2]string{
		{"title", domain.Truncate(title, domain.MaxTitleLength)},
		{"description", domain.Truncate(u.Description, domain.MaxDescriptionLength)},
		{"originalSize", strconv.FormatInt(u.Size, 10)},
	}

	var view domain.VideoView
	f := flow.New()
	if err := c.upload(ctx, "/api/video-upload", fields, u.FileName, u.Size, u.File, &view, f, progress); err != nil {
		return nil, err
	}
	if err := c.succeed(f, view.PublicID, progress); err != nil {
		return nil, err
	}
	return &view, nil
}

// UploadImage POST /api/image-upload
func (c *Client) UploadImage(ctx context.Context, u ImageUpload, progress ProgressFunc) (*domain.UploadImageRes, error) {
	if u.File == nil {
		return nil, domain.ErrMissingFile
	}
	if u.Size > c.limits.MaxImageBytes {
		return nil, domain.ErrFileTooLarge
	}

	var res domain.UploadImageRes
	f := flow.New()
	if err := c.upload(ctx, "/api/image-upload", nil, u.FileName, u.Size, u.File, &res, f, progress); err != nil {
		return nil, err
	}
	if err := c.succeed(f, res.PublicID, progress); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListVideos GET /api/videos，最新的在前
func (c *Client) ListVideos(ctx context.Context) ([]domain.VideoView, error) {
	var videos []domain.VideoView
	apiErr := &APIError{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&videos).
		SetError(apiErr).
		Get("/api/videos")
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if resp.IsError() {
		return nil, toAPIError(resp, apiErr)
	}
	if videos == nil {
		videos = []domain.VideoView{}
	}
	return videos, nil
}

func (c *Client) upload(ctx context.Context, path string, fields [][2]string, fileName string, size int64,
	file io.Reader, result any, f *flow.Flow, progress ProgressFunc,
) error {
	if err := f.StartUpload(); err != nil {
		return err
	}
	notify(f, progress)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, fields, fileName, &progressReader{
			r: file,
			onRead: func(loaded int64) {
				if f.Progress(loaded, size) == nil {
					notify(f, progress)
				}
			},
		}))
	}()

	apiErr := &APIError{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", mw.FormDataContentType()).
		SetBody(pr).
		SetResult(result).
		SetError(apiErr).
		Post(path)
	pr.Close()

	if err != nil {
		err = fmt.Errorf("upload %s: %w", fileName, err)
	} else if resp.IsError() {
		err = toAPIError(resp, apiErr)
	}
	if err != nil {
		if ferr := f.Fail(err); ferr != nil {
			return errors.Join(err, ferr)
		}
		notify(f, progress)
		return err
	}
	return nil
}

func (c *Client) succeed(f *flow.Flow, publicID string, progress ProgressFunc) error {
	if err := f.UploadSucceeded(publicID); err != nil {
		return err
	}
	notify(f, progress)
	return nil
}

func writeMultipart(mw *multipart.Writer, fields [][2]string, fileName string, file io.Reader) error {
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return mw.Close()
}

func toAPIError(resp *resty.Response, apiErr *APIError) *APIError {
	apiErr.StatusCode = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(resp.String())
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

func notify(f *flow.Flow, progress ProgressFunc) {
	if progress != nil {
		progress(f.Snapshot())
	}
}

type progressReader struct {
	r      io.Reader
	loaded int64
	onRead func(loaded int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.onRead(p.loaded)
	}
	return n, err
}
