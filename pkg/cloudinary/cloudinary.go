package cloudinary

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

	"renderbox/pkg/encrypt"

	"github.com/go-resty/resty/v2"
)

// DefaultUploadURL upload API base
const DefaultUploadURL = "https://api.cloudinary.com/v1_1"

// ErrNotConfigured 缺少 cloud name 或 API 憑證
var ErrNotConfigured = errors.New("cloudinary credentials are not configured")

// Config 上傳 API 設定
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	UploadURL string
	Timeout   time.Duration
}

// UploadParams 單次上傳參數
type UploadParams struct {
	ResourceType   string // image | video | raw
	Folder         string
	Transformation string
	Format         string
	FileName       string
}

// UploadResult 上傳回應中用到的欄位
type UploadResult struct {
	PublicID     string  `json:"public_id"`
	Bytes        int64   `json:"bytes"`
	Duration     float64 `json:"duration"`
	SecureURL    string  `json:"secure_url"`
	Format       string  `json:"format"`
	ResourceType string  `json:"resource_type"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Uploader 上傳介面
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, p UploadParams) (*UploadResult, error)
}

type client struct {
	cfg  Config
	http *resty.Client
	now  func() time.Time
}

// Option client option
type Option func(*client)

// WithHTTPClient 替換底層 http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *client) { c.http = resty.NewWithClient(h).SetTimeout(c.cfg.Timeout) }
}

// NewClient create a signed upload client
func NewClient(cfg Config, opts ...Option) Uploader {
	if cfg.UploadURL == "" {
		cfg.UploadURL = DefaultUploadURL
	}
	cfg.UploadURL = strings.TrimRight(cfg.UploadURL, "/")

	c := &client{
		cfg:  cfg,
		http: resty.New().SetTimeout(cfg.Timeout),
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.http.SetHeader("Accept", "application/json")
	return c
}

func (c *client) endpoint(resourceType string) string {
	return fmt.Sprintf("%s/%s/%s/upload", c.cfg.UploadURL, c.cfg.CloudName, resourceType)
}

// Upload stream file to the media service as multipart form with a signed parameter set
func (c *client) Upload(ctx context.Context, file io.Reader, p UploadParams) (*UploadResult, error) {
	if c.cfg.CloudName == "" || c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}
	if p.ResourceType == "" {
		p.ResourceType = "image"
	}
	if p.FileName == "" {
		p.FileName = "upload"
	}

	params := map[string]string{
		"timestamp":      strconv.FormatInt(c.now().Unix(), 10),
		"folder":         p.Folder,
		"transformation": p.Transformation,
		"format":         p.Format,
	}
	params["signature"] = encrypt.SignParams(params, c.cfg.APISecret)
	params["api_key"] = c.cfg.APIKey

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, params, p.FileName, file))
	}()

	var (
		result UploadResult
		ae     apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", mw.FormDataContentType()).
		SetBody(pr).
		SetResult(&result).
		SetError(&ae).
		ForceContentType("application/json").
		Post(c.endpoint(p.ResourceType))
	pr.Close()
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}

	if resp.IsError() {
		if ae.Error.Message != "" {
			return nil, fmt.Errorf("cloudinary upload: %s (status %d)", ae.Error.Message, resp.StatusCode())
		}
		return nil, fmt.Errorf("cloudinary upload: unexpected status %d", resp.StatusCode())
	}
	if result.PublicID == "" {
		return nil, errors.New("cloudinary upload: response has no public_id")
	}
	return &result, nil
}

func writeForm(mw *multipart.Writer, params map[string]string, fileName string, file io.Reader) error {
	for k, v := range params {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
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
