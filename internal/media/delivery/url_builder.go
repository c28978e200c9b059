package delivery

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"renderbox/internal/media/domain"
)

// DefaultBaseURL 媒體服務的 delivery 網址
const DefaultBaseURL = "https://res.cloudinary.com"

// 錯誤
var (
	ErrEmptyPublicID = errors.New("public id is empty")
	ErrUnknownKind   = errors.New("unknown transformation kind")
	ErrUnknownFormat = errors.New("unknown social format")
)

// Params kind 需要的額外參數
type Params struct {
	SocialFormat string // social-crop 使用
	Title        string // 影片下載檔名使用
}

type recipe struct {
	resourceType string
	transform    func(Params) (string, error)
}

func fixed(s string) func(Params) (string, error) {
	return func(Params) (string, error) { return s, nil }
}

var recipes = map[domain.Kind]recipe{
	domain.KindEnhance:           {"image", fixed("e_enhance")},
	domain.KindBackgroundRemoval: {"image", fixed("e_background_removal")},
	domain.KindSocialCrop: {"image", func(p Params) (string, error) {
		f, err := domain.LookupSocialFormat(p.SocialFormat)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnknownFormat, p.SocialFormat)
		}
		return fmt.Sprintf("c_fill,w_%d,h_%d,ar_%s,g_auto", f.Width, f.Height, f.AspectRatio), nil
	}},
	domain.KindThumbnail: {"video", fixed("c_fill,w_400,h_225,g_auto/f_jpg,q_auto")},
	domain.KindPreview:   {"video", fixed("c_limit,w_400,h_225/e_preview:duration_15:max_seg_9:min_seg_dur_1")},
	domain.KindFull:      {"video", fixed("c_limit,w_1920,h_1080")},
	domain.KindOriginal:  {"image", fixed("")},
}

// Builder 組出 <base>/<cloud>/<resource-type>/upload/<transform>/<publicId>，不做任何網路請求
type Builder struct {
	base  string
	cloud string
}

// NewBuilder create url builder
func NewBuilder(baseURL, cloudName string) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{base: strings.TrimRight(baseURL, "/"), cloud: cloudName}
}

// Build 同樣的輸入永遠得到同樣的網址
func (b *Builder) Build(publicID string, kind domain.Kind, p Params) (string, error) {
	if strings.TrimSpace(publicID) == "" {
		return "", ErrEmptyPublicID
	}
	r, ok := recipes[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	transform, err := r.transform(p)
	if err != nil {
		return "", err
	}

	parts := []string{b.base, url.PathEscape(b.cloud), r.resourceType, "upload"}
	if transform != "" {
		parts = append(parts, transform)
	}
	parts = append(parts, escapePublicID(publicID))
	return strings.Join(parts, "/"), nil
}

// DownloadName 下載時使用的檔名
func DownloadName(kind domain.Kind, p Params) string {
	switch kind {
	case domain.KindEnhance:
		return domain.EnhancedFileName
	case domain.KindBackgroundRemoval:
		return domain.NoBackgroundFileName
	case domain.KindSocialCrop:
		if f, err := domain.LookupSocialFormat(p.SocialFormat); err == nil {
			return f.FileName()
		}
	case domain.KindFull, domain.KindPreview:
		return domain.VideoFileName(p.Title)
	case domain.KindThumbnail:
		return p.Title + ".jpg"
	}
	return "download"
}

// public id 可帶資料夾，每段分別 escape 保留 "/"
func escapePublicID(id string) string {
	segs := strings.Split(id, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
