package domain

import (
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

// 欄位長度限制
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Video 影片中繼資料，建立後不再修改
type Video struct {
	ID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string    `gorm:"size:100;not null"`
	Description    string    `gorm:"size:500"`
	PublicID       string    `gorm:"not null;uniqueIndex"`
	OriginalSize   int64     `gorm:"not null"`
	CompressedSize int64     `gorm:"not null"`
	Duration       float64   `gorm:"not null"`
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

// TableName gorm table name
func (Video) TableName() string {
	return "videos"
}

// VideoView 給前端的欄位命名，數值以字串表示
type VideoView struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	PublicID       string    `json:"publicId"`
	OriginalSize   string    `json:"originalSize"`
	CompressedSize string    `json:"compressedSize"`
	Duration       string    `json:"duration"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ToView convert to client casing
func (v Video) ToView() VideoView {
	return VideoView{
		ID:             v.ID,
		Title:          v.Title,
		Description:    v.Description,
		PublicID:       v.PublicID,
		OriginalSize:   strconv.FormatInt(v.OriginalSize, 10),
		CompressedSize: strconv.FormatInt(v.CompressedSize, 10),
		Duration:       strconv.FormatFloat(v.Duration, 'f', -1, 64),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

// ToViews convert list
func ToViews(videos []Video) []VideoView {
	out := make([]VideoView, len(videos))
	for i, v := range videos {
		out[i] = v.ToView()
	}
	return out
}

// UploadVideoReq usecase upload video request
type UploadVideoReq struct {
	Title        string
	Description  string
	FileName     string
	Size         int64
	DeclaredSize string // originalSize form field, may be empty
	File         io.ReadSeeker
}

// UploadImageReq usecase upload image request
type UploadImageReq struct {
	FileName string
	Size     int64
	File     io.ReadSeeker
}

// UploadImageRes usecase upload image response
type UploadImageRes struct {
	PublicID string `json:"publicId"`
}

// DefaultTitle 標題留空時使用檔名（去掉副檔名）
func DefaultTitle(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Truncate 以字元為單位截斷
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
