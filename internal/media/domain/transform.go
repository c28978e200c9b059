package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind 轉換種類
type Kind string

// Kinds
const (
	KindEnhance           Kind = "enhance"
	KindBackgroundRemoval Kind = "background-removal"
	KindSocialCrop        Kind = "social-crop"
	KindThumbnail         Kind = "thumbnail"
	KindPreview           Kind = "preview"
	KindFull              Kind = "full"
	KindOriginal          Kind = "original"
)

// Kinds all supported kinds in a stable order
var Kinds = []Kind{
	KindEnhance, KindBackgroundRemoval, KindSocialCrop,
	KindThumbnail, KindPreview, KindFull, KindOriginal,
}

// ParseKind validate kind name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown transformation kind %q", s)
}

// SocialFormat 社群尺寸
type SocialFormat struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	AspectRatio string `json:"aspectRatio"`
}

// SocialFormats 固定尺寸表
var SocialFormats = []SocialFormat{
	{Name: "Instagram Square", Width: 1080, Height: 1080, AspectRatio: "1:1"},
	{Name: "Instagram Portrait", Width: 1080, Height: 1350, AspectRatio: "4:5"},
	{Name: "Twitter Post", Width: 1200, Height: 675, AspectRatio: "16:9"},
	{Name: "Twitter Header", Width: 1500, Height: 500, AspectRatio: "3:1"},
	{Name: "Facebook Cover", Width: 820, Height: 312, AspectRatio: "205:78"},
}

// LookupSocialFormat find format by name
func LookupSocialFormat(name string) (SocialFormat, error) {
	for _, f := range SocialFormats {
		if f.Name == name {
			return f, nil
		}
	}
	return SocialFormat{}, fmt.Errorf("unknown social format %q", name)
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName 下載檔名，例如 instagram_square.png
func (f SocialFormat) FileName() string {
	return whitespace.ReplaceAllString(strings.ToLower(f.Name), "_") + ".png"
}

// 下載檔名
const (
	EnhancedFileName     = "enhanced.png"
	NoBackgroundFileName = "no-background.png"
)

// VideoFileName 影片下載檔名
func VideoFileName(title string) string {
	return title + ".mp4"
}
