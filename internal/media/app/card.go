package app

import (
	"fmt"
	"math"
	"time"

	"renderbox/internal/media/delivery"
	"renderbox/internal/media/domain"
	"renderbox/pkg/logger"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// VideoCard gallery 卡片顯示資料
type VideoCard struct {
	ID           string
	Title        string
	Description  string
	PublicID     string
	ThumbnailURL string
	PreviewURL   string
	DownloadURL  string
	DownloadName string

	OriginalSize    string
	CompressedSize  string
	Duration        string
	Compression     int
	ShowCompression bool
	UploadedAgo     string
}

// FormatDuration 秒數先四捨五入再轉 m:ss
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// CompressionPercent round((1-c/o)*100)，只有 c < o 時才顯示
func CompressionPercent(original, compressed int64) (int, bool) {
	if original <= 0 || compressed < 0 || compressed >= original {
		return 0, false
	}
	return int(math.Round((1 - float64(compressed)/float64(original)) * 100)), true
}

// FormatBytes 人類可讀大小
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// BuildCards 轉成卡片，單一網址組不出來時該欄位留空由頁面顯示 fallback
func BuildCards(videos []domain.Video, b *delivery.Builder, at time.Time) []VideoCard {
	cards := make([]VideoCard, 0, len(videos))
	for _, v := range videos {
		pct, show := CompressionPercent(v.OriginalSize, v.CompressedSize)
		card := VideoCard{
			ID:              v.ID,
			Title:           v.Title,
			Description:     v.Description,
			PublicID:        v.PublicID,
			DownloadName:    delivery.DownloadName(domain.KindFull, delivery.Params{Title: v.Title}),
			OriginalSize:    FormatBytes(v.OriginalSize),
			CompressedSize:  FormatBytes(v.CompressedSize),
			Duration:        FormatDuration(v.Duration),
			Compression:     pct,
			ShowCompression: show,
			UploadedAgo:     humanize.RelTime(v.CreatedAt, at, "ago", "from now"),
		}
		card.ThumbnailURL = buildOrEmpty(b, v.PublicID, domain.KindThumbnail)
		card.PreviewURL = buildOrEmpty(b, v.PublicID, domain.KindPreview)
		card.DownloadURL = buildOrEmpty(b, v.PublicID, domain.KindFull)
		cards = append(cards, card)
	}
	return cards
}

func buildOrEmpty(b *delivery.Builder, publicID string, kind domain.Kind) string {
	u, err := b.Build(publicID, kind, delivery.Params{})
	if err != nil {
		logger.Log.Debug("card url unavailable", zap.String("public_id", publicID), zap.String("kind", string(kind)), zap.Error(err))
		return ""
	}
	return u
}
