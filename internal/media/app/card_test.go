package app

import (
	"testing"
	"time"

	"renderbox/internal/media/delivery"
	"renderbox/internal/media/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:30", FormatDuration(30))
	assert.Equal(t, "1:00", FormatDuration(59.6))
	assert.Equal(t, "2:05", FormatDuration(125.2))
	assert.Equal(t, "61:01", FormatDuration(3661))
	assert.Equal(t, "0:00", FormatDuration(-3))
}

func TestCompressionPercent(t *testing.T) {
	tests := []struct {
		name      string
		o, c      int64
		want      int
		wantShown bool
	}{
		{"正常壓縮", 10485760, 4194304, 60, true},
		{"壓縮後變大", 100, 150, 0, false},
		{"相同大小", 100, 100, 0, false},
		{"原始為 0", 0, 0, 0, false},
		{"四捨五入", 3, 2, 33, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, shown := CompressionPercent(tt.o, tt.c)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantShown, shown)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}

func TestBuildCards(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	videos := []domain.Video{
		{ID: "1", Title: "demo", PublicID: "abc123", OriginalSize: 10485760, CompressedSize: 4194304, Duration: 30, CreatedAt: at.Add(-2 * time.Hour)},
		{ID: "2", Title: "big", PublicID: "", OriginalSize: 100, CompressedSize: 200, Duration: 90},
	}

	cards := BuildCards(videos, delivery.NewBuilder("", "demo"), at)
	require.Len(t, cards, 2)

	c := cards[0]
	assert.Equal(t, "https://res.cloudinary.com/demo/video/upload/c_fill,w_400,h_225,g_auto/f_jpg,q_auto/abc123", c.ThumbnailURL)
	assert.Contains(t, c.PreviewURL, "e_preview:duration_15")
	assert.Contains(t, c.DownloadURL, "c_limit,w_1920,h_1080")
	assert.Equal(t, "demo.mp4", c.DownloadName)
	assert.Equal(t, "10 MB", c.OriginalSize)
	assert.Equal(t, "4.2 MB", c.CompressedSize)
	assert.Equal(t, "0:30", c.Duration)
	assert.True(t, c.ShowCompression)
	assert.Equal(t, 60, c.Compression)
	assert.Equal(t, "2 hours ago", c.UploadedAgo)

	assert.Empty(t, cards[1].ThumbnailURL)
	assert.False(t, cards[1].ShowCompression)
	assert.Equal(t, "1:30", cards[1].Duration)
}
