package delivery

import (
	"testing"

	"renderbox/internal/media/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	b := NewBuilder("", "demo")

	tests := []struct {
		name string
		kind domain.Kind
		p    Params
		want string
	}{
		{"enhance", domain.KindEnhance, Params{}, "https://res.cloudinary.com/demo/image/upload/e_enhance/abc123"},
		{"background-removal", domain.KindBackgroundRemoval, Params{}, "https://res.cloudinary.com/demo/image/upload/e_background_removal/abc123"},
		{"social-crop", domain.KindSocialCrop, Params{SocialFormat: "Twitter Post"}, "https://res.cloudinary.com/demo/image/upload/c_fill,w_1200,h_675,ar_16:9,g_auto/abc123"},
		{"thumbnail", domain.KindThumbnail, Params{}, "https://res.cloudinary.com/demo/video/upload/c_fill,w_400,h_225,g_auto/f_jpg,q_auto/abc123"},
		{"preview", domain.KindPreview, Params{}, "https://res.cloudinary.com/demo/video/upload/c_limit,w_400,h_225/e_preview:duration_15:max_seg_9:min_seg_dur_1/abc123"},
		{"full", domain.KindFull, Params{}, "https://res.cloudinary.com/demo/video/upload/c_limit,w_1920,h_1080/abc123"},
		{"original", domain.KindOriginal, Params{}, "https://res.cloudinary.com/demo/image/upload/abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build("abc123", tt.kind, tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_PureAndDistinct(t *testing.T) {
	b := NewBuilder("https://cdn.example.com/", "demo")
	seen := map[string]domain.Kind{}

	for _, k := range domain.Kinds {
		p := Params{SocialFormat: "Instagram Square"}
		first, err := b.Build("folder/abc 1", k, p)
		require.NoError(t, err)
		again, _ := b.Build("folder/abc 1", k, p)
		assert.Equal(t, first, again, "same input must give same url")

		if prev, dup := seen[first]; dup {
			t.Fatalf("kind %s and %s share url %s", prev, k, first)
		}
		seen[first] = k
		assert.Contains(t, first, "https://cdn.example.com/demo/")
		assert.Contains(t, first, "/folder/abc%201")
	}
}

func TestBuild_Errors(t *testing.T) {
	b := NewBuilder("", "demo")

	_, err := b.Build(" ", domain.KindEnhance, Params{})
	assert.ErrorIs(t, err, ErrEmptyPublicID)

	_, err = b.Build("abc", domain.Kind("sepia"), Params{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = b.Build("abc", domain.KindSocialCrop, Params{SocialFormat: "Myspace"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "enhanced.png", DownloadName(domain.KindEnhance, Params{}))
	assert.Equal(t, "no-background.png", DownloadName(domain.KindBackgroundRemoval, Params{}))
	assert.Equal(t, "facebook_cover.png", DownloadName(domain.KindSocialCrop, Params{SocialFormat: "Facebook Cover"}))
	assert.Equal(t, "demo.mp4", DownloadName(domain.KindFull, Params{Title: "demo"}))
	assert.Equal(t, "download", DownloadName(domain.KindOriginal, Params{}))
}
