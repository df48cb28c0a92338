package portfolio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestItemValidate(t *testing.T) {
	cases := []struct {
		name    string
		item    Item
		wantErr error
	}{
		{"video without link", Item{Kind: KindVideo, Title: "A"}, nil},
		{"video with link", Item{Kind: KindVideo, Title: "A", SourceURL: "https://youtu.be/abc"}, nil},
		{"design with image", Item{Kind: KindDesign, Title: "Poster", SourceURL: "https://cdn.example.com/p.png"}, nil},
		{"missing title", Item{Kind: KindVideo}, ErrTitleRequired},
		{"title too long", Item{Kind: KindDesign, Title: strings.Repeat("x", MaxTitleLength+1)}, ErrTitleTooLong},
		{"bad kind", Item{Kind: "audio", Title: "A"}, ErrInvalidKind},
		{"video link not youtube", Item{Kind: KindVideo, Title: "A", SourceURL: "https://vimeo.com/1"}, ErrInvalidVideoURL},
		{"design relative link", Item{Kind: KindDesign, Title: "A", SourceURL: "/img.png"}, ErrInvalidURL},
		{"bad custom thumbnail", Item{Kind: KindVideo, Title: "A", CustomThumbnailURL: "ftp://x/y.png"}, ErrInvalidURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.item.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestItemApply_KeepsUntouchedFields(t *testing.T) {
	orig := Item{ID: "1", Title: "A", Kind: KindVideo, SourceURL: "https://youtu.be/abc", SortOrder: 3}

	got := orig.Apply(ItemPatch{Title: strPtr("  B  ")})

	assert.Equal(t, "B", got.Title)
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.Kind, got.Kind)
	assert.Equal(t, orig.SourceURL, got.SourceURL)
	assert.Equal(t, orig.SortOrder, got.SortOrder)
	assert.Equal(t, "A", orig.Title)
}

func TestItemDisplayThumbnail(t *testing.T) {
	video := Item{Kind: KindVideo, SourceURL: "https://www.youtube.com/watch?v=abc"}
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", video.DisplayThumbnail())

	video.CustomThumbnailURL = "https://cdn.example.com/custom.jpg"
	assert.Equal(t, "https://cdn.example.com/custom.jpg", video.DisplayThumbnail())

	design := Item{Kind: KindDesign, SourceURL: "https://cdn.example.com/d.png"}
	assert.Equal(t, "https://cdn.example.com/d.png", design.DisplayThumbnail())

	empty := Item{Kind: KindVideo}
	assert.Empty(t, empty.DisplayThumbnail())

	_, ok := design.VideoID()
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Video ")
	assert.NoError(t, err)
	assert.Equal(t, KindVideo, k)

	_, err = ParseKind("podcast")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestProfileApplyAndValidate(t *testing.T) {
	p := DefaultProfile()
	mode := DisplayModePulse

	got := p.Apply(ProfilePatch{Name: strPtr("Ada"), DisplayMode: &mode})

	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, DisplayModePulse, got.DisplayMode)
	assert.Equal(t, p.Bio, got.Bio)
	assert.NoError(t, got.Validate())

	bad := got.Apply(ProfilePatch{ContactLink: strPtr("discord.gg/x")})
	assert.ErrorIs(t, bad.Validate(), ErrInvalidURL)

	badMode := DisplayMode("wave")
	assert.ErrorIs(t, got.Apply(ProfilePatch{DisplayMode: &badMode}).Validate(), ErrInvalidDisplayMode)
}
