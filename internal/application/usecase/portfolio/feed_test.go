package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

type staticSnapshot Snapshot

func (s staticSnapshot) Snapshot() Snapshot { return Snapshot(s) }

func TestFeedUseCase_Execute(t *testing.T) {
	snap := staticSnapshot{
		Profile: portfolio.DefaultProfile(),
		Videos: []portfolio.Item{
			{ID: "v1", Title: "Reel", Kind: portfolio.KindVideo, SourceURL: "https://youtu.be/abc"},
			{ID: "v2", Title: "Draft", Kind: portfolio.KindVideo},
		},
		Designs: []portfolio.Item{
			{ID: "d1", Title: "Poster <1>", Kind: portfolio.KindDesign, SourceURL: "https://cdn.example.com/p.png"},
		},
	}

	feed := NewFeedUseCase(snap, "https://portfolio.example.com", logger.NewNop()).Execute()

	require.Len(t, feed.Items, 3)
	assert.Equal(t, "Your Name - Video Editor & Graphic Designer", feed.Title)

	assert.Equal(t, "https://www.youtube.com/watch?v=abc", feed.Items[0].Link.Href)
	assert.Contains(t, feed.Items[0].Description, "https://img.youtube.com/vi/abc/maxresdefault.jpg")

	assert.Equal(t, "https://portfolio.example.com", feed.Items[1].Link.Href)
	assert.Empty(t, feed.Items[1].Description)

	assert.Equal(t, "https://cdn.example.com/p.png", feed.Items[2].Link.Href)
	assert.Contains(t, feed.Items[2].Description, "Poster &lt;1&gt;")

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.Contains(t, rss, "<title>Reel</title>")
}
