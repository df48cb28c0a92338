package portfolio

import (
	"fmt"
	"html"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
	"github.com/khoahotran/portfolio-hub/pkg/videourl"
)

type SnapshotReader interface {
	Snapshot() Snapshot
}

// FeedUseCase renders the cached portfolio as an RSS/Atom feed. It never touches the gateway.
type FeedUseCase struct {
	store     SnapshotReader
	publicURL string
	logger    logger.Logger
}

func NewFeedUseCase(store SnapshotReader, publicURL string, log logger.Logger) *FeedUseCase {
	return &FeedUseCase{store: store, publicURL: publicURL, logger: log}
}

func (uc *FeedUseCase) Execute() *feeds.Feed {
	snap := uc.store.Snapshot()

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - %s", snap.Profile.Name, snap.Profile.Title),
		Link:        &feeds.Link{Href: uc.publicURL},
		Description: snap.Profile.Bio,
		Author:      &feeds.Author{Name: snap.Profile.Name},
		Created:     time.Now(),
	}
	if !snap.Profile.UpdatedAt.IsZero() {
		feed.Updated = snap.Profile.UpdatedAt
	}

	items := make([]*feeds.Item, 0, len(snap.Videos)+len(snap.Designs))
	for _, v := range snap.Videos {
		link := v.SourceURL
		if watch, ok := videourl.WatchURL(v.SourceURL); ok {
			link = watch
		}
		items = append(items, uc.toFeedItem(v, link))
	}
	for _, d := range snap.Designs {
		items = append(items, uc.toFeedItem(d, d.SourceURL))
	}
	feed.Items = items

	uc.logger.Debug("Portfolio feed generated", zap.Int("item_count", len(items)))
	return feed
}

func (uc *FeedUseCase) toFeedItem(it portfolio.Item, link string) *feeds.Item {
	if link == "" {
		link = uc.publicURL
	}
	item := &feeds.Item{
		Id:      it.ID,
		Title:   it.Title,
		Link:    &feeds.Link{Href: link},
		Created: it.CreatedAt,
	}
	if thumb := it.DisplayThumbnail(); thumb != "" {
		item.Description = fmt.Sprintf(`<img src="%s" alt="%s"/>`, html.EscapeString(thumb), html.EscapeString(it.Title))
	}
	return item
}
