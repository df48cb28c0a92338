package persistence

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

// profileRecord and itemRecord mirror the relational rows so both backends store the same shape.
type profileRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Title             string    `json:"title"`
	Bio               string    `json:"bio"`
	ProfileImage      string    `json:"profile_image"`
	DiscordUsername   string    `json:"discord_username"`
	DiscordServerLink string    `json:"discord_server_link"`
	WaterPulseMode    string    `json:"water_pulse_mode"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type itemRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	YoutubeURL   string    `json:"youtube_url,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func toItemRecord(it portfolio.Item) itemRecord {
	rec := itemRecord{
		ID:           it.ID,
		Title:        it.Title,
		Type:         string(it.Kind),
		ThumbnailURL: it.CustomThumbnailURL,
		SortOrder:    it.SortOrder,
		CreatedAt:    it.CreatedAt,
	}
	if it.Kind == portfolio.KindVideo {
		rec.YoutubeURL = it.SourceURL
	} else {
		rec.ImageURL = it.SourceURL
	}
	return rec
}

func (r itemRecord) toDomain() portfolio.Item {
	it := portfolio.Item{
		ID:                 r.ID,
		Title:              r.Title,
		Kind:               portfolio.Kind(r.Type),
		CustomThumbnailURL: r.ThumbnailURL,
		SortOrder:          r.SortOrder,
		CreatedAt:          r.CreatedAt,
	}
	if it.Kind == portfolio.KindVideo {
		it.SourceURL = r.YoutubeURL
	} else {
		it.SourceURL = r.ImageURL
	}
	return it
}

type redisGateway struct {
	client *redis.Client
	prefix string
	logger logger.Logger
	now    func() time.Time
}

// NewRedisGateway is the local-only persistence mode: the same contract as the postgres
// gateway, backed by a key-value store, with time-ordered ids generated on this side.
func NewRedisGateway(client *redis.Client, prefix string, log logger.Logger) portfolio.Gateway {
	return &redisGateway{
		client: client,
		prefix: prefix,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (g *redisGateway) profileKey() string { return g.prefix + "profile_settings" }
func (g *redisGateway) itemsKey() string   { return g.prefix + "portfolio_items" }

func (g *redisGateway) FetchProfile(ctx context.Context) (*portfolio.ProfileSettings, error) {
	raw, err := g.client.Get(ctx, g.profileKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.NewNotFound("profile", "latest")
		}
		return nil, apperror.NewTransport("failed to read profile", err)
	}

	var rec profileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, apperror.NewTransport("stored profile is corrupt", err)
	}

	p := &portfolio.ProfileSettings{
		ID:              rec.ID,
		Name:            rec.Name,
		Title:           rec.Title,
		Bio:             rec.Bio,
		ProfileImageURL: rec.ProfileImage,
		ContactHandle:   rec.DiscordUsername,
		ContactLink:     rec.DiscordServerLink,
		DisplayMode:     portfolio.DisplayMode(rec.WaterPulseMode),
		UpdatedAt:       rec.UpdatedAt,
	}
	if p.DisplayMode.Validate() != nil {
		p.DisplayMode = portfolio.DisplayModeRipple
	}
	return p, nil
}

func (g *redisGateway) FetchItems(ctx context.Context) ([]*portfolio.Item, error) {
	raw, err := g.client.HGetAll(ctx, g.itemsKey()).Result()
	if err != nil {
		return nil, apperror.NewTransport("failed to read portfolio items", err)
	}

	items := make([]*portfolio.Item, 0, len(raw))
	for id, data := range raw {
		var rec itemRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			g.logger.Warn("Skipping corrupt portfolio item", zap.String("item_id", id), zap.Error(err))
			continue
		}
		it := rec.toDomain()
		items = append(items, &it)
	}

	slices.SortFunc(items, func(a, b *portfolio.Item) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (g *redisGateway) UpsertProfile(ctx context.Context, p *portfolio.ProfileSettings) (string, error) {
	id := p.ID
	if id == "" {
		existing, err := g.FetchProfile(ctx)
		switch {
		case err == nil:
			id = existing.ID
		case errors.Is(err, apperror.ErrNotFound):
			id = newID()
		default:
			return "", err
		}
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = g.now()
	}
	data, err := json.Marshal(profileRecord{
		ID:                id,
		Name:              p.Name,
		Title:             p.Title,
		Bio:               p.Bio,
		ProfileImage:      p.ProfileImageURL,
		DiscordUsername:   p.ContactHandle,
		DiscordServerLink: p.ContactLink,
		WaterPulseMode:    string(p.DisplayMode),
		UpdatedAt:         updatedAt,
	})
	if err != nil {
		return "", apperror.NewInternal("failed to encode profile", err)
	}

	if err := g.client.Set(ctx, g.profileKey(), data, 0).Err(); err != nil {
		return "", apperror.NewTransport("failed to write profile", err)
	}
	return id, nil
}

func (g *redisGateway) InsertItem(ctx context.Context, kind portfolio.Kind, f portfolio.ItemFields) (*portfolio.Item, error) {
	it := portfolio.NewItem(kind, f)
	it.ID = newID()
	it.CreatedAt = g.now()

	data, err := json.Marshal(toItemRecord(it))
	if err != nil {
		return nil, apperror.NewInternal("failed to encode portfolio item", err)
	}

	if err := g.client.HSet(ctx, g.itemsKey(), it.ID, data).Err(); err != nil {
		return nil, apperror.NewTransport("failed to write portfolio item", err)
	}
	return &it, nil
}

// UpdateItem runs read-modify-write under WATCH so a concurrent delete cannot be resurrected.
func (g *redisGateway) UpdateItem(ctx context.Context, id string, patch portfolio.ItemPatch) error {
	key := g.itemsKey()

	err := g.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, id).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperror.NewNotFound("portfolio item", id)
			}
			return apperror.NewTransport("failed to read portfolio item", err)
		}

		var rec itemRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return apperror.NewTransport("stored portfolio item is corrupt", err)
		}
		data, err := json.Marshal(toItemRecord(rec.toDomain().Apply(patch)))
		if err != nil {
			return apperror.NewInternal("failed to encode portfolio item", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, data)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case apperror.Is(err):
		return err
	case errors.Is(err, redis.TxFailedErr):
		return apperror.NewTransport("portfolio item changed during update", err)
	default:
		return apperror.NewTransport("failed to update portfolio item", err)
	}
}

func (g *redisGateway) DeleteItem(ctx context.Context, id string) error {
	n, err := g.client.HDel(ctx, g.itemsKey(), id).Result()
	if err != nil {
		return apperror.NewTransport("failed to delete portfolio item", err)
	}
	if n == 0 {
		return apperror.NewNotFound("portfolio item", id)
	}
	return nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
