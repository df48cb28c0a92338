package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

type postgresGateway struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

// NewPostgresGateway persists the portfolio in the profile_settings and portfolio_items tables.
// Row ids are generated by the database.
func NewPostgresGateway(db *pgxpool.Pool, log logger.Logger) portfolio.Gateway {
	return &postgresGateway{db: db, logger: log}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const profileColumns = `id::text, name, title, bio, profile_image, discord_username, discord_server_link, water_pulse_mode, updated_at`

var itemColumns = []string{
	"id::text",
	"title",
	"type",
	"COALESCE(youtube_url, '')",
	"COALESCE(image_url, '')",
	"COALESCE(thumbnail_url, '')",
	"sort_order",
	"created_at",
}

func sourceColumn(kind portfolio.Kind) string {
	if kind == portfolio.KindVideo {
		return "youtube_url"
	}
	return "image_url"
}

func nullIfEmpty(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func scanItem(row pgx.Row) (*portfolio.Item, error) {
	it := &portfolio.Item{}
	var kind, youtubeURL, imageURL string

	err := row.Scan(
		&it.ID,
		&it.Title,
		&kind,
		&youtubeURL,
		&imageURL,
		&it.CustomThumbnailURL,
		&it.SortOrder,
		&it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Kind = portfolio.Kind(kind)
	if it.Kind == portfolio.KindVideo {
		it.SourceURL = youtubeURL
	} else {
		it.SourceURL = imageURL
	}
	return it, nil
}

func (g *postgresGateway) FetchProfile(ctx context.Context) (*portfolio.ProfileSettings, error) {
	query := `SELECT ` + profileColumns + ` FROM profile_settings ORDER BY updated_at DESC LIMIT 1`

	p := &portfolio.ProfileSettings{}
	var mode string
	err := g.db.QueryRow(ctx, query).Scan(
		&p.ID,
		&p.Name,
		&p.Title,
		&p.Bio,
		&p.ProfileImageURL,
		&p.ContactHandle,
		&p.ContactLink,
		&mode,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("profile", "latest")
		}
		return nil, mapPgError(err, "failed to query profile", "profile", "latest")
	}

	p.DisplayMode = portfolio.DisplayMode(mode)
	if p.DisplayMode.Validate() != nil {
		g.logger.Warn("Unknown display mode in profile, using default", zap.String("profile_id", p.ID), zap.String("mode", mode))
		p.DisplayMode = portfolio.DisplayModeRipple
	}
	return p, nil
}

func (g *postgresGateway) FetchItems(ctx context.Context) ([]*portfolio.Item, error) {
	sql, args, err := psql.Select(itemColumns...).
		From("portfolio_items").
		OrderBy("sort_order ASC", "created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list items query", err)
	}

	rows, err := g.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query portfolio items", "portfolio item", "")
	}
	defer rows.Close()

	items := make([]*portfolio.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, apperror.NewTransport("failed to scan portfolio item row", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating portfolio item rows", "portfolio item", "")
	}
	return items, nil
}

// UpsertProfile updates the target row (p.ID, or the latest row when p.ID is empty) and
// inserts a fresh row when there is nothing to update, including when the target was
// deleted between read and write.
func (g *postgresGateway) UpsertProfile(ctx context.Context, p *portfolio.ProfileSettings) (string, error) {
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	targetID := p.ID
	if targetID == "" {
		err := g.db.QueryRow(ctx, `SELECT id::text FROM profile_settings ORDER BY updated_at DESC LIMIT 1`).Scan(&targetID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return "", mapPgError(err, "failed to look up profile", "profile", "latest")
		}
	}

	if targetID != "" {
		query := `
			UPDATE profile_settings SET
				name = $2, title = $3, bio = $4, profile_image = $5, discord_username = $6,
				discord_server_link = $7, water_pulse_mode = $8, updated_at = $9
			WHERE id = $1
		`
		cmdTag, err := g.db.Exec(ctx, query,
			targetID, p.Name, p.Title, p.Bio, p.ProfileImageURL,
			p.ContactHandle, p.ContactLink, string(p.DisplayMode), updatedAt,
		)
		if err != nil {
			mapped := mapPgError(err, "failed to update profile", "profile", targetID)
			if !errors.Is(mapped, apperror.ErrNotFound) {
				return "", mapped
			}
		} else if cmdTag.RowsAffected() > 0 {
			return targetID, nil
		}
		g.logger.Warn("Profile row vanished before update, inserting a new one", zap.String("profile_id", targetID))
	}

	query := `
		INSERT INTO profile_settings (name, title, bio, profile_image, discord_username, discord_server_link, water_pulse_mode, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text
	`
	var id string
	err := g.db.QueryRow(ctx, query,
		p.Name, p.Title, p.Bio, p.ProfileImageURL,
		p.ContactHandle, p.ContactLink, string(p.DisplayMode), updatedAt,
	).Scan(&id)
	if err != nil {
		return "", mapPgError(err, "failed to insert profile", "profile", "")
	}
	return id, nil
}

func (g *postgresGateway) InsertItem(ctx context.Context, kind portfolio.Kind, f portfolio.ItemFields) (*portfolio.Item, error) {
	sql, args, err := psql.Insert("portfolio_items").
		Columns("title", "type", sourceColumn(kind), "thumbnail_url", "sort_order").
		Values(strings.TrimSpace(f.Title), string(kind), nullIfEmpty(f.SourceURL), nullIfEmpty(f.CustomThumbnailURL), f.SortOrder).
		Suffix("RETURNING " + strings.Join(itemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build insert item query", err)
	}

	it, err := scanItem(g.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapPgError(err, "failed to insert portfolio item", "portfolio item", "")
	}
	return it, nil
}

func (g *postgresGateway) UpdateItem(ctx context.Context, id string, patch portfolio.ItemPatch) error {
	if patch.IsEmpty() {
		return g.ensureItemExists(ctx, id)
	}

	builder := psql.Update("portfolio_items").Where(sq.Eq{"id": id})
	if patch.Title != nil {
		builder = builder.Set("title", strings.TrimSpace(*patch.Title))
	}
	if patch.SourceURL != nil {
		v := nullIfEmpty(*patch.SourceURL)
		builder = builder.
			Set("youtube_url", sq.Expr("CASE WHEN type = 'video' THEN ? ELSE youtube_url END", v)).
			Set("image_url", sq.Expr("CASE WHEN type = 'design' THEN ? ELSE image_url END", v))
	}
	if patch.CustomThumbnailURL != nil {
		builder = builder.Set("thumbnail_url", nullIfEmpty(*patch.CustomThumbnailURL))
	}
	if patch.SortOrder != nil {
		builder = builder.Set("sort_order", *patch.SortOrder)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update item query", err)
	}

	cmdTag, err := g.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapPgError(err, "failed to update portfolio item", "portfolio item", id)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("portfolio item", id)
	}
	return nil
}

func (g *postgresGateway) ensureItemExists(ctx context.Context, id string) error {
	var exists bool
	err := g.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM portfolio_items WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return mapPgError(err, "failed to check portfolio item", "portfolio item", id)
	}
	if !exists {
		return apperror.NewNotFound("portfolio item", id)
	}
	return nil
}

func (g *postgresGateway) DeleteItem(ctx context.Context, id string) error {
	cmdTag, err := g.db.Exec(ctx, `DELETE FROM portfolio_items WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err, "failed to delete portfolio item", "portfolio item", id)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("portfolio item", id)
	}
	return nil
}
