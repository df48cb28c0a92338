package portfolio

import "context"

// Gateway is the boundary between the state store and whatever persists records.
// Implementations do not retry or cache; every failure is returned as an apperror
// (ErrNotFound, ErrTransport or ErrInvalidInput).
type Gateway interface {
	// FetchProfile returns the most recently updated profile, or ErrNotFound.
	FetchProfile(ctx context.Context) (*ProfileSettings, error)
	// FetchItems returns all items ordered by sort_order, ties by creation order.
	FetchItems(ctx context.Context) ([]*Item, error)
	// UpsertProfile updates the existing profile row or inserts one, returning its id.
	UpsertProfile(ctx context.Context, p *ProfileSettings) (string, error)
	InsertItem(ctx context.Context, kind Kind, fields ItemFields) (*Item, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) error
	DeleteItem(ctx context.Context, id string) error
}
