package portfolio

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

var tracer = otel.Tracer("portfolio_store")

// Snapshot is a consistent copy of the cached content. Callers own it.
type Snapshot struct {
	Profile portfolio.ProfileSettings
	Videos  []portfolio.Item
	Designs []portfolio.Item
	Loading bool
}

// Store is the in-memory source of truth for portfolio content.
//
// Every mutation is write-through: the gateway is called first and the cache changes only
// after the gateway confirms. A failed write leaves the cache exactly as it was. The mutex
// only guards the cache; it is never held across a gateway call, so overlapping requests
// race at the gateway and each resolves on its own.
type Store struct {
	gateway  portfolio.Gateway
	notifier portfolio.ChangeNotifier
	logger   logger.Logger
	now      func() time.Time

	mu      sync.RWMutex
	profile portfolio.ProfileSettings
	videos  []portfolio.Item
	designs []portfolio.Item
	loading bool
}

func NewStore(gw portfolio.Gateway, notifier portfolio.ChangeNotifier, log logger.Logger) *Store {
	if notifier == nil {
		notifier = portfolio.NopNotifier{}
	}
	return &Store{
		gateway:  gw,
		notifier: notifier,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
		profile:  portfolio.DefaultProfile(),
		videos:   []portfolio.Item{},
		designs:  []portfolio.Item{},
		loading:  true,
	}
}

// Initialize fetches the profile and all items and replaces the cache wholesale.
//
// Read failures are recovered locally: the failing part keeps its current cached value
// (built-in default profile and empty collections on the first load), loading is cleared
// and the joined error is returned for the caller to log or report.
func (s *Store) Initialize(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Initialize")
	defer span.End()

	var errs []error

	profile, profileOK := s.fetchProfile(ctx, &errs)

	var videos, designs []portfolio.Item
	items, err := s.gateway.FetchItems(ctx)
	itemsOK := err == nil
	if err != nil {
		s.logger.Error("Failed to fetch portfolio items, keeping cached collections", err)
		errs = append(errs, fmt.Errorf("fetch items failed: %w", err))
	} else {
		videos, designs = partition(items)
	}

	s.mu.Lock()
	if profileOK {
		s.profile = profile
	}
	if itemsOK {
		s.videos = videos
		s.designs = designs
	}
	s.loading = false
	videoCount, designCount := len(s.videos), len(s.designs)
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("videos", videoCount),
		attribute.Int("designs", designCount),
		attribute.Bool("items_loaded", itemsOK),
	)
	if len(errs) > 0 {
		joined := errors.Join(errs...)
		span.RecordError(joined)
		return joined
	}

	s.logger.Info("Portfolio store ready",
		zap.Int("videos", len(videos)),
		zap.Int("designs", len(designs)),
		zap.String("profile_id", profile.ID),
	)
	return nil
}

func (s *Store) fetchProfile(ctx context.Context, errs *[]error) (portfolio.ProfileSettings, bool) {
	p, err := s.gateway.FetchProfile(ctx)
	switch {
	case err == nil:
		return *p, true
	case errors.Is(err, apperror.ErrNotFound):
		s.logger.Info("No stored profile, using built-in default until first save")
		return portfolio.DefaultProfile(), true
	default:
		s.logger.Error("Failed to fetch profile, keeping cached profile", err)
		*errs = append(*errs, fmt.Errorf("fetch profile failed: %w", err))
		return portfolio.ProfileSettings{}, false
	}
}

// Refresh discards the cache and reloads everything from the gateway.
func (s *Store) Refresh(ctx context.Context) error {
	s.logger.Debug("Refreshing portfolio store")
	return s.Initialize(ctx)
}

func (s *Store) UpdateProfile(ctx context.Context, patch portfolio.ProfilePatch) (portfolio.ProfileSettings, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	s.mu.RLock()
	payload := s.profile.Apply(patch)
	s.mu.RUnlock()

	if err := payload.Validate(); err != nil {
		return portfolio.ProfileSettings{}, apperror.NewInvalidInput("profile validation failed", err)
	}
	payload.UpdatedAt = s.now()

	id, err := s.gateway.UpsertProfile(ctx, &payload)
	if err != nil {
		span.RecordError(err)
		return portfolio.ProfileSettings{}, fmt.Errorf("update profile failed: %w", err)
	}

	s.mu.Lock()
	updated := s.profile.Apply(patch)
	updated.ID = id
	updated.UpdatedAt = payload.UpdatedAt
	s.profile = updated
	s.mu.Unlock()

	s.notify(portfolio.ChangeEvent{Type: portfolio.ChangeProfileUpdated, ItemID: id})
	return updated, nil
}

// AddItem appends a new item to the kind's collection with sort_order equal to its current length.
func (s *Store) AddItem(ctx context.Context, kind portfolio.Kind, fields portfolio.ItemFields) (portfolio.Item, error) {
	ctx, span := tracer.Start(ctx, "AddItem")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(kind)))

	if err := kind.Validate(); err != nil {
		return portfolio.Item{}, apperror.NewInvalidInput("invalid item kind", err)
	}

	s.mu.RLock()
	fields.SortOrder = len(*s.collection(kind))
	s.mu.RUnlock()

	candidate := portfolio.NewItem(kind, fields)
	if err := candidate.Validate(); err != nil {
		return portfolio.Item{}, apperror.NewInvalidInput("item validation failed", err)
	}

	created, err := s.gateway.InsertItem(ctx, kind, candidate.Fields())
	if err != nil {
		span.RecordError(err)
		return portfolio.Item{}, fmt.Errorf("add %s failed: %w", kind, err)
	}

	s.mu.Lock()
	col := s.collection(kind)
	// a refresh may have loaded the new record while the insert was in flight
	if idx := indexOf(*col, created.ID); idx >= 0 {
		(*col)[idx] = *created
	} else {
		*col = append(*col, *created)
	}
	s.mu.Unlock()

	s.notify(portfolio.ChangeEvent{Type: portfolio.ChangeItemCreated, ItemID: created.ID, Kind: kind})
	return *created, nil
}

// UpdateItem patches the item with the given id. An id that is not cached is a no-op
// and returns (nil, nil); a gateway-side not-found is returned as an error.
func (s *Store) UpdateItem(ctx context.Context, id string, patch portfolio.ItemPatch) (*portfolio.Item, error) {
	ctx, span := tracer.Start(ctx, "UpdateItem")
	defer span.End()
	span.SetAttributes(attribute.String("item_id", id))

	s.mu.RLock()
	current, found := s.find(id)
	s.mu.RUnlock()
	if !found {
		s.logger.Debug("Update for unknown item ignored", zap.String("item_id", id))
		return nil, nil
	}

	if err := current.Apply(patch).Validate(); err != nil {
		return nil, apperror.NewInvalidInput("item validation failed", err)
	}

	if err := s.gateway.UpdateItem(ctx, id, patch); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update item failed: %w", err)
	}

	s.mu.Lock()
	var merged portfolio.Item
	col := s.collection(current.Kind)
	idx := indexOf(*col, id)
	if idx >= 0 {
		merged = (*col)[idx].Apply(patch)
		(*col)[idx] = merged
		if patch.SortOrder != nil {
			slices.SortStableFunc(*col, compareItems)
		}
	} else {
		// deleted by an overlapping request while the update was in flight
		merged = current.Apply(patch)
	}
	s.mu.Unlock()

	s.notify(portfolio.ChangeEvent{Type: portfolio.ChangeItemUpdated, ItemID: id, Kind: current.Kind})
	return &merged, nil
}

// DeleteItem removes the item remotely, then from the cache. Remaining sort_order values
// are left as they are.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "DeleteItem")
	defer span.End()
	span.SetAttributes(attribute.String("item_id", id))

	if err := s.gateway.DeleteItem(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete item failed: %w", err)
	}

	var kind portfolio.Kind
	s.mu.Lock()
	for _, k := range []portfolio.Kind{portfolio.KindVideo, portfolio.KindDesign} {
		col := s.collection(k)
		if idx := indexOf(*col, id); idx >= 0 {
			*col = slices.Delete(*col, idx, idx+1)
			kind = k
			break
		}
	}
	s.mu.Unlock()

	s.notify(portfolio.ChangeEvent{Type: portfolio.ChangeItemDeleted, ItemID: id, Kind: kind})
	return nil
}

func (s *Store) Profile() portfolio.ProfileSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) Videos() []portfolio.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.videos)
}

func (s *Store) Designs() []portfolio.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.designs)
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Profile: s.profile,
		Videos:  slices.Clone(s.videos),
		Designs: slices.Clone(s.designs),
		Loading: s.loading,
	}
}

// collection must be called with mu held.
func (s *Store) collection(kind portfolio.Kind) *[]portfolio.Item {
	if kind == portfolio.KindDesign {
		return &s.designs
	}
	return &s.videos
}

// find must be called with mu held.
func (s *Store) find(id string) (portfolio.Item, bool) {
	for _, col := range [][]portfolio.Item{s.videos, s.designs} {
		if idx := indexOf(col, id); idx >= 0 {
			return col[idx], true
		}
	}
	return portfolio.Item{}, false
}

// notify publishes off the request path. Failures are only logged.
func (s *Store) notify(ev portfolio.ChangeEvent) {
	go func() {
		if err := s.notifier.NotifyChange(context.Background(), ev); err != nil {
			s.logger.Warn("Failed to publish portfolio change",
				zap.String("event_type", string(ev.Type)),
				zap.String("item_id", ev.ItemID),
				zap.Error(err),
			)
		}
	}()
}

func indexOf(items []portfolio.Item, id string) int {
	return slices.IndexFunc(items, func(it portfolio.Item) bool { return it.ID == id })
}

// partition splits items by kind, ordered by sort_order with the gateway's order breaking ties.
func partition(items []*portfolio.Item) (videos, designs []portfolio.Item) {
	videos = make([]portfolio.Item, 0, len(items))
	designs = make([]portfolio.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		switch it.Kind {
		case portfolio.KindVideo:
			videos = append(videos, *it)
		case portfolio.KindDesign:
			designs = append(designs, *it)
		}
	}
	slices.SortStableFunc(videos, compareItems)
	slices.SortStableFunc(designs, compareItems)
	return videos, designs
}

// compareItems orders by sort_order, then creation time, then id, matching the gateways.
func compareItems(a, b portfolio.Item) int {
	if a.SortOrder != b.SortOrder {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
