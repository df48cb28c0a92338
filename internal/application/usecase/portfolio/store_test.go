package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/apperror"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

// fakeGateway is an in-memory gateway with switchable failures.
type fakeGateway struct {
	mu        sync.Mutex
	profile   *portfolio.ProfileSettings
	items     []*portfolio.Item
	nextID    int
	failRead  error
	failWrite error
	calls     []string
}

func (g *fakeGateway) record(call string) {
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) FetchProfile(ctx context.Context) (*portfolio.ProfileSettings, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("FetchProfile")
	if g.failRead != nil {
		return nil, g.failRead
	}
	if g.profile == nil {
		return nil, apperror.NewNotFound("profile", "latest")
	}
	p := *g.profile
	return &p, nil
}

func (g *fakeGateway) FetchItems(ctx context.Context) ([]*portfolio.Item, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("FetchItems")
	if g.failRead != nil {
		return nil, g.failRead
	}
	out := make([]*portfolio.Item, 0, len(g.items))
	for _, it := range g.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (g *fakeGateway) UpsertProfile(ctx context.Context, p *portfolio.ProfileSettings) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("UpsertProfile")
	if g.failWrite != nil {
		return "", g.failWrite
	}
	stored := *p
	if stored.ID == "" {
		stored.ID = "profile-1"
	}
	g.profile = &stored
	return stored.ID, nil
}

func (g *fakeGateway) InsertItem(ctx context.Context, kind portfolio.Kind, f portfolio.ItemFields) (*portfolio.Item, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("InsertItem")
	if g.failWrite != nil {
		return nil, g.failWrite
	}
	g.nextID++
	it := portfolio.NewItem(kind, f)
	it.ID = fmt.Sprintf("srv-%d", g.nextID)
	it.CreatedAt = time.Date(2026, 1, 1, 0, 0, g.nextID, 0, time.UTC)
	g.items = append(g.items, &it)
	cp := it
	return &cp, nil
}

func (g *fakeGateway) UpdateItem(ctx context.Context, id string, patch portfolio.ItemPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("UpdateItem")
	if g.failWrite != nil {
		return g.failWrite
	}
	for i, it := range g.items {
		if it.ID == id {
			merged := it.Apply(patch)
			g.items[i] = &merged
			return nil
		}
	}
	return apperror.NewNotFound("portfolio item", id)
}

func (g *fakeGateway) DeleteItem(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("DeleteItem")
	if g.failWrite != nil {
		return g.failWrite
	}
	for i, it := range g.items {
		if it.ID == id {
			g.items = append(g.items[:i], g.items[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("portfolio item", id)
}

func (g *fakeGateway) callCount(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == name {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	events chan portfolio.ChangeEvent
}

func (n *recordingNotifier) NotifyChange(ctx context.Context, ev portfolio.ChangeEvent) error {
	n.events <- ev
	return nil
}

type StoreTestSuite struct {
	suite.Suite
	ctx      context.Context
	gw       *fakeGateway
	notifier *recordingNotifier
	store    *Store
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.gw = &fakeGateway{
		profile: &portfolio.ProfileSettings{
			ID: "p-1", Name: "Ada", Title: "Editor", DisplayMode: portfolio.DisplayModePulse,
		},
		items: []*portfolio.Item{
			{ID: "v-2", Title: "Second", Kind: portfolio.KindVideo, SortOrder: 1},
			{ID: "d-1", Title: "Poster", Kind: portfolio.KindDesign, SortOrder: 0},
			{ID: "v-1", Title: "First", Kind: portfolio.KindVideo, SortOrder: 0},
			{ID: "v-3", Title: "Tie", Kind: portfolio.KindVideo, SortOrder: 1},
		},
		nextID: 100,
	}
	s.notifier = &recordingNotifier{events: make(chan portfolio.ChangeEvent, 16)}
	s.store = NewStore(s.gw, s.notifier, logger.NewNop())
}

func (s *StoreTestSuite) initialize() {
	s.Require().NoError(s.store.Initialize(s.ctx))
}

func ids(items []portfolio.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func (s *StoreTestSuite) Test_NewStore_StartsLoadingWithDefaults() {
	s.True(s.store.Loading())
	s.Equal(portfolio.DefaultProfile(), s.store.Profile())
	s.Empty(s.store.Videos())
	s.Empty(s.store.Designs())
}

func (s *StoreTestSuite) Test_Initialize_PartitionsAndOrders() {
	s.initialize()

	s.False(s.store.Loading())
	s.Equal("Ada", s.store.Profile().Name)
	s.Equal([]string{"v-1", "v-2", "v-3"}, ids(s.store.Videos()))
	s.Equal([]string{"d-1"}, ids(s.store.Designs()))
}

func (s *StoreTestSuite) Test_Initialize_NoProfileSynthesizesDefaultWithoutPersisting() {
	s.gw.profile = nil

	s.initialize()

	s.Equal(portfolio.DefaultProfile(), s.store.Profile())
	s.Zero(s.gw.callCount("UpsertProfile"))
}

func (s *StoreTestSuite) Test_Initialize_ReadFailureFallsBackToDefaults() {
	s.gw.failRead = apperror.NewTransport("fetch", errors.New("connection refused"))

	err := s.store.Initialize(s.ctx)

	s.Error(err)
	s.ErrorIs(err, apperror.ErrTransport)
	s.False(s.store.Loading())
	s.Equal(portfolio.DefaultProfile(), s.store.Profile())
	s.Empty(s.store.Videos())
	s.Empty(s.store.Designs())
}

func (s *StoreTestSuite) Test_Initialize_IsIdempotent() {
	s.initialize()
	first := s.store.Snapshot()

	s.initialize()
	second := s.store.Snapshot()

	s.Equal(first, second)
}

func (s *StoreTestSuite) Test_Refresh_ReflectsOutOfBandChanges() {
	s.initialize()

	s.gw.mu.Lock()
	s.gw.items = []*portfolio.Item{{ID: "d-9", Title: "New", Kind: portfolio.KindDesign, SortOrder: 4}}
	s.gw.profile.Name = "Grace"
	s.gw.mu.Unlock()

	s.Require().NoError(s.store.Refresh(s.ctx))

	s.Empty(s.store.Videos())
	s.Equal([]string{"d-9"}, ids(s.store.Designs()))
	s.Equal("Grace", s.store.Profile().Name)
}

func (s *StoreTestSuite) Test_Refresh_FailureKeepsStaleCache() {
	s.initialize()
	before := s.store.Snapshot()

	s.gw.failRead = apperror.NewTransport("fetch", errors.New("timeout"))
	s.Error(s.store.Refresh(s.ctx))

	s.Equal(before, s.store.Snapshot())
}

func (s *StoreTestSuite) Test_AddItem_AppendsWithSortOrderEqualToPriorLength() {
	s.initialize()
	prior := len(s.store.Videos())

	created, err := s.store.AddItem(s.ctx, portfolio.KindVideo, portfolio.ItemFields{Title: "A", SortOrder: 99})

	s.Require().NoError(err)
	videos := s.store.Videos()
	s.Len(videos, prior+1)
	s.Equal(prior, created.SortOrder)
	s.Equal(created, videos[len(videos)-1])
	s.NotEmpty(created.ID)
	s.Len(s.store.Designs(), 1)

	select {
	case ev := <-s.notifier.events:
		s.Equal(portfolio.ChangeItemCreated, ev.Type)
		s.Equal(created.ID, ev.ItemID)
	case <-time.After(time.Second):
		s.Fail("expected a change notification")
	}
}

func (s *StoreTestSuite) Test_AddItem_ValidationFailureNeverReachesGateway() {
	s.initialize()

	_, err := s.store.AddItem(s.ctx, portfolio.KindVideo, portfolio.ItemFields{Title: "  "})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = s.store.AddItem(s.ctx, portfolio.KindVideo, portfolio.ItemFields{Title: "A", SourceURL: "https://vimeo.com/1"})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = s.store.AddItem(s.ctx, portfolio.Kind("audio"), portfolio.ItemFields{Title: "A"})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	s.Zero(s.gw.callCount("InsertItem"))
}

func (s *StoreTestSuite) Test_UpdateItem_ChangesOnlyPatchedFields() {
	s.initialize()
	before := s.store.Videos()[1]
	title := "B"

	updated, err := s.store.UpdateItem(s.ctx, before.ID, portfolio.ItemPatch{Title: &title})

	s.Require().NoError(err)
	s.Require().NotNil(updated)
	after := s.store.Videos()[1]
	s.Equal("B", after.Title)
	before.Title = "B"
	s.Equal(before, after)
}

func (s *StoreTestSuite) Test_UpdateItem_UnknownIDIsNoOp() {
	s.initialize()
	before := s.store.Snapshot()
	title := "B"

	updated, err := s.store.UpdateItem(s.ctx, "missing", portfolio.ItemPatch{Title: &title})

	s.NoError(err)
	s.Nil(updated)
	s.Equal(before, s.store.Snapshot())
	s.Zero(s.gw.callCount("UpdateItem"))
}

func (s *StoreTestSuite) Test_UpdateItem_RemoteNotFoundPropagates() {
	s.initialize()
	before := s.store.Snapshot()

	s.gw.mu.Lock()
	s.gw.items = s.gw.items[:0]
	s.gw.mu.Unlock()

	title := "B"
	_, err := s.store.UpdateItem(s.ctx, "v-1", portfolio.ItemPatch{Title: &title})

	s.ErrorIs(err, apperror.ErrNotFound)
	s.Equal(before, s.store.Snapshot())
}

func (s *StoreTestSuite) Test_DeleteItem_RemovesWithoutRenumbering() {
	s.initialize()

	s.Require().NoError(s.store.DeleteItem(s.ctx, "v-1"))

	videos := s.store.Videos()
	s.Len(videos, 2)
	s.Equal([]string{"v-2", "v-3"}, ids(videos))
	s.Equal(1, videos[0].SortOrder)
	s.Equal(1, videos[1].SortOrder)
}

func (s *StoreTestSuite) Test_DeleteItem_RemoteNotFoundPropagates() {
	s.initialize()
	before := s.store.Snapshot()

	err := s.store.DeleteItem(s.ctx, "ghost")

	s.ErrorIs(err, apperror.ErrNotFound)
	s.Equal(before, s.store.Snapshot())
}

func (s *StoreTestSuite) Test_WriteFailuresLeaveCacheUnchanged() {
	s.initialize()
	before := s.store.Snapshot()
	s.gw.failWrite = apperror.NewTransport("write", errors.New("503"))

	title := "B"
	name := "Grace"
	_, addErr := s.store.AddItem(s.ctx, portfolio.KindDesign, portfolio.ItemFields{Title: "X"})
	_, updErr := s.store.UpdateItem(s.ctx, "v-1", portfolio.ItemPatch{Title: &title})
	delErr := s.store.DeleteItem(s.ctx, "v-1")
	_, profErr := s.store.UpdateProfile(s.ctx, portfolio.ProfilePatch{Name: &name})

	for _, err := range []error{addErr, updErr, delErr, profErr} {
		s.ErrorIs(err, apperror.ErrTransport)
	}
	s.Equal(before, s.store.Snapshot())
}

func (s *StoreTestSuite) Test_UpdateProfile_MergesOverLastKnownProfile() {
	s.initialize()
	bio := "New bio"

	updated, err := s.store.UpdateProfile(s.ctx, portfolio.ProfilePatch{Bio: &bio})

	s.Require().NoError(err)
	s.Equal("New bio", updated.Bio)
	s.Equal("Ada", updated.Name)
	s.Equal(portfolio.DisplayModePulse, updated.DisplayMode)
	s.Equal("p-1", updated.ID)
	s.False(updated.UpdatedAt.IsZero())
	s.Equal(updated, s.store.Profile())

	s.gw.mu.Lock()
	stored := *s.gw.profile
	s.gw.mu.Unlock()
	s.Equal("Ada", stored.Name)
	s.Equal("New bio", stored.Bio)
}

func (s *StoreTestSuite) Test_UpdateProfile_FirstSaveOfDefaultProfile() {
	s.gw.profile = nil
	s.initialize()
	name := "Ada"

	updated, err := s.store.UpdateProfile(s.ctx, portfolio.ProfilePatch{Name: &name})

	s.Require().NoError(err)
	s.Equal("profile-1", updated.ID)
	s.Equal(portfolio.DefaultProfile().Bio, updated.Bio)
}

func (s *StoreTestSuite) Test_UpdateProfile_ValidationFailure() {
	s.initialize()
	link := "not a url"

	_, err := s.store.UpdateProfile(s.ctx, portfolio.ProfilePatch{ContactLink: &link})

	s.ErrorIs(err, apperror.ErrInvalidInput)
	s.Zero(s.gw.callCount("UpsertProfile"))
}

func (s *StoreTestSuite) Test_SnapshotIsACopy() {
	s.initialize()

	snap := s.store.Snapshot()
	snap.Videos[0].Title = "mutated"
	videos := s.store.Videos()
	videos[1].Title = "mutated too"

	s.Equal("First", s.store.Videos()[0].Title)
	s.Equal("Second", s.store.Videos()[1].Title)
}

func (s *StoreTestSuite) Test_UpdateItem_SortOrderPatchMatchesRemoteOrder() {
	s.initialize()
	s.Equal([]string{"v-1", "v-2", "v-3"}, ids(s.store.Videos()))
	order := 5

	_, err := s.store.UpdateItem(s.ctx, "v-1", portfolio.ItemPatch{SortOrder: &order})
	s.Require().NoError(err)
	cached := ids(s.store.Videos())

	s.Require().NoError(s.store.Refresh(s.ctx))

	s.Equal([]string{"v-2", "v-3", "v-1"}, cached)
	s.Equal(ids(s.store.Videos()), cached)
}

func (s *StoreTestSuite) Test_UpdateItem_SortOrderTieKeepsRemoteTieBreak() {
	s.initialize()
	order := 1

	_, err := s.store.UpdateItem(s.ctx, "v-3", portfolio.ItemPatch{SortOrder: &order})
	s.Require().NoError(err)
	cached := ids(s.store.Videos())

	s.Require().NoError(s.store.Refresh(s.ctx))
	s.Equal(ids(s.store.Videos()), cached)
}

// refreshingGateway reloads the store from inside InsertItem, the way a change event
// handled by the listener can land while an insert is still in flight.
type refreshingGateway struct {
	*fakeGateway
	store *Store
}

func (g *refreshingGateway) InsertItem(ctx context.Context, kind portfolio.Kind, f portfolio.ItemFields) (*portfolio.Item, error) {
	created, err := g.fakeGateway.InsertItem(ctx, kind, f)
	if err != nil {
		return nil, err
	}
	if err := g.store.Refresh(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *StoreTestSuite) Test_AddItem_ConcurrentRefreshDoesNotDuplicate() {
	gw := &refreshingGateway{fakeGateway: &fakeGateway{nextID: 0}}
	store := NewStore(gw, nil, logger.NewNop())
	gw.store = store
	s.Require().NoError(store.Initialize(s.ctx))

	created, err := store.AddItem(s.ctx, portfolio.KindVideo, portfolio.ItemFields{Title: "A"})

	s.Require().NoError(err)
	s.Equal("srv-1", created.ID)
	s.Equal([]string{"srv-1"}, ids(store.Videos()))
}
