package recommend

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

type fakeStore struct {
	cached   *model.Recommendation
	getErr   error
	replaced *model.Recommendation
}

func (f *fakeStore) GetByUser(_ context.Context, _ uint64) (*model.Recommendation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cached, nil
}

func (f *fakeStore) Replace(_ context.Context, rec *model.Recommendation) error {
	f.replaced = rec
	return nil
}

type fakeLister struct{ pool []model.Restaurant }

func (f *fakeLister) ListAll(_ context.Context) ([]model.Restaurant, error) {
	return f.pool, nil
}

type fakeUsers struct {
	user *model.User
	favs []uint64
}

func (f *fakeUsers) GetByID(_ context.Context, _ uint64) (*model.User, error) {
	return f.user, nil
}

func (f *fakeUsers) FavouriteIDs(_ context.Context, _ uint64) ([]uint64, error) {
	return f.favs, nil
}

type fakeSuggester struct {
	calls      int
	favourites []uint64
	fresh      []uint64
	err        error
	lastPrompt string
}

func (f *fakeSuggester) Suggest(_ context.Context, prompt string) ([]uint64, []uint64, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.favourites, f.fresh, nil
}

func newService(store *fakeStore, sugg *fakeSuggester, now time.Time) *Service {
	return &Service{
		Store: store,
		Restaurants: &fakeLister{pool: []model.Restaurant{
			{ID: 1, Name: "Mama Oliech", CuisineType: "Kenyan", Address: "Nairobi"},
			{ID: 2, Name: "Hashmi BBQ", CuisineType: "Pakistani", Address: "Mombasa"},
		}},
		Users: &fakeUsers{
			user: &model.User{ID: 7, DiningPreferences: "vegetarian"},
			favs: []uint64{1},
		},
		Suggester: sugg,
		Now:       func() time.Time { return now },
	}
}

func TestForUser_FreshCacheServedWithoutGenerating(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	cached := &model.Recommendation{
		UserID:            7,
		BasedOnFavourites: []uint64{1},
		NewToYou:          []uint64{2},
		CreatedAt:         now.Add(-time.Hour),
	}
	store := &fakeStore{cached: cached}
	sugg := &fakeSuggester{}
	svc := newService(store, sugg, now)

	got, err := svc.ForUser(context.Background(), 7)

	require.NoError(t, err)
	assert.Same(t, cached, got)
	assert.Zero(t, sugg.calls)
	assert.Nil(t, store.replaced)
}

func TestForUser_StaleCacheRegenerates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{cached: &model.Recommendation{
		UserID:    7,
		CreatedAt: now.Add(-25 * time.Hour),
	}}
	sugg := &fakeSuggester{favourites: []uint64{1}, fresh: []uint64{2}}
	svc := newService(store, sugg, now)

	got, err := svc.ForUser(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 1, sugg.calls)
	require.NotNil(t, store.replaced)
	assert.Equal(t, []uint64{1}, got.BasedOnFavourites)
	assert.Equal(t, []uint64{2}, got.NewToYou)
	assert.Equal(t, now, got.CreatedAt)
}

func TestForUser_NoCacheGenerates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{getErr: sql.ErrNoRows}
	sugg := &fakeSuggester{favourites: []uint64{1}, fresh: []uint64{2}}
	svc := newService(store, sugg, now)

	got, err := svc.ForUser(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 1, sugg.calls)
	assert.Equal(t, uint64(7), got.UserID)

	// The prompt carries the preferences, the pool and the favourites.
	assert.Contains(t, sugg.lastPrompt, "vegetarian")
	assert.Contains(t, sugg.lastPrompt, "Mama Oliech")
	assert.Contains(t, sugg.lastPrompt, "basedOnFavourites")
	assert.True(t, strings.Contains(sugg.lastPrompt, "newToYou"))
}

func TestForUser_StoreErrorPropagates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{getErr: errors.New("connection refused")}
	sugg := &fakeSuggester{}
	svc := newService(store, sugg, now)

	_, err := svc.ForUser(context.Background(), 7)

	require.Error(t, err)
	assert.Zero(t, sugg.calls)
}

func TestForUser_SuggesterErrorPropagates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{getErr: sql.ErrNoRows}
	sugg := &fakeSuggester{err: errors.New("quota exceeded")}
	svc := newService(store, sugg, now)

	_, err := svc.ForUser(context.Background(), 7)

	require.Error(t, err)
	assert.Nil(t, store.replaced)
}
