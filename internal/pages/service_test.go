package pages

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"download-portal/internal/database"
	"download-portal/internal/pages/mocks"
	"download-portal/pkg/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func intPtr(i int) *int {
	return &i
}

func seedGame(t *testing.T, db *database.DB) *models.Game {
	t.Helper()
	rar := "archive-pass"
	game := &models.Game{
		ID:          100,
		Title:       "Seeded Game",
		PinCode:     "2580",
		RarPassword: &rar,
		Clouds: []models.CloudProvider{
			{Name: "Mega", Links: []models.DownloadLink{
				{Name: "part1", URL: "https://mega.example/p1", Size: "4 GB"},
				{Name: "part2", URL: "https://mega.example/p2", Size: "3 GB"},
			}},
			{Name: "Drive", Links: []models.DownloadLink{
				{Name: "full", URL: "https://drive.example/full", Size: "7 GB"},
			}},
			{Name: "Empty"},
		},
	}
	require.NoError(t, db.UpsertGame(context.Background(), game))
	return game
}

func newTestStore(t *testing.T, clock *fakeClock, opts ...Option) (*Service, *database.DB) {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	seedGame(t, db)
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewService(db, db, opts...), db
}

func TestService_CreateAndResolve(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC))
	svc, _ := newTestStore(t, clock)
	ctx := context.Background()

	tests := []struct {
		name       string
		cloudIndex *int
		wantLinks  int
		wantPrefix string
	}{
		{name: "default provider", cloudIndex: nil, wantLinks: 2, wantPrefix: "100_"},
		{name: "first provider explicit", cloudIndex: intPtr(0), wantLinks: 2, wantPrefix: "100_0_"},
		{name: "second provider", cloudIndex: intPtr(1), wantLinks: 1, wantPrefix: "100_1_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Create(ctx, 100, tt.cloudIndex)
			require.NoError(t, err)
			require.NotNil(t, page)

			require.Len(t, page.Token, 32)
			require.Equal(t, tt.wantPrefix+page.Token, page.ID)
			require.Len(t, page.ActualDownloadLinks, tt.wantLinks)
			require.Equal(t, "2580", page.PinCode)
			require.Equal(t, "archive-pass", *page.RarPassword)
			require.Equal(t, clock.Now().Truncate(time.Millisecond), page.CreatedAt)
			require.Equal(t, models.PageTTL, page.ExpiresAt.Sub(page.CreatedAt))

			got, err := svc.Resolve(ctx, 100, tt.cloudIndex, page.Token)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, page.ID, got.ID)
			require.Equal(t, page.ActualDownloadLinks, got.ActualDownloadLinks)
		})
	}
}

func TestService_CreateNotConfigured(t *testing.T) {
	clock := newFakeClock(time.Now())
	svc, db := newTestStore(t, clock)
	ctx := context.Background()

	tests := []struct {
		name       string
		gameID     int64
		cloudIndex *int
	}{
		{name: "unknown game", gameID: 999, cloudIndex: nil},
		{name: "provider without links", gameID: 100, cloudIndex: intPtr(2)},
		{name: "index out of range", gameID: 100, cloudIndex: intPtr(7)},
		{name: "negative index", gameID: 100, cloudIndex: intPtr(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Create(ctx, tt.gameID, tt.cloudIndex)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrNotConfigured)
			require.Nil(t, page)
		})
	}

	count, err := db.CountDownloadPages(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestService_SnapshotIsolation(t *testing.T) {
	clock := newFakeClock(time.Now())
	svc, db := newTestStore(t, clock)
	ctx := context.Background()

	page, err := svc.Create(ctx, 100, nil)
	require.NoError(t, err)

	game, err := db.GetGame(ctx, 100)
	require.NoError(t, err)
	game.PinCode = "0000"
	game.Clouds[0].Links = []models.DownloadLink{{Name: "new", URL: "https://mega.example/new"}}
	require.NoError(t, db.UpsertGame(ctx, game))

	got, err := svc.Resolve(ctx, 100, nil, page.Token)
	require.NoError(t, err)
	require.Equal(t, "2580", got.PinCode)
	require.Len(t, got.ActualDownloadLinks, 2)
}

func TestService_ResolveExpiryBoundary(t *testing.T) {
	clock := newFakeClock(time.Now())
	svc, _ := newTestStore(t, clock)
	ctx := context.Background()

	page, err := svc.Create(ctx, 100, intPtr(1))
	require.NoError(t, err)

	clock.Advance(models.PageTTL - time.Millisecond)
	got, err := svc.Resolve(ctx, 100, intPtr(1), page.Token)
	require.NoError(t, err)
	require.NotNil(t, got)

	clock.Advance(time.Millisecond)
	got, err = svc.Resolve(ctx, 100, intPtr(1), page.Token)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestService_ResolveMisses(t *testing.T) {
	clock := newFakeClock(time.Now())
	svc, _ := newTestStore(t, clock)
	ctx := context.Background()

	page, err := svc.Create(ctx, 100, intPtr(0))
	require.NoError(t, err)

	tests := []struct {
		name   string
		gameID int64
		token  string
	}{
		{name: "empty token", gameID: 100, token: ""},
		{name: "wrong token", gameID: 100, token: "00000000000000000000000000000000"},
		{name: "token of another game", gameID: 101, token: page.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(ctx, tt.gameID, intPtr(0), tt.token)
			require.NoError(t, err)
			require.Nil(t, got)
		})
	}
}

func TestService_ResolveFallsBackOnCloudIndexDrift(t *testing.T) {
	clock := newFakeClock(time.Now())
	svc, _ := newTestStore(t, clock)
	ctx := context.Background()

	// Created without a cloud index, resolved with one
	page, err := svc.Create(ctx, 100, nil)
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, 100, intPtr(0), page.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, page.ID, got.ID)

	// Created with a cloud index, resolved without one
	page, err = svc.Create(ctx, 100, intPtr(1))
	require.NoError(t, err)

	got, err = svc.Resolve(ctx, 100, nil, page.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, page.ID, got.ID)
}

func TestService_ConcurrentCreates(t *testing.T) {
	clock := newFakeClock(time.Now())
	svc, db := newTestStore(t, clock)
	ctx := context.Background()

	const n = 25
	pagesOut := make([]*models.DownloadPage, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pagesOut[i], errs[i] = svc.Create(ctx, 100, intPtr(0))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.False(t, seen[pagesOut[i].Token], "duplicate token %s", pagesOut[i].Token)
		seen[pagesOut[i].Token] = true
	}

	count, err := db.CountDownloadPages(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(n), count)
}

func TestService_CleanupExpired(t *testing.T) {
	start := time.Now()
	clock := newFakeClock(start)
	svc, db := newTestStore(t, clock)
	ctx := context.Background()

	old, err := svc.Create(ctx, 100, nil)
	require.NoError(t, err)

	clock.Advance(6 * time.Hour)
	fresh, err := svc.Create(ctx, 100, intPtr(1))
	require.NoError(t, err)

	// Nothing has expired yet
	deleted, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted)

	clock.Advance(6 * time.Hour)
	deleted, err = svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	got, err := svc.Resolve(ctx, 100, nil, old.Token)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = svc.Resolve(ctx, 100, intPtr(1), fresh.Token)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Idempotent
	deleted, err = svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted)

	count, err := db.CountDownloadPages(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestService_CleanupRetention(t *testing.T) {
	clock := newFakeClock(time.Now())
	svc, db := newTestStore(t, clock, WithRetention(24*time.Hour))
	ctx := context.Background()

	page, err := svc.Create(ctx, 100, nil)
	require.NoError(t, err)

	clock.Advance(models.PageTTL + time.Hour)

	// Expired but within the retention window
	got, err := svc.Resolve(ctx, 100, nil, page.Token)
	require.NoError(t, err)
	require.Nil(t, got)

	deleted, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted)

	clock.Advance(24 * time.Hour)
	deleted, err = svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	count, err := db.CountDownloadPages(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestService_StorageErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	game := &models.Game{
		ID:      1,
		PinCode: "1111",
		Clouds:  []models.CloudProvider{{Name: "Mega", Links: []models.DownloadLink{{URL: "https://mega.example/x"}}}},
	}

	t.Run("catalog failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		catalog := mocks.NewMockCatalog(ctrl)
		catalog.EXPECT().GetGame(gomock.Any(), int64(1)).Return(nil, boom)

		svc := NewService(repo, catalog, WithClock(func() time.Time { return now }))
		page, err := svc.Create(ctx, 1, nil)
		require.Nil(t, page)
		require.ErrorIs(t, err, ErrStorage)
		require.ErrorIs(t, err, boom)
	})

	t.Run("persist failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		catalog := mocks.NewMockCatalog(ctrl)
		catalog.EXPECT().GetGame(gomock.Any(), int64(1)).Return(game, nil)
		repo.EXPECT().CreateDownloadPage(gomock.Any(), gomock.Any()).Return(boom)

		svc := NewService(repo, catalog, WithClock(func() time.Time { return now }))
		page, err := svc.Create(ctx, 1, nil)
		require.Nil(t, page)

		var storageErr *StorageError
		require.ErrorAs(t, err, &storageErr)
		require.Equal(t, "create download page", storageErr.Op)
	})

	t.Run("resolve failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		repo.EXPECT().GetDownloadPage(gomock.Any(), "1_tok", now).Return(nil, nil)
		repo.EXPECT().FindDownloadPageByToken(gomock.Any(), "tok", int64(1), now).Return(nil, boom)

		svc := NewService(repo, mocks.NewMockCatalog(ctrl), WithClock(func() time.Time { return now }))
		page, err := svc.Resolve(ctx, 1, nil, "tok")
		require.Nil(t, page)
		require.ErrorIs(t, err, ErrStorage)
	})

	t.Run("cleanup failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		repo.EXPECT().DeleteExpiredDownloadPages(gomock.Any(), now.Add(-time.Hour)).Return(int64(0), boom)

		svc := NewService(repo, mocks.NewMockCatalog(ctrl),
			WithClock(func() time.Time { return now }), WithRetention(time.Hour))
		_, err := svc.CleanupExpired(ctx)
		require.ErrorIs(t, err, ErrStorage)
	})

	t.Run("stale record from store is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		stale := &models.DownloadPage{ID: "1_tok", GameID: 1, Token: "tok", ExpiresAt: now}
		repo.EXPECT().GetDownloadPage(gomock.Any(), "1_tok", now).Return(stale, nil)

		svc := NewService(repo, mocks.NewMockCatalog(ctrl), WithClock(func() time.Time { return now }))
		page, err := svc.Resolve(ctx, 1, nil, "tok")
		require.NoError(t, err)
		require.Nil(t, page)
	})

	t.Run("token generation failure writes nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		catalog := mocks.NewMockCatalog(ctrl)
		catalog.EXPECT().GetGame(gomock.Any(), int64(1)).Return(game, nil)

		svc := NewService(repo, catalog, WithClock(func() time.Time { return now }))
		svc.generateToken = func() (string, error) { return "", errors.New("entropy exhausted") }

		page, err := svc.Create(ctx, 1, nil)
		require.Error(t, err)
		require.Nil(t, page)
	})
}
