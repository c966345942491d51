package gate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"download-portal/internal/gate/mocks"
	"download-portal/internal/pages"
	"download-portal/internal/shortener"
	"download-portal/internal/token"
	"download-portal/pkg/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func intPtr(i int) *int {
	return &i
}

func testPage(gameID int64, cloudIndex *int) *models.DownloadPage {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tok := "0190a1b2c3d4e5f60718293a4b5c6d7e"
	return &models.DownloadPage{
		ID:                  models.PageID(gameID, cloudIndex, tok),
		GameID:              gameID,
		CloudIndex:          cloudIndex,
		PinCode:             "1234",
		ActualDownloadLinks: []models.DownloadLink{{Name: "part1", URL: "https://mega.example/1"}},
		Token:               tok,
		CreatedAt:           created,
		ExpiresAt:           created.Add(models.PageTTL),
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		name string
		page *models.DownloadPage
		want string
	}{
		{
			name: "with cloud index",
			page: testPage(42, intPtr(1)),
			want: "https://games.example/download/42?cloud=1&token=0190a1b2c3d4e5f60718293a4b5c6d7e",
		},
		{
			name: "without cloud index",
			page: testPage(42, nil),
			want: "https://games.example/download/42?token=0190a1b2c3d4e5f60718293a4b5c6d7e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PageURL("https://games.example", tt.page))
		})
	}
}

func TestGate_InitiateDownload(t *testing.T) {
	ctx := context.Background()
	unavailable := &shortener.UnavailableError{Attempts: []shortener.Attempt{
		{Provider: "alpha", Method: shortener.MethodText, Reason: "timeout"},
		{Provider: "alpha", Method: shortener.MethodJSON, Reason: "timeout"},
		{Provider: "beta", Method: shortener.MethodText, Reason: "API request failed with status 502"},
		{Provider: "beta", Method: shortener.MethodJSON, Reason: "API request failed with status 502"},
	}}

	tests := []struct {
		name         string
		cloudIndex   *int
		shortenRes   *shortener.Result
		shortenErr   error
		wantSurveyed bool
		wantRedirect string
		wantReason   string
	}{
		{
			name:         "surveyed through first provider",
			cloudIndex:   intPtr(0),
			shortenRes:   &shortener.Result{URL: "https://sho.rt/abc", Provider: "alpha", Method: shortener.MethodText},
			wantSurveyed: true,
			wantRedirect: "https://sho.rt/abc",
		},
		{
			name:         "surveyed without cloud index",
			cloudIndex:   nil,
			shortenRes:   &shortener.Result{URL: "https://sho.rt/def", Provider: "beta", Method: shortener.MethodJSON},
			wantSurveyed: true,
			wantRedirect: "https://sho.rt/def",
		},
		{
			name:         "fallback to page url",
			cloudIndex:   intPtr(1),
			shortenErr:   unavailable,
			wantSurveyed: false,
			wantRedirect: "https://games.example/download/42?cloud=1&token=0190a1b2c3d4e5f60718293a4b5c6d7e",
			wantReason:   "beta/json: API request failed with status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			creator := mocks.NewMockPageCreator(ctrl)
			redirector := mocks.NewMockRedirector(ctrl)

			page := testPage(42, tt.cloudIndex)
			creator.EXPECT().Create(gomock.Any(), int64(42), tt.cloudIndex).Return(page, nil)

			var gotAlias string
			redirector.EXPECT().
				Shorten(gomock.Any(), PageURL("https://games.example", page), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, alias string) (*shortener.Result, error) {
					gotAlias = alias
					return tt.shortenRes, tt.shortenErr
				})

			g := New(creator, redirector, "https://games.example")
			outcome, err := g.InitiateDownload(ctx, 42, tt.cloudIndex)
			require.NoError(t, err)
			require.NotNil(t, outcome)

			require.Equal(t, page, outcome.Page)
			require.Equal(t, tt.wantSurveyed, outcome.Surveyed)
			require.Equal(t, tt.wantRedirect, outcome.RedirectURL)
			require.True(t, token.ValidAlias(gotAlias), "alias %q", gotAlias)
			require.Contains(t, gotAlias, fmt.Sprintf("g42c%d", models.CloudIndexOrDefault(tt.cloudIndex)))

			if tt.wantReason != "" {
				require.Contains(t, outcome.FallbackReason, tt.wantReason)
				require.Empty(t, outcome.Provider)
			} else {
				require.Empty(t, outcome.FallbackReason)
				require.Equal(t, tt.shortenRes.Provider, outcome.Provider)
			}
		})
	}
}

func TestGate_CreateFailureSkipsRedirect(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "not configured",
			err:     fmt.Errorf("game 42 cloud 3: %w", pages.ErrNotConfigured),
			wantErr: pages.ErrNotConfigured,
		},
		{
			name:    "storage failure",
			err:     &pages.StorageError{Op: "create download page", Err: errors.New("disk full")},
			wantErr: pages.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			creator := mocks.NewMockPageCreator(ctrl)
			redirector := mocks.NewMockRedirector(ctrl)
			creator.EXPECT().Create(gomock.Any(), int64(42), gomock.Any()).Return(nil, tt.err)

			g := New(creator, redirector, "https://games.example")
			outcome, err := g.InitiateDownload(context.Background(), 42, intPtr(3))
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, outcome)
		})
	}
}

func TestGate_AliasFailureFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	creator := mocks.NewMockPageCreator(ctrl)
	redirector := mocks.NewMockRedirector(ctrl)

	page := testPage(42, nil)
	creator.EXPECT().Create(gomock.Any(), int64(42), gomock.Any()).Return(page, nil)

	g := New(creator, redirector, "https://games.example")
	g.generateAlias = func(int64, int) (string, error) { return "", errors.New("entropy exhausted") }

	outcome, err := g.InitiateDownload(context.Background(), 42, nil)
	require.NoError(t, err)
	require.False(t, outcome.Surveyed)
	require.Equal(t, outcome.PageURL, outcome.RedirectURL)
	require.Contains(t, outcome.FallbackReason, "entropy exhausted")
}

func TestGate_WithRealShortener(t *testing.T) {
	ctrl := gomock.NewController(t)
	creator := mocks.NewMockPageCreator(ctrl)
	page := testPage(7, intPtr(0))
	creator.EXPECT().Create(gomock.Any(), int64(7), gomock.Any()).Return(page, nil)

	// No providers configured: every attempt fails, the page URL is used
	g := New(creator, shortener.NewService(), "https://games.example")
	outcome, err := g.InitiateDownload(context.Background(), 7, intPtr(0))
	require.NoError(t, err)
	require.False(t, outcome.Surveyed)
	require.Equal(t, outcome.PageURL, outcome.RedirectURL)
}
