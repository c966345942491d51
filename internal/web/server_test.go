package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"download-portal/internal/config"
	"download-portal/internal/database"
	"download-portal/internal/gate"
	"download-portal/internal/pages"
	"download-portal/internal/shortener"
	"download-portal/internal/web/handlers"
	"download-portal/pkg/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandlers(t *testing.T, providers ...shortener.Provider) (*handlers.Handlers, *database.DB) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pageService := pages.NewService(db, db)
	g := gate.New(pageService, shortener.NewService(providers...), "https://games.example")
	return handlers.NewHandlers(pageService, g, db), db
}

func TestNewServer(t *testing.T) {
	h, _ := newTestHandlers(t)
	cfg := &config.Config{
		ServerPort:   "8080",
		LogLevel:     "info",
		PublicOrigin: "https://games.example",
	}

	server := NewServer(cfg, h)
	require.NotNil(t, server)
	require.Equal(t, ":8080", server.server.Addr)
}

func TestServer_StartAndShutdown(t *testing.T) {
	h, _ := newTestHandlers(t)
	cfg := &config.Config{
		ServerPort: "0", // Use random port
		LogLevel:   "info",
	}

	server := NewServer(cfg, h)

	// Test that we can start and shutdown the server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Shutdown server
	err := server.Shutdown(ctx)
	require.NoError(t, err)

	// Check if start returned an error (should be http.ErrServerClosed)
	select {
	case err := <-errChan:
		require.Equal(t, http.ErrServerClosed, err)
	case <-time.After(time.Second):
		t.Fatal("Server did not shutdown within timeout")
	}
}

// TestRouter_DownloadFlow walks a user from the download button to the
// unlocked links through a real shortener provider.
func TestRouter_DownloadFlow(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api") != "provider-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("https://sho.rt/" + r.URL.Query().Get("alias")))
	}))
	defer provider.Close()

	h, db := newTestHandlers(t,
		shortener.Provider{Name: "alpha", APIURL: provider.URL, APIToken: "provider-token"},
	)
	require.NoError(t, db.UpsertGame(context.Background(), &models.Game{
		ID:      42,
		PinCode: "2468",
		Clouds: []models.CloudProvider{
			{Name: "Mega", Links: []models.DownloadLink{{Name: "part1", URL: "https://mega.example/1"}}},
		},
	}))

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(h, string(hash)))
	defer srv.Close()

	// Gate
	resp, err := http.Post(srv.URL+"/api/games/42/download", "application/json", strings.NewReader(`{"cloudIndex":0}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var download handlers.DownloadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&download))
	require.True(t, download.Surveyed)
	require.True(t, strings.HasPrefix(download.RedirectURL, "https://sho.rt/g42c0"))

	// Page, as reached after the redirect
	pagePath := strings.TrimPrefix(download.PageURL, "https://games.example")
	pageResp, err := http.Get(srv.URL + pagePath)
	require.NoError(t, err)
	body, _ := io.ReadAll(pageResp.Body)
	pageResp.Body.Close()
	require.Equal(t, http.StatusOK, pageResp.StatusCode)
	require.Contains(t, string(body), "download-locked")

	// Admin route requires the key
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/admin/games/42", strings.NewReader(`{"pinCode":"1357"}`))
	require.NoError(t, err)
	adminResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	adminResp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, adminResp.StatusCode)

	req, err = http.NewRequest(http.MethodPut, srv.URL+"/api/admin/games/42", strings.NewReader(`{"pinCode":"1357"}`))
	require.NoError(t, err)
	req.Header.Set(handlers.AdminKeyHeader, "admin")
	adminResp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	adminResp.Body.Close()
	require.Equal(t, http.StatusOK, adminResp.StatusCode)

	// Existing pages keep the PIN they were created with
	form := "pin=2468&cloud=0&token=" + download.PageURL[strings.Index(download.PageURL, "token=")+len("token="):]
	unlockResp, err := http.Post(srv.URL+"/download/42/unlock", "application/x-www-form-urlencoded", strings.NewReader(form))
	require.NoError(t, err)
	body, _ = io.ReadAll(unlockResp.Body)
	unlockResp.Body.Close()
	require.Equal(t, http.StatusOK, unlockResp.StatusCode)
	require.Contains(t, string(body), "https://mega.example/1")
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestHandlers(t)
	srv := httptest.NewServer(NewRouter(h, ""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
