package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"download-portal/pkg/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "pagectl.db"))
	t.Setenv("PAGE_STORE", "database")
	t.Setenv("PUBLIC_ORIGIN", "https://games.example")
}

func writeGameFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "pagectl dev")
}

func TestPageLifecycle(t *testing.T) {
	setupEnv(t)

	gameFile := writeGameFile(t, `{"title":"CLI Game","pinCode":"1234",
		"clouds":[{"name":"Mega","links":[{"name":"part1","url":"https://mega.example/1"}]}]}`)

	out, err := runCmd(t, "game", "set", "--game", "5", "--file", gameFile)
	require.NoError(t, err)
	require.Contains(t, out, "Saved game 5 with 1 cloud providers")

	out, err = runCmd(t, "game", "show", "--game", "5")
	require.NoError(t, err)
	require.Contains(t, out, "CLI Game")

	out, err = runCmd(t, "create", "--game", "5", "--cloud", "0")
	require.NoError(t, err)

	var page models.DownloadPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Equal(t, "5_0_"+page.Token, page.ID)

	out, err = runCmd(t, "resolve", "--game", "5", "--token", page.Token)
	require.NoError(t, err)
	require.Contains(t, out, page.ID)

	_, err = runCmd(t, "resolve", "--game", "5", "--token", "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no live download page")

	out, err = runCmd(t, "cleanup")
	require.NoError(t, err)
	require.Contains(t, out, "Deleted 0 expired download pages")
}

func TestCreateNotConfigured(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "create", "--game", "404")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not configured")

	_, err = runCmd(t, "create", "--game", "404", "--cloud", "-1")
	require.Error(t, err)
}

func TestGameSetRejectsInvalidPin(t *testing.T) {
	setupEnv(t)

	gameFile := writeGameFile(t, `{"pinCode":"12"}`)
	_, err := runCmd(t, "game", "set", "--game", "5", "--file", gameFile)
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 digits")
}

func TestGateFallsBackWithoutProviders(t *testing.T) {
	setupEnv(t)

	gameFile := writeGameFile(t, `{"pinCode":"1234","clouds":[{"name":"Mega","links":[{"url":"https://mega.example/1"}]}]}`)
	_, err := runCmd(t, "game", "set", "--game", "6", "--file", gameFile)
	require.NoError(t, err)

	out, err := runCmd(t, "gate", "--game", "6")
	require.NoError(t, err)

	var outcome map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	require.Equal(t, false, outcome["surveyed"])
	require.Equal(t, outcome["pageUrl"], outcome["redirectUrl"])
	require.True(t, strings.HasPrefix(outcome["pageUrl"].(string), "https://games.example/download/6?token="))
	require.Contains(t, outcome["fallbackReason"], "not configured")
}

func TestShortenRejectsBadAlias(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "shorten", "https://games.example/download/1", "--alias", "Bad-Alias")
	require.Error(t, err)
	require.Contains(t, err.Error(), "alias")
}

func TestHashAdminKey(t *testing.T) {
	out, err := runCmd(t, "hash-admin-key", "s3cret")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("s3cret")))
}
