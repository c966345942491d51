// Package models defines the data structures used throughout the application
package models

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// PageTTL is how long a download page stays resolvable after creation
const PageTTL = 12 * time.Hour

// DownloadLink is a single file offered by a cloud provider
type DownloadLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size string `json:"size"`
}

// CloudProvider is a named file host together with the links it serves for a game
type CloudProvider struct {
	Name  string         `json:"name"`
	Links []DownloadLink `json:"links"`
}

// Game is the slice of a catalog item that the download gate consumes
type Game struct {
	ID          int64           `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	PinCode     string          `json:"pinCode" db:"pin_code"`
	RarPassword *string         `json:"rarPassword" db:"rar_password"`
	Clouds      []CloudProvider `json:"clouds" db:"clouds"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

var pinRegex = regexp.MustCompile(`^[0-9]{4}$`)

// Validate checks the PIN format and that every link is an absolute http(s) URL
func (g *Game) Validate() error {
	if !pinRegex.MatchString(g.PinCode) {
		return fmt.Errorf("pinCode must be exactly 4 digits")
	}
	for i, cloud := range g.Clouds {
		for j, link := range cloud.Links {
			u, err := url.Parse(link.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("clouds[%d].links[%d].url must be an absolute http(s) URL", i, j)
			}
		}
	}
	return nil
}

// LinksFor returns the link set of the provider at cloudIndex. A nil index
// selects the first provider. The boolean is false when the provider does not
// exist or has no links.
func (g *Game) LinksFor(cloudIndex *int) ([]DownloadLink, bool) {
	idx := 0
	if cloudIndex != nil {
		idx = *cloudIndex
	}
	if idx < 0 || idx >= len(g.Clouds) {
		return nil, false
	}
	links := g.Clouds[idx].Links
	if len(links) == 0 {
		return nil, false
	}
	return links, true
}

// DownloadPage is a time-boxed access grant for one (game, provider) pair
type DownloadPage struct {
	ID                  string         `json:"id" db:"id"`
	GameID              int64          `json:"gameId" db:"game_id"`
	CloudIndex          *int           `json:"cloudIndex,omitempty" db:"cloud_index"`
	PinCode             string         `json:"pinCode" db:"pin_code"`
	ActualDownloadLinks []DownloadLink `json:"actualDownloadLinks" db:"actual_download_links"`
	RarPassword         *string        `json:"rarPassword" db:"rar_password"`
	Token               string         `json:"token" db:"token"`
	CreatedAt           time.Time      `json:"createdAt" db:"created_at"`
	ExpiresAt           time.Time      `json:"expiresAt" db:"expires_at"`
}

// IsLive reports whether the page can still be resolved at now.
// A page is expired from the exact instant of ExpiresAt onwards.
func (p *DownloadPage) IsLive(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

// PageID builds the composite record id. The cloud index segment is only
// present when the caller supplied one.
func PageID(gameID int64, cloudIndex *int, token string) string {
	if cloudIndex == nil {
		return fmt.Sprintf("%d_%s", gameID, token)
	}
	return fmt.Sprintf("%d_%d_%s", gameID, *cloudIndex, token)
}

// CloudIndexOrDefault returns the provider index, defaulting to the first provider
func CloudIndexOrDefault(cloudIndex *int) int {
	if cloudIndex == nil {
		return 0
	}
	return *cloudIndex
}
