// Package templates renders the HTML pages of the portal
package templates

//go:generate templ generate

import (
	"fmt"
	"strconv"
	"time"

	"download-portal/pkg/models"
)

// DownloadState selects which variant of the download page is shown
type DownloadState string

const (
	StateLocked      DownloadState = "locked"
	StateUnlocked    DownloadState = "unlocked"
	StateUnavailable DownloadState = "unavailable"
)

// DownloadView is everything the download page needs to render
type DownloadView struct {
	State       DownloadState
	GameID      int64
	CloudIndex  *int
	Token       string
	ExpiresAt   time.Time
	TimeLeft    time.Duration
	Links       []models.DownloadLink
	RarPassword string
	Message     string
}

// FormatTimeLeft renders a countdown as HH:MM:SS, clamped at zero
func FormatTimeLeft(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func unlockAction(view DownloadView) string {
	return fmt.Sprintf("/download/%d/unlock", view.GameID)
}

func retryAction(view DownloadView) string {
	return fmt.Sprintf("/games/%d/download", view.GameID)
}

func cloudValue(view DownloadView) string {
	if view.CloudIndex == nil {
		return ""
	}
	return strconv.Itoa(*view.CloudIndex)
}

func expiresAtValue(view DownloadView) string {
	return view.ExpiresAt.UTC().Format(time.RFC3339)
}

func linkLabel(link models.DownloadLink) string {
	if link.Name == "" {
		return link.URL
	}
	return link.Name
}
