package pages

import (
	"errors"
	"strings"
	"time"

	"download-portal/pkg/models"
)

// VisitState is the state of a single download page visit
type VisitState string

const (
	VisitLocked   VisitState = "locked"
	VisitUnlocked VisitState = "unlocked"
	VisitExpired  VisitState = "expired"
)

var (
	// ErrInvalidPIN is returned when the entered PIN does not match
	ErrInvalidPIN = errors.New("incorrect PIN")
	// ErrPageExpired is returned for any interaction after expiry
	ErrPageExpired = errors.New("download page expired")
)

// Visit tracks the PIN gate for one resolved page. The PIN travels with the
// page record, so this is a convenience gate; the page token is what grants
// access to the record in the first place.
type Visit struct {
	page     *models.DownloadPage
	state    VisitState
	timeLeft time.Duration
}

// NewVisit starts a visit in the Locked state, or Expired if the page is
// already past its expiry
func NewVisit(page *models.DownloadPage, now time.Time) *Visit {
	v := &Visit{page: page, state: VisitLocked}
	v.Tick(now)
	return v
}

// Tick refreshes the countdown and moves the visit to Expired once the page
// expiry is reached
func (v *Visit) Tick(now time.Time) VisitState {
	if v.state == VisitExpired {
		return v.state
	}
	if !v.page.IsLive(now) {
		v.state = VisitExpired
		v.timeLeft = 0
		return v.state
	}
	v.timeLeft = v.page.ExpiresAt.Sub(now)
	return v.state
}

// EnterPIN tries to unlock the visit with user input. Non-digit characters are
// dropped before an exact comparison.
func (v *Visit) EnterPIN(input string, now time.Time) error {
	if v.Tick(now) == VisitExpired {
		return ErrPageExpired
	}
	if v.state == VisitUnlocked {
		return nil
	}
	if FilterPINInput(input) != v.page.PinCode {
		return ErrInvalidPIN
	}
	v.state = VisitUnlocked
	return nil
}

// State returns the current state
func (v *Visit) State() VisitState {
	return v.state
}

// TimeLeft returns the countdown as of the last Tick
func (v *Visit) TimeLeft() time.Duration {
	return v.timeLeft
}

// Page returns the underlying record
func (v *Visit) Page() *models.DownloadPage {
	return v.page
}

// Links returns the download links, only while unlocked
func (v *Visit) Links() []models.DownloadLink {
	if v.state != VisitUnlocked {
		return nil
	}
	return v.page.ActualDownloadLinks
}

// RarPassword returns the archive password, only while unlocked
func (v *Visit) RarPassword() string {
	if v.state != VisitUnlocked || v.page.RarPassword == nil {
		return ""
	}
	return *v.page.RarPassword
}

// FilterPINInput keeps only ASCII digits
func FilterPINInput(input string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
}
