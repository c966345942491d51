package shortener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
)

// ErrUnavailable is returned when every provider and format has failed
var ErrUnavailable = errors.New("redirect service unavailable")

// Result is a successfully shortened URL together with where it came from
type Result struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
	Method   Method `json:"method"`
}

// Attempt records one failed provider/method call
type Attempt struct {
	Provider string
	Method   Method
	Reason   string
}

// UnavailableError lists every failed attempt of a Shorten call
type UnavailableError struct {
	Attempts []Attempt
}

// Error implements the error interface for UnavailableError
func (e *UnavailableError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s/%s: %s", a.Provider, a.Method, a.Reason))
	}
	return fmt.Sprintf("%s: %s", ErrUnavailable.Error(), strings.Join(parts, "; "))
}

// Unwrap lets callers match ErrUnavailable with errors.Is
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// methodOrder is tried for every provider
var methodOrder = []Method{MethodText, MethodJSON}

// Service spreads shortening requests across interchangeable providers
type Service struct {
	clients   []*Client
	pickFirst func(n int) int
	logger    *slog.Logger
}

// NewService creates a service over the given providers
func NewService(providers ...Provider) *Service {
	clients := make([]*Client, 0, len(providers))
	for _, p := range providers {
		clients = append(clients, New(p))
	}
	return &Service{
		clients:   clients,
		pickFirst: rand.Intn,
		logger:    slog.Default(),
	}
}

// Shorten wraps destination with the first provider that answers with a
// usable URL. The starting provider is random on every call.
func (s *Service) Shorten(ctx context.Context, destination, alias string) (*Result, error) {
	if len(s.clients) == 0 {
		return nil, &UnavailableError{Attempts: []Attempt{{Provider: "none", Method: MethodText, Reason: "no providers configured"}}}
	}

	first := s.pickFirst(len(s.clients))
	var attempts []Attempt

	for i := range s.clients {
		client := s.clients[(first+i)%len(s.clients)]
		for _, method := range methodOrder {
			shortURL, err := s.attempt(ctx, client, method, destination, alias)
			if err == nil {
				s.logger.Debug("Shortened download page URL",
					"provider", client.Name(),
					"method", method,
					"failed_attempts", len(attempts))
				return &Result{URL: shortURL, Provider: client.Name(), Method: method}, nil
			}

			s.logger.Debug("Shortener attempt failed",
				"provider", client.Name(),
				"method", method,
				"error", err)
			attempts = append(attempts, Attempt{Provider: client.Name(), Method: method, Reason: err.Error()})
		}
	}

	return nil, &UnavailableError{Attempts: attempts}
}

// attempt runs a single provider call and turns panics into errors
func (s *Service) attempt(ctx context.Context, client *Client, method Method, destination, alias string) (shortURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			shortURL = ""
			err = fmt.Errorf("panic during request: %v", r)
		}
	}()
	return client.Shorten(ctx, method, destination, alias)
}
