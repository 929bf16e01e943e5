package epg

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Service fetches the portal's XMLTV export and caches the parsed
// guide. Lookups are safe to call concurrently with a refresh.
type Service struct {
	http *resty.Client
	url  string
	ttl  time.Duration

	mu    sync.RWMutex
	guide *Guide
}

// NewService builds a guide service fetching the given XMLTV URL. The
// cached guide is considered fresh for ttl; Refresh is a no-op while
// fresh unless forced.
func NewService(url string, ttl time.Duration) *Service {
	return &Service{
		http: resty.New().
			SetTimeout(60 * time.Second).
			SetRetryCount(1),
		url: url,
		ttl: ttl,
	}
}

// Refresh downloads and parses the guide if the cached copy is stale.
func (s *Service) Refresh(ctx context.Context, force bool) error {
	s.mu.RLock()
	fresh := s.guide != nil && time.Since(s.guide.FetchedAt()) < s.ttl
	s.mu.RUnlock()
	if fresh && !force {
		return nil
	}

	resp, err := s.http.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return fmt.Errorf("fetch epg: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("fetch epg: unexpected status %d", resp.StatusCode())
	}
	guide, err := Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.guide = guide
	s.mu.Unlock()
	slog.Info("epg guide refreshed", "channels", guide.Channels())
	return nil
}

// NowNext returns the now/next pair for a channel, or the zero value
// when no guide has been loaded yet.
func (s *Service) NowNext(channelID string) NowNext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.guide == nil || channelID == "" {
		return NowNext{}
	}
	return s.guide.Lookup(channelID, time.Now())
}

// Loaded reports whether a guide is available for lookups.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guide != nil
}
