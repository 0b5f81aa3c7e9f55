// Package client keeps a live in-memory copy of the listing board: one
// REST fetch to seed, then patches applied from the server's broadcast
// stream. There is no local persistence; a restarted client just seeds
// again.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bazaarhq/bazaar-server/models"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const defaultRetryDelay = 5 * time.Second

// Cache mirrors the server's listing table, newest first.
type Cache struct {
	baseURL    string
	httpc      *http.Client
	retryDelay time.Duration

	mu       sync.RWMutex
	listings []models.Listing
}

func NewCache(baseURL string) *Cache {
	return &Cache{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpc:      &http.Client{Timeout: 15 * time.Second},
		retryDelay: defaultRetryDelay,
	}
}

// Listings returns a snapshot copy of the cached board.
func (c *Cache) Listings() []models.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Listing, len(c.listings))
	copy(out, c.listings)
	return out
}

// Run seeds the cache and then follows the broadcast stream until ctx is
// cancelled. Missed events are not replayed by the server, so every
// reconnect starts with a fresh seed fetch.
func (c *Cache) Run(ctx context.Context) error {
	if err := c.Seed(ctx); err != nil {
		return err
	}
	for {
		if err := c.stream(ctx); err != nil && ctx.Err() == nil {
			logrus.Errorf("listing stream dropped: %+v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.retryDelay):
		}
		if err := c.Seed(ctx); err != nil {
			logrus.Errorf("failed to reseed listings: %+v", err)
		}
	}
}

// Seed replaces the cache with the server's full listing set.
func (c *Cache) Seed(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/listings", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listing fetch returned status %s", resp.Status)
	}

	listings := make([]models.Listing, 0)
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return err
	}

	c.mu.Lock()
	c.listings = listings
	c.mu.Unlock()
	return nil
}

func (c *Cache) stream(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := c.apply(frame); err != nil {
			logrus.Errorf("failed to apply broadcast frame: %+v", err)
		}
	}
}

// apply patches the cache from one broadcast frame.
func (c *Cache) apply(frame []byte) error {
	var event struct {
		Event   models.EventType `json:"event"`
		Payload json.RawMessage  `json:"payload"`
	}
	if err := json.Unmarshal(frame, &event); err != nil {
		return err
	}

	switch event.Event {
	case models.EventListingCreated:
		var listing models.Listing
		if err := json.Unmarshal(event.Payload, &listing); err != nil {
			return err
		}
		c.prepend(listing)
	case models.EventListingUpdated:
		var listing models.Listing
		if err := json.Unmarshal(event.Payload, &listing); err != nil {
			return err
		}
		c.replace(listing)
	case models.EventListingDeleted:
		var listingID int
		if err := json.Unmarshal(event.Payload, &listingID); err != nil {
			return err
		}
		c.remove(listingID)
	default:
		return errors.New("unknown event " + string(event.Event))
	}
	return nil
}

// prepend adds a new listing at the front, de-duplicating by id in case
// the seed fetch and the broadcast raced.
func (c *Cache) prepend(listing models.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.listings {
		if c.listings[i].ID == listing.ID {
			c.listings[i] = listing
			return
		}
	}
	c.listings = append([]models.Listing{listing}, c.listings...)
}

func (c *Cache) replace(listing models.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.listings {
		if c.listings[i].ID == listing.ID {
			c.listings[i] = listing
			return
		}
	}
}

func (c *Cache) remove(listingID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.listings[:0]
	for _, l := range c.listings {
		if l.ID != listingID {
			kept = append(kept, l)
		}
	}
	c.listings = kept
}

func (c *Cache) wsURL() string {
	url := c.baseURL + "/ws"
	if strings.HasPrefix(url, "https") {
		return "wss" + strings.TrimPrefix(url, "https")
	}
	return "ws" + strings.TrimPrefix(url, "http")
}
