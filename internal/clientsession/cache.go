package clientsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fitstudio/fitstudio-server/internal/realtime"
	"github.com/google/uuid"
)

// Profile is the client-side view of the authenticated user.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	ImageURL  string    `json:"imageUrl"`
}

// Provider is the underlying session source the cache synchronizes with:
// in practice an API client holding the session cookies.
type Provider interface {
	// HasSession reports whether any credential is currently held.
	HasSession(ctx context.Context) bool
	// FetchProfile re-validates the session against the server's
	// resolution endpoint and returns a fresh profile.
	FetchProfile(ctx context.Context) (*Profile, error)
	// Invalidate discards the underlying session.
	Invalidate(ctx context.Context) error
}

// Cache holds the one cached profile. A nil profile means unauthenticated
// or not yet resolved. Constructed per instance so tests can build a fresh
// one; nothing here is a package-level singleton.
type Cache struct {
	mu      sync.RWMutex
	storage Storage
	profile *Profile
}

// NewCache builds a cache backed by storage, loading any persisted profile.
func NewCache(storage Storage) (*Cache, error) {
	c := &Cache{storage: storage}

	data, err := storage.Load()
	if err != nil {
		if errors.Is(err, ErrEmpty) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to load session cache: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		// A corrupt cache file is treated as empty rather than fatal.
		_ = storage.Clear()
		return c, nil
	}
	c.profile = &profile
	return c, nil
}

// Get returns the cached profile, or nil when unauthenticated.
func (c *Cache) Get() *Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return nil
	}
	copied := *c.profile
	return &copied
}

// Set replaces the cached profile and persists it.
func (c *Cache) Set(profile *Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	if err := c.storage.Save(data); err != nil {
		return err
	}
	c.profile = profile
	return nil
}

// Clear drops the cached profile and its persisted copy.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.profile = nil
	return c.storage.Clear()
}

// Restore brings the cache in line with the provider at startup: if a
// session exists it is re-validated with a fresh profile fetch; any failure
// clears the cache and invalidates the provider session so a stale
// credential cannot linger.
func (c *Cache) Restore(ctx context.Context, provider Provider) error {
	if !provider.HasSession(ctx) {
		return c.Clear()
	}

	profile, err := provider.FetchProfile(ctx)
	if err != nil {
		_ = c.Clear()
		_ = provider.Invalidate(ctx)
		return fmt.Errorf("session restore failed: %w", err)
	}

	return c.Set(profile)
}

// HandleEvent applies a session-change notification. Sign-out clears the
// cache; sign-in fetches a fresh profile; a token refresh leaves the cached
// profile alone since profile data does not change on rotation.
func (c *Cache) HandleEvent(ctx context.Context, event realtime.Event, provider Provider) error {
	switch event.Type {
	case realtime.EventSignedOut:
		return c.Clear()
	case realtime.EventSignedIn:
		profile, err := provider.FetchProfile(ctx)
		if err != nil {
			return err
		}
		return c.Set(profile)
	case realtime.EventTokenRefreshed:
		return nil
	default:
		return nil
	}
}
