// Package origincache holds the process-wide snapshot of per-application
// origin configuration and API secrets. The first call after start or Reset
// scans the backing tables once; every later call reads the snapshot.
// Staleness is accepted: invalidation is manual via Reset only.
package origincache

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/vanity-address-api/internal/domain"
)

// Loader is the bulk read the cache performs on a cold snapshot.
type Loader interface {
	AllOrigins(ctx context.Context) ([]domain.OriginConfig, error)
	AllApplicationKeys(ctx context.Context) ([]domain.ApplicationKey, error)
}

type snapshot struct {
	origins []domain.OriginConfig
	keys    []domain.ApplicationKey
}

// Cache is read-mostly shared state. Reads never block; Reset is a single
// pointer store, so an in-flight read sees either the old or the new
// snapshot, never a torn one.
type Cache struct {
	loader Loader
	snap   atomic.Pointer[snapshot]
}

func New(loader Loader) *Cache {
	return &Cache{loader: loader}
}

// Reset drops the snapshot; the next call reloads from the store.
func (c *Cache) Reset() {
	c.snap.Store(nil)
	slog.Info("origin cache reset")
}

// load returns the current snapshot, scanning the backing tables when cold.
// A failed scan degrades to an empty snapshot without caching it, so origin
// resolution fails closed ("unauthorized") instead of crashing the caller.
func (c *Cache) load(ctx context.Context) *snapshot {
	if s := c.snap.Load(); s != nil {
		return s
	}
	origins, err := c.loader.AllOrigins(ctx)
	if err != nil {
		slog.Error("could not load origin configs", "err", err)
		return &snapshot{}
	}
	keys, err := c.loader.AllApplicationKeys(ctx)
	if err != nil {
		slog.Error("could not load application keys", "err", err)
		return &snapshot{}
	}
	s := &snapshot{origins: origins, keys: keys}
	c.snap.Store(s)
	return s
}

// AllOrigins returns every origin configuration.
func (c *Cache) AllOrigins(ctx context.Context) []domain.OriginConfig {
	return c.load(ctx).origins
}

// ByApplicationID returns the configuration owning the application id, or nil.
func (c *Cache) ByApplicationID(ctx context.Context, applicationID string) *domain.OriginConfig {
	for _, o := range c.load(ctx).origins {
		if o.ApplicationID == applicationID {
			cfg := o
			return &cfg
		}
	}
	return nil
}

// ApplicationIDForOrigin returns the application id whose allow-list contains
// origin, or "" when no configuration matches. Matching is case-sensitive.
func (c *Cache) ApplicationIDForOrigin(ctx context.Context, origin string) string {
	for _, o := range c.load(ctx).origins {
		if o.AllowsOrigin(origin) {
			return o.ApplicationID
		}
	}
	return ""
}

// AllowedOriginStrings returns every allowed origin string across all
// configurations, comma-lists flattened.
func (c *Cache) AllowedOriginStrings(ctx context.Context) []string {
	var out []string
	for _, o := range c.load(ctx).origins {
		out = append(out, o.OriginList()...)
	}
	return out
}

// ReturnURL resolves the redirect target for a referer: the first rule whose
// From equals referer wins, yielding the web or app target by isWeb.
// Returns "" when no configuration or rule matches.
func (c *Cache) ReturnURL(ctx context.Context, origin, applicationID, referer string, isWeb bool) string {
	for _, o := range c.load(ctx).origins {
		if o.ApplicationID != applicationID || !o.AllowsOrigin(origin) {
			continue
		}
		for _, rule := range o.ReturnURLs {
			if rule.From != referer {
				continue
			}
			if isWeb {
				return rule.ToWeb
			}
			return rule.ToApp
		}
		return ""
	}
	return ""
}

// APISecret returns the API secret for an application id, or "".
func (c *Cache) APISecret(ctx context.Context, applicationID string) string {
	for _, k := range c.load(ctx).keys {
		if k.ApplicationID == applicationID {
			return k.APISecret
		}
	}
	return ""
}
