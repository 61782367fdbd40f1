// Package cache stores the last good tower batch and fetch diagnostics under
// well-known keys of a store.Store.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/towerdash/internal/model"
	"github.com/sells-group/towerdash/internal/proxy"
	"github.com/sells-group/towerdash/internal/store"
)

// Well-known keys. The names match what the browser dashboard kept in local
// storage so exported values stay interchangeable.
const (
	KeyTowers           = "cachedTowers"
	KeyLastFetch        = "lastFetchTime"
	KeyLastSuccess      = "lastSuccessfulFetch"
	KeyLastHTTPStatus   = "lastHttpStatus"
	KeyProxiesAttempted = "proxiesAttempted"
)

// Keys lists every key owned by the cache.
var Keys = []string{
	KeyTowers,
	KeyLastFetch,
	KeyLastSuccess,
	KeyLastHTTPStatus,
	KeyProxiesAttempted,
}

// ErrCorrupt is returned by LoadBatch when the stored batch cannot be decoded.
// The entry has already been removed when it is returned.
var ErrCorrupt = eris.New("cache: corrupt batch")

// Cache reads and writes the well-known keys.
type Cache struct {
	st  store.Store
	now func() time.Time
}

// New creates a Cache on top of st.
func New(st store.Store) *Cache {
	return &Cache{st: st, now: time.Now}
}

// SaveBatch persists towers and stamps the last fetch time.
func (c *Cache) SaveBatch(ctx context.Context, towers []model.Tower) error {
	data, err := json.Marshal(towers)
	if err != nil {
		return eris.Wrap(err, "cache: marshal batch")
	}
	if err := c.st.Set(ctx, KeyTowers, string(data)); err != nil {
		return eris.Wrap(err, "cache: save batch")
	}
	return eris.Wrap(c.stamp(ctx, KeyLastFetch), "cache: save batch")
}

// LoadBatch returns the persisted batch tagged as cache. It returns nil
// without error when nothing is stored. An undecodable entry is deleted and
// ErrCorrupt is returned.
func (c *Cache) LoadBatch(ctx context.Context) ([]model.Tower, error) {
	raw, found, err := c.st.Get(ctx, KeyTowers)
	if err != nil {
		return nil, eris.Wrap(err, "cache: load batch")
	}
	if !found || strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var towers []model.Tower
	if err := json.Unmarshal([]byte(raw), &towers); err != nil {
		zap.L().Warn("cache: dropping corrupt batch", zap.Error(err))
		if derr := c.st.Delete(ctx, KeyTowers); derr != nil {
			return nil, eris.Wrap(derr, "cache: delete corrupt batch")
		}
		return nil, ErrCorrupt
	}
	if len(towers) == 0 {
		return nil, nil
	}
	return model.Tag(towers, model.SourceCache), nil
}

// StoreSuccessfulFetch stamps the last successful live fetch.
func (c *Cache) StoreSuccessfulFetch(ctx context.Context) error {
	return eris.Wrap(c.stamp(ctx, KeyLastSuccess), "cache: store successful fetch")
}

// StoreHTTPStatus records the status code of the most recent attempt.
func (c *Cache) StoreHTTPStatus(ctx context.Context, status int) error {
	err := c.st.Set(ctx, KeyLastHTTPStatus, strconv.Itoa(status))
	return eris.Wrap(err, "cache: store http status")
}

// StoreAttemptedProxies records the proxies tried in the current cycle.
func (c *Cache) StoreAttemptedProxies(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return eris.Wrap(c.st.Delete(ctx, KeyProxiesAttempted), "cache: clear attempted proxies")
	}
	err := c.st.Set(ctx, KeyProxiesAttempted, proxy.JoinNames(names))
	return eris.Wrap(err, "cache: store attempted proxies")
}

// ClearAll removes every well-known key.
func (c *Cache) ClearAll(ctx context.Context) error {
	if err := c.st.Delete(ctx, Keys...); err != nil {
		return eris.Wrap(err, "cache: clear")
	}
	zap.L().Info("cache cleared")
	return nil
}

func (c *Cache) stamp(ctx context.Context, key string) error {
	return c.st.Set(ctx, key, c.now().UTC().Format(time.RFC3339Nano))
}

// Diagnostics is a snapshot of the persisted fetch bookkeeping.
type Diagnostics struct {
	LastFetch        *time.Time `json:"lastFetchTime,omitempty"`
	LastSuccess      *time.Time `json:"lastSuccessfulFetch,omitempty"`
	LastHTTPStatus   int        `json:"lastHttpStatus,omitempty"`
	ProxiesAttempted []string   `json:"proxiesAttempted,omitempty"`
	CachedTowers     int        `json:"cachedTowers"`
}

// Diagnostics reads the bookkeeping keys. Unparseable values are reported as
// absent.
func (c *Cache) Diagnostics(ctx context.Context) (*Diagnostics, error) {
	d := &Diagnostics{}

	var err error
	if d.LastFetch, err = c.timeAt(ctx, KeyLastFetch); err != nil {
		return nil, err
	}
	if d.LastSuccess, err = c.timeAt(ctx, KeyLastSuccess); err != nil {
		return nil, err
	}

	status, found, err := c.st.Get(ctx, KeyLastHTTPStatus)
	if err != nil {
		return nil, eris.Wrap(err, "cache: diagnostics")
	}
	if found {
		d.LastHTTPStatus, _ = strconv.Atoi(strings.TrimSpace(status))
	}

	names, found, err := c.st.Get(ctx, KeyProxiesAttempted)
	if err != nil {
		return nil, eris.Wrap(err, "cache: diagnostics")
	}
	if found {
		d.ProxiesAttempted = proxy.SplitNames(names)
	}

	towers, err := c.LoadBatch(ctx)
	if err != nil && !eris.Is(err, ErrCorrupt) {
		return nil, err
	}
	d.CachedTowers = len(towers)
	return d, nil
}

func (c *Cache) timeAt(ctx context.Context, key string) (*time.Time, error) {
	raw, found, err := c.st.Get(ctx, key)
	if err != nil {
		return nil, eris.Wrapf(err, "cache: read %s", key)
	}
	if !found {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return nil, nil //nolint:nilerr
	}
	return &t, nil
}
