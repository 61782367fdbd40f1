// Package pipeline produces tower batches from the spreadsheet, the persisted
// cache or the demonstration data, in that order of preference.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/towerdash/internal/cache"
	"github.com/sells-group/towerdash/internal/metrics"
	"github.com/sells-group/towerdash/internal/model"
	"github.com/sells-group/towerdash/internal/proxy"
	"github.com/sells-group/towerdash/pkg/sheets"
)

// Tier names the step of the retrieval that produced a result.
type Tier string

const (
	TierMemory        Tier = "memory_cache"
	TierPersisted     Tier = "persisted_cache"
	TierLive          Tier = "live"
	TierFallbackCache Tier = "fallback_cache"
	TierMock          Tier = "mock"
)

// Config controls live fetching and caching.
type Config struct {
	SheetID string
	Tab     string
	APIKey  string
	BaseURL string

	// AttemptTimeout bounds one proxy attempt, retries included. Default: 30s.
	AttemptTimeout time.Duration
	// Retries is the number of tries per proxy for transient failures. Default: 1.
	Retries int
	// QueryStale is how long a memory cache entry is served. Default: 60s.
	QueryStale time.Duration
}

// Configured reports whether a live fetch can be attempted.
func (c Config) Configured() bool {
	return c.SheetID != "" && c.APIKey != ""
}

func (c Config) withDefaults() Config {
	if c.Tab == "" {
		c.Tab = "torres"
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 30 * time.Second
	}
	if c.Retries <= 0 {
		c.Retries = 1
	}
	if c.QueryStale <= 0 {
		c.QueryStale = 60 * time.Second
	}
	return c
}

// Options modify a single Fetch.
type Options struct {
	// SkipCache bypasses the persisted cache check before the live fetch.
	// The persisted cache is still used as a fallback.
	SkipCache bool
}

// Attempt describes one proxy attempt of a live fetch.
type Attempt struct {
	Proxy    string        `json:"proxy"`
	Index    int           `json:"index"`
	Status   int           `json:"status,omitempty"`
	Outcome  string        `json:"outcome"`
	Rows     int           `json:"rows,omitempty"`
	Towers   int           `json:"towers,omitempty"`
	Duration time.Duration `json:"durationNs"`
	Error    string        `json:"error,omitempty"`
}

// Notice is the user-facing message that accompanies a result.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notice levels.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Result is a tower batch with its provenance. Results may be shared between
// callers and must not be modified.
type Result struct {
	Towers     []model.Tower `json:"towers"`
	Source     model.Source  `json:"source"`
	Tier       Tier          `json:"tier"`
	BatchID    uuid.UUID     `json:"batchId"`
	ProxyIndex int           `json:"proxyIndex"`
	Attempts   []Attempt     `json:"attempts,omitempty"`
	Notice     *Notice       `json:"notice,omitempty"`
	FetchedAt  time.Time     `json:"fetchedAt"`
}

// Pipeline runs retrievals. It holds no per-session state.
type Pipeline struct {
	client  sheets.Client
	cache   *cache.Cache
	proxies []proxy.Proxy
	cfg     Config

	group singleflight.Group
	now   func() time.Time
}

// New creates a Pipeline. A nil or empty proxies list uses proxy.Defaults.
func New(client sheets.Client, c *cache.Cache, proxies []proxy.Proxy, cfg Config) *Pipeline {
	if len(proxies) == 0 {
		proxies = proxy.Defaults()
	}
	return &Pipeline{
		client:  client,
		cache:   c,
		proxies: append([]proxy.Proxy(nil), proxies...),
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

// NewSession creates a session over the pipeline's proxies.
func (p *Pipeline) NewSession() *Session {
	return NewSession(p.proxies, p.now())
}

// Fetch returns the best available batch for the session. It never fails:
// when every tier is exhausted the demonstration batch is returned. Concurrent
// calls for the same session and query share one retrieval.
//
// The shared retrieval ignores the caller's cancellation; each proxy attempt
// is bounded by Config.AttemptTimeout instead. A caller whose context ends
// first is not waited for.
func (p *Pipeline) Fetch(ctx context.Context, s *Session, opts Options) *Result {
	key := s.QueryKey()
	flightKey := fmt.Sprintf("%s|%s|%t", s.ID(), key, opts.SkipCache)

	flight := context.WithoutCancel(ctx)
	ch := p.group.DoChan(flightKey, func() (any, error) {
		return p.fetch(flight, s, key, opts), nil
	})
	select {
	case r := <-ch:
		return r.Val.(*Result)
	case <-ctx.Done():
		return p.abandoned(s, ctx.Err())
	}
}

// abandoned answers a caller that stopped waiting. Nothing is stored.
func (p *Pipeline) abandoned(s *Session, err error) *Result {
	zap.L().Debug("pipeline: caller left before batch was ready",
		zap.String("session", s.ID()), zap.Error(err))
	if res, ok := s.cached(s.QueryKey(), p.now(), p.cfg.QueryStale); ok {
		hit := *res
		hit.Tier = TierMemory
		return &hit
	}
	return &Result{
		Source:     model.SourceMock,
		Tier:       TierMock,
		ProxyIndex: s.LastProxy(),
		FetchedAt:  p.now(),
		Notice: &Notice{
			Level:   LevelWarning,
			Message: "Requisição cancelada antes de os dados ficarem prontos.",
		},
	}
}

func (p *Pipeline) fetch(ctx context.Context, s *Session, key string, opts Options) *Result {
	start := p.now()
	log := zap.L().With(zap.String("session", s.ID()), zap.String("query", key))

	if res, ok := s.cached(key, start, p.cfg.QueryStale); ok {
		log.Debug("pipeline: memory cache hit", zap.String("source", string(res.Source)))
		hit := *res
		hit.Tier = TierMemory
		return &hit
	}

	res := p.retrieve(ctx, s, opts, log)
	res.BatchID = uuid.New()
	res.FetchedAt = start
	res.ProxyIndex = s.LastProxy()

	if ctx.Err() != nil {
		log.Warn("pipeline: retrieval interrupted, batch not kept in memory", zap.Error(ctx.Err()))
	} else {
		s.remember(key, res, start)
	}
	metrics.RecordRetrieval(string(res.Source), string(res.Tier), len(res.Towers), time.Since(start))
	log.Info("pipeline: batch ready",
		zap.String("source", string(res.Source)),
		zap.String("tier", string(res.Tier)),
		zap.Int("towers", len(res.Towers)),
		zap.Int("attempts", len(res.Attempts)),
	)
	return res
}

func (p *Pipeline) retrieve(ctx context.Context, s *Session, opts Options, log *zap.Logger) *Result {
	if !opts.SkipCache {
		if towers := p.loadCache(ctx, log); len(towers) > 0 {
			return &Result{Towers: towers, Source: model.SourceCache, Tier: TierPersisted}
		}
	}

	towers, attempts := p.live(ctx, s, log)
	if len(towers) > 0 {
		return &Result{
			Towers:   towers,
			Source:   model.SourceSheets,
			Tier:     TierLive,
			Attempts: attempts,
			Notice: &Notice{
				Level:   LevelSuccess,
				Message: fmt.Sprintf("%d torres carregadas com sucesso", len(towers)),
			},
		}
	}

	if towers := p.loadCache(ctx, log); len(towers) > 0 {
		return &Result{
			Towers:   towers,
			Source:   model.SourceCache,
			Tier:     TierFallbackCache,
			Attempts: attempts,
			Notice: &Notice{
				Level:   LevelWarning,
				Message: "Usando dados em cache. Não foi possível conectar à planilha.",
			},
		}
	}

	log.Warn("pipeline: serving demonstration data")
	return &Result{
		Towers:   MockTowers(),
		Source:   model.SourceMock,
		Tier:     TierMock,
		Attempts: attempts,
		Notice: &Notice{
			Level:   LevelError,
			Message: "Usando dados de demonstração. Não foi possível obter dados da planilha.",
		},
	}
}

func (p *Pipeline) loadCache(ctx context.Context, log *zap.Logger) []model.Tower {
	towers, err := p.cache.LoadBatch(ctx)
	if err != nil {
		log.Warn("pipeline: persisted cache unavailable", zap.Error(err))
		return nil
	}
	return towers
}

// Refresh starts a new query generation for the session and fetches
// straight from the sheet, bypassing the persisted cache.
func (p *Pipeline) Refresh(ctx context.Context, s *Session) *Result {
	s.Refresh(p.now())
	return p.Fetch(ctx, s, Options{SkipCache: true})
}

// ClearCache removes every persisted key and the session's memory cache.
func (p *Pipeline) ClearCache(ctx context.Context, s *Session) error {
	if s != nil {
		s.forget()
	}
	return p.cache.ClearAll(ctx)
}

// FindTower fetches the session's batch and returns the tower with id, or nil.
func (p *Pipeline) FindTower(ctx context.Context, s *Session, id string) (*model.Tower, *Result) {
	res := p.Fetch(ctx, s, Options{})
	return model.FindTower(res.Towers, id), res
}

// Diagnostics combines the persisted fetch bookkeeping with session state.
type Diagnostics struct {
	cache.Diagnostics

	Configured       bool      `json:"configured"`
	LastRefresh      time.Time `json:"lastRefresh"`
	LastSuccessProxy int       `json:"lastSuccessProxy"`
	SessionAttempted []string  `json:"sessionAttempted,omitempty"`
	Proxies          []string  `json:"proxies"`
}

// Diagnostics reports the state of the persisted cache and of s.
func (p *Pipeline) Diagnostics(ctx context.Context, s *Session) (*Diagnostics, error) {
	cd, err := p.cache.Diagnostics(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(p.proxies))
	for i, px := range p.proxies {
		names[i] = px.Name
	}

	return &Diagnostics{
		Diagnostics:      *cd,
		Configured:       p.cfg.Configured(),
		LastRefresh:      s.LastRefresh(),
		LastSuccessProxy: s.LastProxy(),
		SessionAttempted: s.Rotation().Attempted(),
		Proxies:          names,
	}, nil
}
