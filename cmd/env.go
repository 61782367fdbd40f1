package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/towerdash/internal/cache"
	"github.com/sells-group/towerdash/internal/pipeline"
	"github.com/sells-group/towerdash/internal/store"
	"github.com/sells-group/towerdash/pkg/sheets"
)

// towerEnv holds the store, cache and pipeline used by the data commands.
type towerEnv struct {
	Store    store.Store
	Cache    *cache.Cache
	Pipeline *pipeline.Pipeline
	Session  *pipeline.Session
}

// Close releases resources held by the environment.
func (e *towerEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv opens the store and builds the pipeline with one session. Callers
// should defer env.Close().
func initEnv(ctx context.Context, mode string) (*towerEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	c := cache.New(st)
	p := pipeline.New(sheets.NewClient(), c, cfg.Proxies, cfg.Pipeline())
	return &towerEnv{
		Store:    st,
		Cache:    c,
		Pipeline: p,
		Session:  p.NewSession(),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "memory":
		return store.Open(ctx, cfg.StoreOptions())
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
