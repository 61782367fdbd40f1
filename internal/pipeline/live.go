package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/towerdash/internal/metrics"
	"github.com/sells-group/towerdash/internal/model"
	"github.com/sells-group/towerdash/internal/parse"
	"github.com/sells-group/towerdash/internal/proxy"
	"github.com/sells-group/towerdash/internal/resilience"
	"github.com/sells-group/towerdash/pkg/sheets"
)

// Outcomes of an attempt that reached the sheet but yielded no towers.
const (
	outcomeInsufficientRows = "insufficient_rows"
	outcomeNoValidRows      = "no_valid_rows"
)

// live tries every proxy once, starting with the last one that worked, and
// returns the first non-empty batch. The batch is persisted before returning.
func (p *Pipeline) live(ctx context.Context, s *Session, log *zap.Logger) ([]model.Tower, []Attempt) {
	if !p.cfg.Configured() {
		log.Warn("pipeline: sheets not configured, skipping live fetch",
			zap.Bool("sheet_id_set", p.cfg.SheetID != ""),
			zap.Bool("api_key_set", p.cfg.APIKey != ""),
		)
		return nil, nil
	}

	target := sheets.ValuesURL(p.cfg.BaseURL, p.cfg.SheetID, p.cfg.Tab, p.cfg.APIKey, s.LastRefresh())
	rot := s.Rotation()

	var attempts []Attempt
	for _, index := range rot.Order() {
		if ctx.Err() != nil {
			log.Warn("pipeline: live fetch canceled", zap.Error(ctx.Err()))
			break
		}
		px, ok := rot.Attempt(index)
		if !ok {
			continue
		}

		att, towers := p.attempt(ctx, px, index, target)
		attempts = append(attempts, att)
		p.bookkeep(ctx, att, rot.Attempted(), log)

		if len(towers) == 0 {
			continue
		}

		s.recordSuccess(index)
		tagged := model.Tag(towers, model.SourceSheets)
		if err := p.cache.SaveBatch(ctx, tagged); err != nil {
			log.Warn("pipeline: failed to persist batch", zap.Error(err))
		}
		if err := p.cache.StoreSuccessfulFetch(ctx); err != nil {
			log.Warn("pipeline: failed to store success time", zap.Error(err))
		}
		return tagged, attempts
	}

	log.Warn("pipeline: all proxies failed", zap.Int("attempts", len(attempts)))
	return nil, attempts
}

// attempt performs one proxy attempt. Errors stay inside the returned Attempt.
func (p *Pipeline) attempt(ctx context.Context, px proxy.Proxy, index int, target string) (att Attempt, towers []model.Tower) {
	log := zap.L().With(zap.String("proxy", px.Name), zap.Int("index", index))
	att = Attempt{Proxy: px.Name, Index: index}

	start := time.Now()
	defer func() {
		att.Duration = time.Since(start)
		metrics.RecordProxyAttempt(px.Name, att.Outcome, att.Duration)
	}()

	actx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	resp, err := resilience.DoVal(actx, resilience.RetryConfig{
		MaxAttempts: p.cfg.Retries,
		OnRetry:     resilience.RetryLogger(px.Name),
	}, func(ctx context.Context) (*sheets.ValuesResponse, error) {
		return p.client.GetValues(ctx, px.Wrap(target))
	})
	if err != nil {
		if actx.Err() != nil && ctx.Err() == nil {
			err = eris.Wrapf(actx.Err(), "pipeline: proxy %s timed out", px.Name)
		}
		att.Status = sheets.StatusCode(err)
		att.Outcome = resilience.Outcome(err)
		att.Error = err.Error()
		log.Warn("pipeline: proxy attempt failed", zap.Int("status", att.Status), zap.Error(err))
		return att, nil
	}

	att.Status = resp.StatusCode
	if att.Status == 0 {
		att.Status = 200
	}
	att.Rows = len(resp.Values)
	if len(resp.Values) < 2 {
		att.Outcome = outcomeInsufficientRows
		log.Warn("pipeline: sheet returned no data rows", zap.Int("rows", att.Rows))
		return att, nil
	}

	res := parse.MapGrid(resp.Values)
	defaults := 0
	for _, t := range res.Towers {
		defaults += len(t.Missing)
	}
	metrics.RecordMapping(len(res.Towers), len(res.Skipped), defaults)

	att.Towers = len(res.Towers)
	if len(res.Towers) == 0 {
		att.Outcome = outcomeNoValidRows
		log.Warn("pipeline: no valid towers in sheet",
			zap.Int("rows", att.Rows),
			zap.Int("skipped", len(res.Skipped)),
		)
		return att, nil
	}

	att.Outcome = resilience.Outcome(nil)
	log.Info("pipeline: proxy attempt succeeded",
		zap.Int("towers", att.Towers),
		zap.Int("skipped", len(res.Skipped)),
		zap.Bool("legacy_layout", res.Legacy),
	)
	return att, res.Towers
}

// bookkeep persists the attempt's HTTP status and the attempted proxy names.
func (p *Pipeline) bookkeep(ctx context.Context, att Attempt, attempted []string, log *zap.Logger) {
	if att.Status > 0 {
		if err := p.cache.StoreHTTPStatus(ctx, att.Status); err != nil {
			log.Warn("pipeline: failed to store http status", zap.Error(err))
		}
	}
	if err := p.cache.StoreAttemptedProxies(ctx, attempted); err != nil {
		log.Warn("pipeline: failed to store attempted proxies", zap.Error(err))
	}
}
