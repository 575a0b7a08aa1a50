// Package chaos implements the failure-injection gate: an operator-managed
// denylist of operation identifiers that guarded request paths consult
// before doing any work. It exists so integration tests and operators can
// exercise failure handling on demand.
package chaos

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/contenthub/internal/logging"
)

var timeNow = time.Now

// Source supplies the current denylist from an externally managed store.
type Source interface {
	Denied(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]string, error)

func (f SourceFunc) Denied(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Gate answers whether an operation is currently forced to fail.
//
// The denylist is re-read from the source on every call, or from a cached
// snapshot no older than cacheTTL, so operator toggles take effect without
// a redeploy. When the source itself cannot be read, the gate logs a
// warning and reports "not denied": a chaos-store outage must never block
// real traffic.
type Gate struct {
	source   Source
	cacheTTL time.Duration
	logger   logging.Logger

	mu        sync.Mutex
	cached    map[string]struct{}
	fetchedAt time.Time
}

func NewGate(source Source, cacheTTL time.Duration, logger logging.Logger) *Gate {
	return &Gate{
		source:   source,
		cacheTTL: cacheTTL,
		logger:   logger.With("module", "chaos_gate"),
	}
}

// IsDenied reports whether operationID is currently denylisted.
func (g *Gate) IsDenied(ctx context.Context, operationID string) bool {
	denied, err := g.snapshot(ctx)
	if err != nil {
		g.logger.Warn(ctx, "denylist read failed, proceeding without injection", "error", err.Error())
		return false
	}
	_, ok := denied[operationID]
	return ok
}

func (g *Gate) snapshot(ctx context.Context) (map[string]struct{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := timeNow()
	if g.cached != nil && g.cacheTTL > 0 && now.Sub(g.fetchedAt) < g.cacheTTL {
		return g.cached, nil
	}

	ops, err := g.source.Denied(ctx)
	if err != nil {
		return nil, err
	}

	denied := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		denied[op] = struct{}{}
	}

	g.cached = denied
	g.fetchedAt = now
	return denied, nil
}
