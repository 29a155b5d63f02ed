package dashboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/healthdash/internal/domain"
	"github.com/hamed0406/healthdash/internal/probe"
)

// ErrUnknownService is returned for an index outside the target list.
var ErrUnknownService = errors.New("unknown service")

// Board owns the displayed health entries, one per target in target order.
// Entries change only through StartAll/StartOne and their blocking variants.
type Board struct {
	logger  *zap.Logger
	checker probe.Checker
	targets []domain.ServiceTarget

	mu      sync.RWMutex
	entries []domain.ServiceHealth
}

// New returns a board with every target in the loading state.
func New(logger *zap.Logger, checker probe.Checker, targets []domain.ServiceTarget) *Board {
	ts := append([]domain.ServiceTarget(nil), targets...)
	entries := make([]domain.ServiceHealth, len(ts))
	for i, t := range ts {
		entries[i] = t.Loading()
	}
	return &Board{
		logger:  logger,
		checker: checker,
		targets: ts,
		entries: entries,
	}
}

// Len is the number of targets on the board.
func (b *Board) Len() int { return len(b.targets) }

// Snapshot returns a copy of the current entries.
func (b *Board) Snapshot() []domain.ServiceHealth {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneEntries(b.entries)
}

// StartAll marks every entry loading before returning, then probes all
// targets concurrently. Once every probe has settled the whole set is
// replaced in one write and sent on the returned channel.
func (b *Board) StartAll(ctx context.Context) <-chan []domain.ServiceHealth {
	b.mu.Lock()
	for i, t := range b.targets {
		b.entries[i] = t.Loading()
	}
	b.mu.Unlock()

	done := make(chan []domain.ServiceHealth, 1)
	go func() {
		defer close(done)

		results := make([]domain.ServiceHealth, len(b.targets))
		var wg sync.WaitGroup
		for i, tgt := range b.targets {
			wg.Add(1)
			go func(i int, t domain.ServiceTarget) {
				defer wg.Done()
				results[i] = b.probe(ctx, t)
			}(i, tgt)
		}
		wg.Wait()

		b.mu.Lock()
		b.entries = cloneEntries(results)
		b.mu.Unlock()

		b.logCommit(results)
		done <- results
	}()
	return done
}

// CheckAll runs StartAll and waits for the commit.
func (b *Board) CheckAll(ctx context.Context) []domain.ServiceHealth {
	return <-b.StartAll(ctx)
}

// StartOne marks only entry index loading, probes that target alone and
// replaces only that entry once the probe settles.
func (b *Board) StartOne(ctx context.Context, index int) (<-chan domain.ServiceHealth, error) {
	if index < 0 || index >= len(b.targets) {
		return nil, ErrUnknownService
	}
	t := b.targets[index]

	b.mu.Lock()
	b.entries[index] = t.Loading()
	b.mu.Unlock()

	done := make(chan domain.ServiceHealth, 1)
	go func() {
		defer close(done)
		res := b.probe(ctx, t)

		b.mu.Lock()
		b.entries[index] = cloneEntry(res)
		b.mu.Unlock()

		done <- res
	}()
	return done, nil
}

// CheckOne runs StartOne and waits for the entry to be replaced.
func (b *Board) CheckOne(ctx context.Context, index int) (domain.ServiceHealth, error) {
	done, err := b.StartOne(ctx, index)
	if err != nil {
		return domain.ServiceHealth{}, err
	}
	return <-done, nil
}

func (b *Board) probe(ctx context.Context, t domain.ServiceTarget) domain.ServiceHealth {
	out := b.checker.Check(ctx, t.Endpoint)

	h := domain.ServiceHealth{Name: t.Name, Endpoint: t.Endpoint, Status: domain.StatusKO}
	if out.Success {
		h.Status = domain.StatusOK
	}
	if out.Responded() && out.LatencyMS != nil {
		ms := *out.LatencyMS
		h.ResponseTimeMS = &ms
	}

	if h.Status == domain.StatusKO {
		b.logger.Warn("probe_failed",
			zap.String("service", t.Name),
			zap.String("endpoint", t.Endpoint),
			zap.Int("status", out.StatusCode),
			zap.String("reason", out.Message),
		)
	}
	fields := []zap.Field{
		zap.String("service", t.Name),
		zap.String("endpoint", t.Endpoint),
		zap.String("health", string(h.Status)),
		zap.Int("status", out.StatusCode),
		zap.String("reason", out.Message),
	}
	if h.ResponseTimeMS != nil {
		fields = append(fields, zap.Int64("latency_ms", *h.ResponseTimeMS))
	}
	b.logger.Debug("probe_settled", fields...)
	return h
}

func (b *Board) logCommit(results []domain.ServiceHealth) {
	var ok, ko int
	for _, r := range results {
		if r.Status == domain.StatusOK {
			ok++
		} else {
			ko++
		}
	}
	b.logger.Info("board_committed", zap.Int("ok", ok), zap.Int("ko", ko))
}

func cloneEntries(in []domain.ServiceHealth) []domain.ServiceHealth {
	out := make([]domain.ServiceHealth, len(in))
	for i, e := range in {
		out[i] = cloneEntry(e)
	}
	return out
}

// cloneEntry copies e so that no latency pointer is shared with the board.
func cloneEntry(e domain.ServiceHealth) domain.ServiceHealth {
	if e.ResponseTimeMS != nil {
		ms := *e.ResponseTimeMS
		e.ResponseTimeMS = &ms
	}
	return e
}
