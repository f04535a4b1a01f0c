package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/vswitch-platform/vswitch/modules/fdb"
)

// How many times a single snapshot write is retried before waiting for
// the next interval.
const maxWriteAttempts = 5

// Writer periodically snapshots the table. Failed writes are retried with
// exponential backoff within the interval.
type Writer struct {
	store    *Store
	table    *fdb.Table
	interval time.Duration
	log      *zap.SugaredLogger
}

// NewWriter creates a periodic snapshot writer.
func NewWriter(store *Store, table *fdb.Table, interval time.Duration, log *zap.SugaredLogger) *Writer {
	return &Writer{
		store:    store,
		table:    table,
		interval: interval,
		log:      log,
	}
}

// Run writes snapshots until the context is canceled, then writes a final
// one so learned state survives a restart.
func (m *Writer) Run(ctx context.Context) error {
	m.log.Infow("starting fdb snapshot writer", zap.Duration("interval", m.interval))

	timer := time.NewTicker(m.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := m.store.Save(m.table.Records()); err != nil {
				m.log.Warnw("failed to write final snapshot", zap.Error(err))
			}
			return ctx.Err()
		case <-timer.C:
			if err := m.writeWithRetry(ctx); err != nil {
				m.log.Warnw("failed to write snapshot", zap.Error(err))
			}
		}
	}
}

func (m *Writer) writeWithRetry(ctx context.Context) error {
	ticker := backoff.NewTicker(&backoff.ExponentialBackOff{
		InitialInterval:     backoff.DefaultInitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         m.interval,
	})
	defer ticker.Stop()

	var lastErr error
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			attempts++
			if lastErr = m.store.Save(m.table.Records()); lastErr == nil {
				return nil
			}
			if attempts >= maxWriteAttempts {
				return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
			}
			m.log.Warnw("snapshot write failed, retrying",
				zap.Int("attempt", attempts),
				zap.Error(lastErr),
			)
		}
	}
}
