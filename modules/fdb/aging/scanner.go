// Package aging evicts forwarding database records whose last activity is
// older than a configured threshold.
package aging

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/vswitch-platform/vswitch/modules/fdb"
)

// Clock supplies the current time in seconds. The scanner, not the
// records, reads the clock; tests substitute a fixed one.
type Clock func() uint64

// Notifier receives records evicted by a sweep, e.g. to report aged-out
// entries upstream.
type Notifier func([]fdb.Record)

// Option is a function that configures the scanner.
type Option func(*options)

// WithLog configures the scanner with a logger.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithClock configures the scanner with a time source.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.Clock = clock
	}
}

// WithNotifier configures the scanner with an eviction callback.
func WithNotifier(notify Notifier) Option {
	return func(o *options) {
		o.Notify = notify
	}
}

type options struct {
	Log    *zap.SugaredLogger
	Clock  Clock
	Notify Notifier
}

func newOptions() *options {
	return &options{
		Log: zap.NewNop().Sugar(),
		Clock: func() uint64 {
			return uint64(time.Now().Unix())
		},
	}
}

// Scanner periodically sweeps the forwarding database and evicts records
// whose age exceeded the configured maximum. The threshold and period are
// passed in explicitly; there is no ambient process-wide aging state.
type Scanner struct {
	table  *fdb.Table
	maxAge uint64
	period time.Duration
	keep   func(fdb.Record) bool
	clock  Clock
	notify Notifier
	log    *zap.SugaredLogger
}

// NewScanner creates a scanner over the given table. Static MAC patterns
// from the config are compiled once; a bad pattern fails construction.
func NewScanner(cfg *Config, table *fdb.Table, options ...Option) (*Scanner, error) {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	if cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("aging max_age must be positive, got %v", cfg.MaxAge)
	}
	if cfg.ScanPeriod <= 0 {
		return nil, fmt.Errorf("aging scan_period must be positive, got %v", cfg.ScanPeriod)
	}

	globs := make([]glob.Glob, 0, len(cfg.StaticMACs))
	for _, pattern := range cfg.StaticMACs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile static MAC pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	var keep func(fdb.Record) bool
	if len(globs) > 0 {
		keep = func(rec fdb.Record) bool {
			addr := rec.MAC().String()
			for _, g := range globs {
				if g.Match(addr) {
					return true
				}
			}
			return false
		}
	}

	return &Scanner{
		table:  table,
		maxAge: uint64(cfg.MaxAge / time.Second),
		period: cfg.ScanPeriod,
		keep:   keep,
		clock:  opts.Clock,
		notify: opts.Notify,
		log:    opts.Log,
	}, nil
}

// Run sweeps the table periodically until the context is canceled.
func (m *Scanner) Run(ctx context.Context) error {
	m.log.Infow("starting fdb aging scanner",
		zap.Uint64("max_age", m.maxAge),
		zap.Duration("scan_period", m.period),
	)
	defer m.log.Info("stopped fdb aging scanner")

	timer := time.NewTicker(m.period)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			m.Sweep()
		}
	}
}

// Sweep evicts aged records once and reports them to the notifier.
// Returns the number of evicted records.
func (m *Scanner) Sweep() int {
	now := m.clock()
	evicted := m.table.SweepAged(now, m.maxAge, m.keep)
	if len(evicted) == 0 {
		return 0
	}

	for _, rec := range evicted {
		m.log.Debugw("aged out fdb record",
			zap.Stringer("mac", rec.MAC()),
			zap.Uint64("bv_id", rec.BridgeDomain()),
			zap.Uint64("age", rec.Age(now)),
		)
	}
	m.log.Infow("swept fdb table",
		zap.Int("evicted", len(evicted)),
		zap.Int("remaining", m.table.Len()),
	)

	if m.notify != nil {
		m.notify(evicted)
	}
	return len(evicted)
}
