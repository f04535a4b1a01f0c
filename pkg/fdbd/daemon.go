// Package fdbd assembles the forwarding database daemon: the table, the
// learning sources, the aging scanner and the snapshot writer.
package fdbd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vswitch-platform/vswitch/modules/fdb"
	"github.com/vswitch-platform/vswitch/modules/fdb/aging"
	"github.com/vswitch-platform/vswitch/modules/fdb/learn"
	"github.com/vswitch-platform/vswitch/modules/fdb/persist"
)

// Option is a function that configures the daemon.
type Option func(*options)

// WithLog configures the daemon with a logger.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithClock configures the learning time source, mainly for tests.
func WithClock(clock learn.Clock) Option {
	return func(o *options) {
		o.Clock = clock
	}
}

type options struct {
	Log   *zap.SugaredLogger
	Clock learn.Clock
}

func newOptions() *options {
	return &options{
		Log:   zap.NewNop().Sugar(),
		Clock: learn.SystemClock,
	}
}

// Daemon owns one forwarding database and the components around it.
type Daemon struct {
	cfg     *Config
	table   *fdb.Table
	learner *learn.Learner
	scanner *aging.Scanner
	monitor *learn.BridgeMonitor
	store   *persist.Store
	writer  *persist.Writer
	log     *zap.SugaredLogger
}

// NewDaemon wires the components described by the config.
func NewDaemon(cfg *Config, options ...Option) (*Daemon, error) {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}
	log := opts.Log

	table := fdb.NewTable()

	scanner, err := aging.NewScanner(cfg.Aging, table,
		aging.WithLog(log.Named("aging")),
		aging.WithNotifier(func(evicted []fdb.Record) {
			// The upstream notification channel lives outside this
			// daemon; aged-out entries are only reported in the log.
			for _, rec := range evicted {
				log.Infow("fdb entry aged out", zap.Stringer("record", rec))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create aging scanner: %w", err)
	}

	learner := learn.NewLearner(cfg.Learning, table, opts.Clock, log.Named("learn"))

	var monitor *learn.BridgeMonitor
	if cfg.Learning.BridgeMirror {
		monitor = learn.NewBridgeMonitor(learner,
			learn.WithLog(log.Named("bridge")),
			learn.WithUpdateInterval(cfg.Learning.BridgeUpdateInterval),
		)
	}

	var store *persist.Store
	var writer *persist.Writer
	if cfg.Snapshot.Path != "" {
		store = persist.NewStore(cfg.Snapshot.Path, cfg.Snapshot.MaxSize)
		writer = persist.NewWriter(store, table, cfg.Snapshot.WriteInterval, log.Named("persist"))
	}

	return &Daemon{
		cfg:     cfg,
		table:   table,
		learner: learner,
		scanner: scanner,
		monitor: monitor,
		store:   store,
		writer:  writer,
		log:     log,
	}, nil
}

// Table returns the forwarding database.
func (m *Daemon) Table() *fdb.Table {
	return m.table
}

// Learner returns the learning front end for frame ingest paths.
func (m *Daemon) Learner() *learn.Learner {
	return m.learner
}

// Run restores persisted state and runs all components until the context
// is canceled.
func (m *Daemon) Run(ctx context.Context) error {
	if m.store != nil {
		records, err := m.store.Load()
		if err != nil {
			return fmt.Errorf("failed to load fdb snapshot: %w", err)
		}
		if len(records) > 0 {
			m.table.Restore(records)
			m.log.Infow("restored fdb snapshot", zap.Int("records", len(records)))
		}
	}

	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return m.scanner.Run(ctx)
	})
	if m.monitor != nil {
		wg.Go(func() error {
			return m.monitor.Run(ctx)
		})
	}
	if m.writer != nil {
		wg.Go(func() error {
			return m.writer.Run(ctx)
		})
	}

	return wg.Wait()
}
