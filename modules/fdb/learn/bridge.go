package learn

import (
	"context"
	"fmt"
	"time"

	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/vswitch-platform/vswitch/modules/fdb"
)

// MonitorOption is a function that configures the bridge monitor.
type MonitorOption func(*monitorOptions)

// WithUpdateInterval configures the monitor with a force-update interval.
func WithUpdateInterval(interval time.Duration) MonitorOption {
	return func(o *monitorOptions) {
		o.UpdateInterval = interval
	}
}

// WithLog configures the monitor with a logger.
func WithLog(log *zap.SugaredLogger) MonitorOption {
	return func(o *monitorOptions) {
		o.Log = log
	}
}

type monitorOptions struct {
	UpdateInterval time.Duration
	Log            *zap.SugaredLogger
}

func newMonitorOptions() *monitorOptions {
	return &monitorOptions{
		UpdateInterval: 5 * time.Minute,
		Log:            zap.NewNop().Sugar(),
	}
}

// BridgeMonitor mirrors the kernel bridge forwarding database into the
// table, both reactively on netlink neighbour events and periodically.
//
// Kernel FDB entries arrive as AF_BRIDGE neighbours: the VLAN becomes the
// bridge domain and the link index becomes the bridge port handle.
// Deletion events are ignored on purpose to avoid flaps; stale entries
// are left for the aging scanner.
type BridgeMonitor struct {
	learner        *Learner
	updateInterval time.Duration
	log            *zap.SugaredLogger
}

// NewBridgeMonitor creates a bridge FDB monitor feeding the learner.
func NewBridgeMonitor(learner *Learner, options ...MonitorOption) *BridgeMonitor {
	opts := newMonitorOptions()
	for _, o := range options {
		o(opts)
	}

	return &BridgeMonitor{
		learner:        learner,
		updateInterval: opts.UpdateInterval,
		log:            opts.Log,
	}
}

// Run runs the monitor until the specified context is canceled.
func (m *BridgeMonitor) Run(ctx context.Context) error {
	m.log.Debugf("starting bridge fdb monitor")
	defer m.log.Debugf("stopped bridge fdb monitor")

	// Bootstrap synchronously so the table is populated before the
	// subscription delivers its first event.
	if err := m.mirrorBridgeFDB(); err != nil {
		m.log.Warnw("failed to bootstrap bridge fdb", zap.Error(err))
	}

	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return m.runSubscription(ctx)
	})
	wg.Go(func() error {
		return m.runPeriodicUpdate(ctx)
	})

	return wg.Wait()
}

func (m *BridgeMonitor) runSubscription(ctx context.Context) error {
	txRx := make(chan netlink.NeighUpdate, 1)
	opts := netlink.NeighSubscribeOptions{}
	if err := netlink.NeighSubscribeWithOptions(txRx, ctx.Done(), opts); err != nil {
		return fmt.Errorf("failed to subscribe to neighbour updates: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-txRx:
			if err := m.processNeighUpdate(update); err != nil {
				m.log.Warnw("failed to process neighbour update", zap.Error(err))
			}
		}
	}
}

func (m *BridgeMonitor) runPeriodicUpdate(ctx context.Context) error {
	timer := time.NewTicker(m.updateInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := m.mirrorBridgeFDB(); err != nil {
				m.log.Warnw("failed to mirror bridge fdb", zap.Error(err))
			}
		}
	}
}

func (m *BridgeMonitor) processNeighUpdate(update netlink.NeighUpdate) error {
	if update.Family != unix.AF_BRIDGE {
		return nil
	}

	switch update.Type {
	case unix.RTM_NEWNEIGH:
		m.learnNeigh(update.Neigh)
	case unix.RTM_DELNEIGH:
		// Ignored; the aging scanner removes stale entries.
	default:
		m.log.Warnf("received unexpected neighbour update type: %d", update.Type)
	}

	return nil
}

func (m *BridgeMonitor) mirrorBridgeFDB() error {
	neighs, err := netlink.NeighList(0, unix.AF_BRIDGE)
	if err != nil {
		return fmt.Errorf("failed to list bridge fdb entries: %w", err)
	}

	learned := 0
	for _, neigh := range neighs {
		if m.learnNeigh(neigh) {
			learned++
		}
	}

	m.log.Infow("mirrored kernel bridge fdb",
		zap.Int("entries", len(neighs)),
		zap.Int("learned", learned),
	)
	return nil
}

func (m *BridgeMonitor) learnNeigh(neigh netlink.Neigh) bool {
	mac, err := fdb.MACFromHardwareAddr(neigh.HardwareAddr)
	if err != nil {
		m.log.Debugw("skipping bridge fdb entry with unsupported address",
			zap.Stringer("addr", neigh.HardwareAddr))
		return false
	}
	if !mac.IsUnicast() || mac.IsZero() {
		return false
	}

	domain := uint64(neigh.Vlan)
	if neigh.Vlan == 0 {
		domain = m.learner.defaultDomain
	}
	m.learner.Observe(mac, domain, uint64(neigh.LinkIndex))
	return true
}
