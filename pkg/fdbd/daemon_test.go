package fdbd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/require"

	"github.com/vswitch-platform/vswitch/modules/fdb"
	"github.com/vswitch-platform/vswitch/modules/fdb/persist"
)

func testConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.Aging.ScanPeriod = 10 * time.Millisecond
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "fdb.snapshot")
	cfg.Snapshot.WriteInterval = time.Hour
	cfg.Snapshot.MaxSize = datasize.MB
	return cfg
}

func TestDaemonRestoresSnapshotOnStart(t *testing.T) {
	cfg := testConfig(t)

	mac, err := fdb.ParseMAC("02:00:00:00:00:01")
	require.NoError(t, err)
	persisted := fdb.NewRecord(
		fdb.Key{SwitchID: cfg.Learning.SwitchID, BridgeDomain: 100, MAC: mac},
		7, 4102444800)

	store := persist.NewStore(cfg.Snapshot.Path, cfg.Snapshot.MaxSize)
	require.NoError(t, store.Save([]fdb.Record{persisted}))

	daemon, err := NewDaemon(cfg, WithClock(func() uint64 { return 4102444800 }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()

	require.Eventually(t, func() bool {
		rec, ok := daemon.Table().Lookup(persisted.Key())
		return ok && rec.Equal(persisted)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop in time")
	}
}

func TestDaemonRejectsCorruptSnapshot(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t,
		writeFile(cfg.Snapshot.Path, "this is not a record\n"))

	daemon, err := NewDaemon(cfg)
	require.NoError(t, err)

	err = daemon.Run(context.Background())
	require.Error(t, err)

	var formatErr *fdb.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestDaemonLearnerFeedsTable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snapshot.Path = ""

	daemon, err := NewDaemon(cfg, WithClock(func() uint64 { return 2208988800 }))
	require.NoError(t, err)

	mac, err := fdb.ParseMAC("02:00:00:00:00:02")
	require.NoError(t, err)
	rec := daemon.Learner().Observe(mac, 100, 9)

	stored, ok := daemon.Table().Lookup(rec.Key())
	require.True(t, ok)
	require.Equal(t, uint64(2208988800), stored.Timestamp())
}

func TestDaemonRejectsBadStaticPattern(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aging.StaticMACs = []string{"[02:"}

	_, err := NewDaemon(cfg)
	require.Error(t, err)
}
