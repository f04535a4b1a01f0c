// Package learn feeds observed source addresses into the forwarding
// database, either from raw Ethernet frames or from the kernel bridge
// FDB.
package learn

import (
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"go.uber.org/zap"

	"github.com/vswitch-platform/vswitch/modules/fdb"
)

// Clock supplies the observation time in seconds. Records never read the
// wall clock themselves; every learned timestamp comes from here.
type Clock func() uint64

// SystemClock reads the system time.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// Config is the learning configuration.
type Config struct {
	// SwitchID is the handle of the switch instance records are bound
	// to.
	SwitchID uint64 `yaml:"switch_id"`
	// DefaultBridgeDomain is the bv_id used for untagged frames.
	DefaultBridgeDomain uint64 `yaml:"default_bridge_domain"`
	// BridgeMirror enables mirroring of the kernel bridge FDB.
	BridgeMirror bool `yaml:"bridge_mirror"`
	// BridgeUpdateInterval is the period of the full kernel FDB re-read.
	BridgeUpdateInterval time.Duration `yaml:"bridge_update_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		SwitchID:             0x21000000000000,
		DefaultBridgeDomain:  1,
		BridgeUpdateInterval: 5 * time.Minute,
	}
}

// Learner turns source-address observations into table updates.
type Learner struct {
	table         *fdb.Table
	switchID      uint64
	defaultDomain uint64
	clock         Clock
	log           *zap.SugaredLogger
}

// NewLearner creates a learner writing into the given table.
func NewLearner(cfg *Config, table *fdb.Table, clock Clock, log *zap.SugaredLogger) *Learner {
	return &Learner{
		table:         table,
		switchID:      cfg.SwitchID,
		defaultDomain: cfg.DefaultBridgeDomain,
		clock:         clock,
		log:           log,
	}
}

// Observe learns one source-address observation on the given bridge port.
func (m *Learner) Observe(mac fdb.MAC, bridgeDomain, bridgePort uint64) fdb.Record {
	key := fdb.Key{
		SwitchID:     m.switchID,
		BridgeDomain: bridgeDomain,
		MAC:          mac,
	}
	return m.table.Learn(key, bridgePort, m.clock())
}

// ObserveFrame parses an Ethernet frame received on the given bridge port
// and learns its source address. The bridge domain is taken from the
// 802.1Q tag when present, otherwise the default domain is used. Frames
// without a learnable source (non-Ethernet, multicast or zero source MAC)
// are skipped and reported as not ok.
func (m *Learner) ObserveFrame(data []byte, bridgePort uint64) (fdb.Record, bool) {
	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Lazy)

	eth, ok := pkt.LinkLayer().(*layers.Ethernet)
	if !ok {
		m.log.Debugw("dropping non-ethernet frame", zap.Int("len", len(data)))
		return fdb.Record{}, false
	}

	mac, err := fdb.MACFromHardwareAddr(eth.SrcMAC)
	if err != nil {
		m.log.Debugw("dropping frame with unsupported source address",
			zap.Stringer("src", eth.SrcMAC))
		return fdb.Record{}, false
	}
	if !mac.IsUnicast() || mac.IsZero() {
		return fdb.Record{}, false
	}

	domain := m.defaultDomain
	if l := pkt.Layer(layers.LayerTypeDot1Q); l != nil {
		domain = uint64(l.(*layers.Dot1Q).VLANIdentifier)
	}

	return m.Observe(mac, domain, bridgePort), true
}
