// Package fdb implements the forwarding database of a virtual switch:
// learned MAC-to-port bindings together with their last-activity time.
//
// The last-activity timestamp is an unsigned 64-bit count of seconds and
// is carried at full width through every code path, including the textual
// form, so that time-based eviction keeps working past the 32-bit epoch
// rollover in 2038 and across widely separated timestamps.
package fdb

// Key is the logical identity of a learned binding. Two records with the
// same key describe the same binding; storing both must replace, never
// duplicate.
type Key struct {
	// SwitchID identifies the owning switch instance. Zero means the
	// record is not bound to a switch yet.
	SwitchID uint64
	// BridgeDomain is the VLAN or bridge scope (bv_id) within which the
	// MAC is unique.
	BridgeDomain uint64
	// MAC is the learned hardware address.
	MAC MAC
}

// Record binds a learned MAC address to the bridge port that observed it.
//
// The identity fields (switch, bridge domain, MAC) stay fixed for the
// record's lifetime; the bridge port and timestamp change when the
// address moves or is seen again. Switch, bridge-domain and port
// identifiers are opaque 64-bit handles compared only for equality.
type Record struct {
	switchID     uint64
	bridgeDomain uint64
	mac          MAC
	bridgePort   uint64
	lastActivity uint64
}

// NewRecord creates a record for a binding observed on the given bridge
// port at the given time.
func NewRecord(key Key, bridgePort, timestamp uint64) Record {
	return Record{
		switchID:     key.SwitchID,
		bridgeDomain: key.BridgeDomain,
		mac:          key.MAC,
		bridgePort:   bridgePort,
		lastActivity: timestamp,
	}
}

// SetEntry sets the identity fields of the record.
func (m *Record) SetEntry(switchID, bridgeDomain uint64, mac MAC) {
	m.switchID = switchID
	m.bridgeDomain = bridgeDomain
	m.mac = mac
}

// Key returns the record's logical identity.
func (m Record) Key() Key {
	return Key{SwitchID: m.switchID, BridgeDomain: m.bridgeDomain, MAC: m.mac}
}

// SwitchID returns the owning switch handle.
func (m Record) SwitchID() uint64 { return m.switchID }

// BridgeDomain returns the bv_id scope of the binding.
func (m Record) BridgeDomain() uint64 { return m.bridgeDomain }

// MAC returns the learned hardware address.
func (m Record) MAC() MAC { return m.mac }

// SetBridgePortID updates the observing port. MAC moves update only this
// field and the timestamp, leaving the identity untouched.
func (m *Record) SetBridgePortID(id uint64) { m.bridgePort = id }

// BridgePortID returns the port the address was last observed on.
func (m Record) BridgePortID() uint64 { return m.bridgePort }

// SetTimestamp stores the last-activity time in seconds. Any uint64 value
// is valid; there is no clamping and no truncation.
func (m *Record) SetTimestamp(v uint64) { m.lastActivity = v }

// Timestamp returns the last-activity time in seconds.
func (m Record) Timestamp() uint64 { return m.lastActivity }

// Age returns now minus the last-activity time, saturating at zero when
// the record is newer than now. The subtraction is unsigned 64-bit end to
// end.
func (m Record) Age(now uint64) uint64 {
	if now < m.lastActivity {
		return 0
	}
	return now - m.lastActivity
}

// Equal reports whether every field of both records matches.
func (m Record) Equal(other Record) bool {
	return m == other
}

// Compare orders records by last-activity time, oldest first, with
// unsigned semantics.
func (m Record) Compare(other Record) int {
	switch {
	case m.lastActivity < other.lastActivity:
		return -1
	case m.lastActivity > other.lastActivity:
		return 1
	}
	return 0
}

// String returns the serialized form, which is convenient for logging.
func (m Record) String() string {
	return m.Serialize()
}
