package fdb

import (
	"sync"

	"github.com/gobwas/glob"
)

// Table is the forwarding database: learned records keyed by their
// logical identity.
//
// A single lock serializes writers, so a MAC move applies the new port
// and the refreshed timestamp as one unit and readers never observe a new
// port with a stale timestamp or vice versa.
type Table struct {
	mu      sync.RWMutex
	records map[Key]Record
}

// NewTable returns an empty forwarding database.
func NewTable() *Table {
	return &Table{
		records: make(map[Key]Record),
	}
}

// Learn inserts or refreshes the binding for the given key. An existing
// record is replaced in place: the port and timestamp are updated as a
// pair while the identity fields keep their values.
func (m *Table) Learn(key Key, bridgePort, timestamp uint64) Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		rec = NewRecord(key, bridgePort, timestamp)
	} else {
		rec.SetBridgePortID(bridgePort)
		rec.SetTimestamp(timestamp)
	}
	m.records[key] = rec
	return rec
}

// Insert stores the record under its own key, replacing any previous one.
func (m *Table) Insert(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.Key()] = rec
}

// Lookup returns the record for the given key.
func (m *Table) Lookup(key Key) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	return rec, ok
}

// Delete removes the record for the given key.
func (m *Table) Delete(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[key]
	delete(m.records, key)
	return ok
}

// Len returns the number of learned records.
func (m *Table) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}

// Records returns a point-in-time copy of all records. The copy is taken
// under the read lock, so callers never observe a torn update.
func (m *Table) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	return records
}

// Restore atomically replaces the whole table, e.g. with records loaded
// from a snapshot.
func (m *Table) Restore(records []Record) {
	next := make(map[Key]Record, len(records))
	for _, rec := range records {
		next[rec.Key()] = rec
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = next
}

// FlushMatching removes records whose MAC matches the pattern and returns
// how many were removed.
func (m *Table) FlushMatching(pattern glob.Glob) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	flushed := 0
	for key := range m.records {
		if pattern.Match(key.MAC.String()) {
			delete(m.records, key)
			flushed++
		}
	}
	return flushed
}

// SweepAged removes and returns records whose age at the given time
// exceeds maxAge. Records for which keep returns true are never evicted;
// keep may be nil. Age computation is unsigned 64-bit, so the sweep stays
// correct for timestamps on both sides of the 32-bit boundaries.
func (m *Table) SweepAged(now, maxAge uint64, keep func(Record) bool) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	var evicted []Record
	for key, rec := range m.records {
		if keep != nil && keep(rec) {
			continue
		}
		if rec.Age(now) > maxAge {
			evicted = append(evicted, rec)
			delete(m.records, key)
		}
	}
	return evicted
}
