// Package persist reads and writes forwarding database snapshots as
// line-oriented text, one serialized record per line. The textual form is
// the record's own serialization, so a snapshot written before 2038 and
// loaded after it reconstructs every timestamp exactly.
package persist

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/vswitch-platform/vswitch/modules/fdb"
)

// Config is the snapshot store configuration.
type Config struct {
	// Path is where the snapshot file lives. Empty disables
	// persistence.
	Path string `yaml:"path"`
	// WriteInterval is how often the table is written out.
	WriteInterval time.Duration `yaml:"write_interval"`
	// MaxSize bounds the snapshot; larger files are rejected on load
	// and larger tables are rejected on save.
	MaxSize datasize.ByteSize `yaml:"max_size"`
}

func DefaultConfig() *Config {
	return &Config{
		WriteInterval: time.Minute,
		MaxSize:       64 * datasize.MB,
	}
}

// Store is a file-backed snapshot of the forwarding database.
type Store struct {
	path    string
	maxSize datasize.ByteSize
}

// NewStore creates a store over the given file path.
func NewStore(path string, maxSize datasize.ByteSize) *Store {
	return &Store{
		path:    path,
		maxSize: maxSize,
	}
}

// Save writes all records atomically: the snapshot goes to a temporary
// file first and replaces the previous one with a rename.
func (m *Store) Save(records []fdb.Record) error {
	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(rec.Serialize())
		sb.WriteByte('\n')
	}

	if m.maxSize > 0 && datasize.ByteSize(sb.Len()) > m.maxSize {
		return fmt.Errorf("snapshot size %s exceeds limit %s",
			datasize.ByteSize(sb.Len()).String(), m.maxSize.String())
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot back. A missing file yields no records. A
// malformed line fails the whole load; the caller decides whether to
// start with an empty table instead.
func (m *Store) Load() ([]fdb.Record, error) {
	buf, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if m.maxSize > 0 && datasize.ByteSize(len(buf)) > m.maxSize {
		return nil, fmt.Errorf("snapshot size %s exceeds limit %s",
			datasize.ByteSize(len(buf)).String(), m.maxSize.String())
	}

	var records []fdb.Record
	for i, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rec, err := fdb.Deserialize(line)
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
