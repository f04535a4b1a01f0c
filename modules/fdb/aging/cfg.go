package aging

import (
	"time"
)

// Config is the aging scanner configuration.
type Config struct {
	// MaxAge is how long a record may stay inactive before it is
	// evicted.
	MaxAge time.Duration `yaml:"max_age"`
	// ScanPeriod is how often the table is swept.
	ScanPeriod time.Duration `yaml:"scan_period"`
	// StaticMACs are glob patterns for addresses that are never aged
	// out, e.g. "02:*" or a full address.
	StaticMACs []string `yaml:"static_macs"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxAge:     600 * time.Second,
		ScanPeriod: 30 * time.Second,
	}
}
