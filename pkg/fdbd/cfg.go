package fdbd

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/vswitch-platform/vswitch/common/go/logging"
	"github.com/vswitch-platform/vswitch/modules/fdb/aging"
	"github.com/vswitch-platform/vswitch/modules/fdb/learn"
	"github.com/vswitch-platform/vswitch/modules/fdb/persist"
)

// Config is the daemon configuration.
type Config struct {
	// Logging configuration.
	Logging logging.Config `yaml:"logging"`
	// Aging is the eviction configuration.
	Aging *aging.Config `yaml:"aging"`
	// Learning configures the switch identity and learning sources.
	Learning *learn.Config `yaml:"learning"`
	// Snapshot configures table persistence. An empty path disables it.
	Snapshot *persist.Config `yaml:"snapshot"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: logging.Config{
			Level: zapcore.InfoLevel,
		},
		Aging:    aging.DefaultConfig(),
		Learning: learn.DefaultConfig(),
		Snapshot: persist.DefaultConfig(),
	}
}

// LoadConfig loads the configuration from the given path.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to deserialize config: %w", err)
	}

	return cfg, nil
}
