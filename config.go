package txgateway

import (
	"time"

	"github.com/caarlos0/env/v5"
)

// Config is the top-level configuration, loaded from a YAML file with
// environment variables taking precedence over whatever the file sets.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Resilient ResilienceConfig `yaml:"resilience"`
	Log       LogConfig        `yaml:"log"`
}

// ServerConfig controls the HTTP transport (C10).
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS" envDefault:":3000"`
}

// ResilienceConfig controls the middleware chain (C9).
type ResilienceConfig struct {
	MaxInFlightPerOp int64         `yaml:"max_in_flight_per_op" env:"MAX_IN_FLIGHT_PER_OP" envDefault:"64"`
	AcquireTimeout   time.Duration `yaml:"acquire_timeout" env:"ACQUIRE_TIMEOUT" envDefault:"2s"`
}

// LogConfig controls the zerolog level used throughout.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" envDefault:"info"`
}

// ApplyEnv overlays environment variables onto cfg, in place. Values
// already set from the YAML file survive unless their env var is present,
// mirroring caarlos0/env's envDefault precedence.
func (c *Config) ApplyEnv() error {
	return env.Parse(c)
}
