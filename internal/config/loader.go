package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "SMICLEAN"

// configKeys lists every settable key.  Viper only consults the environment
// for keys it knows about, so each key is registered with a nil default;
// without this, SMICLEAN_* variables for sections absent from the config
// file would be silently ignored.
var configKeys = []string{
	"criteria.elements",
	"criteria.min_heavy_atoms", "criteria.max_heavy_atoms",
	"criteria.max_mol_weight", "criteria.min_carbons",
	"criteria.max_num_rings", "criteria.max_ring_size",
	"criteria.keep_stereo", "criteria.keep_isotope_molecules",
	"criteria.uncharge", "criteria.kekulize", "criteria.keep_largest_fragment",
	"criteria.randomize_smiles", "criteria.report_errors",
	"vocabulary.path",
	"worker.concurrency", "worker.progress_every", "worker.watch_dir",
	"worker.output_dir", "worker.metrics_addr", "worker.shutdown_timeout",
	"database.enabled", "database.host", "database.port", "database.user",
	"database.password", "database.db_name", "database.ssl_mode",
	"database.max_conns", "database.min_conns", "database.conn_max_lifetime",
	"redis.enabled", "redis.addr", "redis.password", "redis.db",
	"redis.pool_size", "redis.dial_timeout", "redis.read_timeout",
	"redis.write_timeout", "redis.key_prefix",
	"kafka.enabled", "kafka.brokers", "kafka.topic",
	"kafka.producer_retries", "kafka.batch_size", "kafka.timeout_ms",
	"minio.enabled", "minio.endpoint", "minio.access_key",
	"minio.secret_key", "minio.bucket", "minio.use_ssl",
	"log.level", "log.format", "log.output",
}

// newViper builds a pre-configured Viper instance: YAML file type,
// SMICLEAN_ env prefix, automatic env binding, and a key replacer mapping
// "." to "_" so nested keys like "database.host" resolve to
// SMICLEAN_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		v.SetDefault(key, nil)
	}
	// Rejection records are reported unless explicitly disabled.
	v.SetDefault("criteria.report_errors", true)
	return v
}

// Load reads the YAML file at configPath, merges SMICLEAN_* environment
// overrides, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from SMICLEAN_* environment variables
// plus defaults, with no config file.  Preferred for containerised runs.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk and still parses and validates.
// A change producing an invalid config skips the callback so the running
// process never adopts a broken state.  Non-blocking; viper manages the
// watcher goroutine.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; callers should have called Load already.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on error.  For use in main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
