package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemforge/smiclean/internal/domain/filter"
)

func defaultedConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := defaultedConfig()

	assert.Equal(t, DefaultElements, cfg.Criteria.Elements)
	assert.Equal(t, DefaultMinHeavyAtoms, cfg.Criteria.MinHeavyAtoms)
	assert.Equal(t, DefaultMaxHeavyAtoms, cfg.Criteria.MaxHeavyAtoms)
	assert.Equal(t, DefaultMaxMolWeight, cfg.Criteria.MaxMolWeight)
	assert.Equal(t, DefaultWorkerConcurrency, cfg.Worker.Concurrency)
	assert.Equal(t, DefaultWorkerProgressEvery, cfg.Worker.ProgressEvery)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultVocabularyPath, cfg.Vocabulary.Path)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	cfg := &Config{}
	cfg.Criteria.Elements = []string{"C", "N"}
	cfg.Worker.Concurrency = 2
	cfg.Log.Level = "debug"
	ApplyDefaults(cfg)

	assert.Equal(t, []string{"C", "N"}, cfg.Criteria.Elements)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyDefaults_NilConfig(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaulted config is valid", func(t *testing.T) {
		assert.NoError(t, defaultedConfig().Validate())
	})

	t.Run("bad criteria", func(t *testing.T) {
		cfg := defaultedConfig()
		cfg.Criteria.Elements = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad concurrency", func(t *testing.T) {
		cfg := defaultedConfig()
		cfg.Worker.Concurrency = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := defaultedConfig()
		cfg.Log.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("disabled integrations skip their checks", func(t *testing.T) {
		cfg := defaultedConfig()
		cfg.Database.Host = ""
		cfg.Redis.Addr = ""
		cfg.Kafka.Brokers = nil
		assert.NoError(t, cfg.Validate())
	})

	t.Run("enabled database requires user", func(t *testing.T) {
		cfg := defaultedConfig()
		cfg.Database.Enabled = true
		cfg.Database.User = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("enabled kafka requires topic", func(t *testing.T) {
		cfg := defaultedConfig()
		cfg.Kafka.Enabled = true
		cfg.Kafka.Topic = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.local", Port: 5433, User: "svc", Password: "pw",
		DBName: "curation", SSLMode: "require",
	}
	assert.Equal(t, "postgres://svc:pw@db.local:5433/curation?sslmode=require", db.DSN())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smiclean.yaml")
	yaml := `
criteria:
  elements: ["C", "N", "O", "S"]
  max_heavy_atoms: 50
  kekulize: true
  keep_isotope_molecules: true
worker:
  concurrency: 4
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "N", "O", "S"}, cfg.Criteria.Elements)
	assert.Equal(t, 50, cfg.Criteria.MaxHeavyAtoms)
	assert.True(t, cfg.Criteria.Kekulize)
	assert.True(t, cfg.Criteria.KeepIsotopes)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset sections fall back to defaults.
	assert.Equal(t, DefaultMaxMolWeight, cfg.Criteria.MaxMolWeight)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smiclean.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: verbose\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SMICLEAN_WORKER_CONCURRENCY", "3")
	t.Setenv("SMICLEAN_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Criteria.ReportErrors)
}

func TestLoadFromEnv_ReportErrorsOptOut(t *testing.T) {
	t.Setenv("SMICLEAN_CRITERIA_REPORT_ERRORS", "false")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Criteria.ReportErrors)
}

func TestLoadFromEnv_CriteriaToggles(t *testing.T) {
	t.Setenv("SMICLEAN_CRITERIA_KEKULIZE", "true")
	t.Setenv("SMICLEAN_CRITERIA_RANDOMIZE_SMILES", "true")
	t.Setenv("SMICLEAN_CRITERIA_KEEP_ISOTOPE_MOLECULES", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Criteria.Kekulize)
	assert.True(t, cfg.Criteria.RandomizeSMILES)
	assert.True(t, cfg.Criteria.KeepIsotopes)
}

// Every Criteria field must be registered in configKeys; viper consults the
// environment only for keys it knows about, so an unregistered field would
// silently ignore its SMICLEAN_CRITERIA_* override.
func TestConfigKeys_CoverEveryCriteriaField(t *testing.T) {
	registered := make(map[string]bool, len(configKeys))
	for _, key := range configKeys {
		registered[key] = true
	}

	rt := reflect.TypeOf(filter.Criteria{})
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("mapstructure")
		require.NotEmpty(t, tag, "field %s has no mapstructure tag", rt.Field(i).Name)
		assert.True(t, registered["criteria."+tag],
			"criteria.%s is not in configKeys; its env override would be ignored", tag)
	}
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}
