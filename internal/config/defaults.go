package config

import "time"

// Default values applied to unset fields.  The criteria defaults target
// drug-like small-molecule curation and follow the element set and bounds
// commonly used for generative-model training corpora.
const (
	DefaultMinHeavyAtoms = 2
	DefaultMaxHeavyAtoms = 70
	DefaultMaxMolWeight  = 750.0
	DefaultMinCarbons    = 1
	DefaultMaxNumRings   = 10
	DefaultMaxRingSize   = 8

	DefaultWorkerConcurrency   = 8
	DefaultWorkerProgressEvery = 1000
	DefaultMetricsAddr         = ":9090"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "smiclean"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "smiclean"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "smiclean.runs"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "smiclean-artifacts"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultVocabularyPath = "vocabulary.json"
)

// DefaultElements is the permitted element set applied when the criteria
// section does not configure one.
var DefaultElements = []string{"H", "B", "C", "N", "O", "F", "Si", "P", "S", "Cl", "Br", "I"}

// ApplyDefaults fills every zero-value field in cfg with the project default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.  It must run after unmarshalling and before
// Validate so defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Criteria
	if len(cfg.Criteria.Elements) == 0 {
		cfg.Criteria.Elements = append([]string(nil), DefaultElements...)
	}
	if cfg.Criteria.MinHeavyAtoms == 0 {
		cfg.Criteria.MinHeavyAtoms = DefaultMinHeavyAtoms
	}
	if cfg.Criteria.MaxHeavyAtoms == 0 {
		cfg.Criteria.MaxHeavyAtoms = DefaultMaxHeavyAtoms
	}
	if cfg.Criteria.MaxMolWeight == 0 {
		cfg.Criteria.MaxMolWeight = DefaultMaxMolWeight
	}
	if cfg.Criteria.MinCarbons == 0 {
		cfg.Criteria.MinCarbons = DefaultMinCarbons
	}
	if cfg.Criteria.MaxNumRings == 0 {
		cfg.Criteria.MaxNumRings = DefaultMaxNumRings
	}
	if cfg.Criteria.MaxRingSize == 0 {
		cfg.Criteria.MaxRingSize = DefaultMaxRingSize
	}

	// Vocabulary
	if cfg.Vocabulary.Path == "" {
		cfg.Vocabulary.Path = DefaultVocabularyPath
	}

	// Worker
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.ProgressEvery == 0 {
		cfg.Worker.ProgressEvery = DefaultWorkerProgressEvery
	}
	if cfg.Worker.MetricsAddr == "" {
		cfg.Worker.MetricsAddr = DefaultMetricsAddr
	}
	if cfg.Worker.ShutdownTimeout == 0 {
		cfg.Worker.ShutdownTimeout = 15 * time.Second
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}

	// MinIO
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
