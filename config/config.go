package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ENV_PREFIX          = "IMPACTWATCH_"
	DEFAULT_CONFIG_FILE = "config.yaml"

	DatasetFileName    = "ai_sentiment_dataset.csv"
	VectorizerFileName = "tfidf_vectorizer.pb"
	NaiveBayesFileName = "naive_bayes_model.pb"
	LogRegFileName     = "log_reg_model.pb"
	ResultsFileName    = "model_comparison_results.csv"
)

type Config struct {
	Paths    PathsConfig    `koanf:"paths"`
	Synth    SynthConfig    `koanf:"synth"`
	Training TrainingConfig `koanf:"training"`
	Server   ServerConfig   `koanf:"server"`
	Cache    CacheConfig    `koanf:"cache"`
	Store    StoreConfig    `koanf:"store"`
}

type PathsConfig struct {
	Dataset      string `koanf:"dataset"`
	ArtifactsDir string `koanf:"artifacts_dir"`
}

type SynthConfig struct {
	Replication int    `koanf:"replication"`
	Seed        uint64 `koanf:"seed"`
}

type TrainingConfig struct {
	TestRatio      float64 `koanf:"test_ratio"`
	Seed           uint64  `koanf:"seed"`
	MaxFeatures    int     `koanf:"max_features"`
	NBAlpha        float64 `koanf:"nb_alpha"`
	LRC            float64 `koanf:"lr_c"`
	LRIterations   int     `koanf:"lr_iterations"`
	LRLearningRate float64 `koanf:"lr_learning_rate"`
}

type ServerConfig struct {
	Addr           string        `koanf:"addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxConcurrent  int           `koanf:"max_concurrent"`
}

// CacheConfig configures the optional Valkey prediction cache. An empty Addr
// disables it.
type CacheConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	TLS      bool          `koanf:"tls"`
	TTL      time.Duration `koanf:"ttl"`
}

// StoreConfig configures the optional DynamoDB training run store. An empty
// Table disables it.
type StoreConfig struct {
	Table    string `koanf:"table"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Dataset:      DatasetFileName,
			ArtifactsDir: ".",
		},
		Synth: SynthConfig{
			Replication: 50,
			Seed:        42,
		},
		Training: TrainingConfig{
			TestRatio:      0.2,
			Seed:           42,
			MaxFeatures:    5000,
			NBAlpha:        1.0,
			LRC:            1.0,
			LRIterations:   500,
			LRLearningRate: 1.0,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8000",
			RequestTimeout: 5 * time.Second,
			MaxConcurrent:  64,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Store: StoreConfig{
			Region: "us-west-2",
		},
	}
}

// Load layers config.yaml (when present) and IMPACTWATCH_ environment
// variables over the defaults. A double underscore in a variable name
// separates nesting levels: IMPACTWATCH_SERVER__ADDR -> server.addr.
func Load() (*Config, error) {
	return LoadFile(DEFAULT_CONFIG_FILE)
}

func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		} else {
			slog.Debug("[Config] No config file, using defaults", slog.String("file", path))
		}
	}

	if err := k.Load(env.Provider(ENV_PREFIX, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, ENV_PREFIX)), "__", ".")
}

func (c *Config) Validate() error {
	switch {
	case c.Synth.Replication < 1:
		return fmt.Errorf("synth.replication must be positive, got %d", c.Synth.Replication)
	case c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1:
		return fmt.Errorf("training.test_ratio must be in (0, 1), got %v", c.Training.TestRatio)
	case c.Training.MaxFeatures < 1:
		return fmt.Errorf("training.max_features must be positive, got %d", c.Training.MaxFeatures)
	case c.Training.NBAlpha <= 0:
		return fmt.Errorf("training.nb_alpha must be positive, got %v", c.Training.NBAlpha)
	case c.Training.LRC <= 0:
		return fmt.Errorf("training.lr_c must be positive, got %v", c.Training.LRC)
	case c.Server.MaxConcurrent < 1:
		return fmt.Errorf("server.max_concurrent must be positive, got %d", c.Server.MaxConcurrent)
	case c.Cache.Addr != "" && c.Cache.TTL < time.Second:
		return fmt.Errorf("cache.ttl must be at least 1s, got %v", c.Cache.TTL)
	}
	return nil
}

func (p PathsConfig) Vectorizer() string { return filepath.Join(p.ArtifactsDir, VectorizerFileName) }
func (p PathsConfig) NaiveBayes() string { return filepath.Join(p.ArtifactsDir, NaiveBayesFileName) }
func (p PathsConfig) LogReg() string     { return filepath.Join(p.ArtifactsDir, LogRegFileName) }
func (p PathsConfig) Results() string    { return filepath.Join(p.ArtifactsDir, ResultsFileName) }
