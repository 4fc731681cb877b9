package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Import   ImportConfig   `yaml:"import"`
	Runs     RunsConfig     `yaml:"runs"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int    `yaml:"port"`
	MetricsPort     int    `yaml:"metrics_port"`
	AdminToken      string `yaml:"admin_token"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// DatabaseConfig selects the run store. An empty URL keeps runs in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type RankingConfig struct {
	Variant       string         `yaml:"variant"`
	Normalization string         `yaml:"normalization"`
	Scale         string         `yaml:"scale"`
	TieMethod     string         `yaml:"tie_method"`
	Weights       RankingWeights `yaml:"weights"`
}

type RankingWeights struct {
	Cost        float64 `yaml:"cost"`
	Performance float64 `yaml:"performance"`
	Security    float64 `yaml:"security"`
	Scalability float64 `yaml:"scalability"`
}

// ImportConfig controls spreadsheet parsing. Aliases maps a criterion id to
// extra header spellings accepted for that column.
type ImportConfig struct {
	Sheet   string              `yaml:"sheet"`
	Aliases map[string][]string `yaml:"aliases"`
}

type RunsConfig struct {
	RetentionHours  int `yaml:"retention_hours"`
	PruneIntervalMs int `yaml:"prune_interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) PruneInterval() time.Duration {
	return time.Duration(c.Runs.PruneIntervalMs) * time.Millisecond
}

// Retention is how long finished runs are kept. Zero disables pruning.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Runs.RetentionHours) * time.Hour
}

// RankingWeights returns the configured weights in criterion order.
func (c *Config) RankingWeights() scoring.WeightSet {
	w := c.Ranking.Weights
	return scoring.WeightSet{w.Cost, w.Performance, w.Security, w.Scalability}
}

// Criteria returns the criterion registry with the configured default weights.
func (c *Config) Criteria() scoring.Criteria {
	criteria := scoring.DefaultCriteria()
	for i, w := range c.RankingWeights() {
		criteria[i].Weight = w
	}
	return criteria
}

// RankerOptions parses the ranking section.
func (c *Config) RankerOptions() (scoring.Options, error) {
	variant, err := scoring.ParseVariant(c.Ranking.Variant)
	if err != nil {
		return scoring.Options{}, err
	}
	opts := scoring.Options{Variant: variant}
	if c.Ranking.Normalization != "" {
		if opts.Normalization, err = scoring.ParseNormalizationMethod(c.Ranking.Normalization); err != nil {
			return scoring.Options{}, err
		}
	}
	if opts.TieMethod, err = scoring.ParseTieMethod(c.Ranking.TieMethod); err != nil {
		return scoring.Options{}, err
	}
	return opts, nil
}

// Validate rejects settings the ranker cannot run with.
func (c *Config) Validate() error {
	if _, err := c.RankerOptions(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	switch c.Ranking.Scale {
	case "100", "4":
	default:
		return fmt.Errorf("ranking: unknown crisp scale %q", c.Ranking.Scale)
	}
	if err := c.RankingWeights().Validate(c.Criteria()); err != nil {
		return fmt.Errorf("ranking weights: %w", err)
	}
	if c.Runs.RetentionHours < 0 {
		return fmt.Errorf("runs: negative retention_hours %d", c.Runs.RetentionHours)
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            8700,
			MetricsPort:     8701,
			RateLimitPerMin: 120,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Ranking: RankingConfig{
			Variant:   "fuzzy",
			Scale:     "100",
			TieMethod: "min",
			Weights: RankingWeights{
				Cost:        0.35,
				Performance: 0.30,
				Security:    0.15,
				Scalability: 0.20,
			},
		},
		Import: ImportConfig{
			Aliases: map[string][]string{
				"C1": {"Biaya", "Price", "Harga"},
				"C2": {"Kinerja"},
				"C3": {"Keamanan"},
				"C4": {"Skalabilitas"},
			},
		},
		Runs: RunsConfig{
			RetentionHours:  24 * 30,
			PruneIntervalMs: 3600000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RANKER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("RANKER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("RANKER_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("RANKER_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("RANKER_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("RANKER_VARIANT"); v != "" {
		cfg.Ranking.Variant = v
	}
	if v := os.Getenv("RANKER_NORMALIZATION"); v != "" {
		cfg.Ranking.Normalization = v
	}
	if v := os.Getenv("RANKER_SCALE"); v != "" {
		cfg.Ranking.Scale = v
	}
	if v := os.Getenv("RANKER_TIE_METHOD"); v != "" {
		cfg.Ranking.TieMethod = v
	}
	if v := os.Getenv("RANKER_IMPORT_SHEET"); v != "" {
		cfg.Import.Sheet = v
	}
	if v := os.Getenv("RANKER_RETENTION_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Runs.RetentionHours = n
		}
	}
	if v := os.Getenv("RANKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
