package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Provider ProviderConfig `yaml:"provider"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Agent    AgentConfig    `yaml:"agent"`
	Ranking  RankingConfig  `yaml:"ranking"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type ProviderConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Currency string `yaml:"currency"`
	Language string `yaml:"language"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	PayloadTTLSeconds int    `yaml:"payload_ttl_seconds"`
	SnapshotPath      string `yaml:"snapshot_path"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	SearchEventsTopic  string   `yaml:"search_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AgentConfig struct {
	APIKey string `yaml:"api_key"`
	// Models is the ordered fallback list; the first entry is the primary.
	Models              []string `yaml:"models"`
	MaxRetryWaitSeconds int      `yaml:"max_retry_wait_seconds"`
}

type RankingConfig struct {
	CurrencySymbol string  `yaml:"currency_symbol"`
	CurrencyCode   string  `yaml:"currency_code"`
	MaxPicks       int     `yaml:"max_picks"`
	TolerancePct   float64 `yaml:"tolerance_pct"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Secrets come from the environment when set, so keys stay out of the
	// config file.
	if key := os.Getenv("SERPAPI_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Agent.APIKey = key
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.Provider.Currency == "" {
		cfg.Provider.Currency = "INR"
	}
	if cfg.Provider.Language == "" {
		cfg.Provider.Language = "en"
	}
	if cfg.Cache.PayloadTTLSeconds <= 0 {
		cfg.Cache.PayloadTTLSeconds = 300
	}
	if cfg.Cache.SnapshotPath == "" {
		cfg.Cache.SnapshotPath = "last_search.json"
	}
	if len(cfg.Agent.Models) == 0 {
		cfg.Agent.Models = []string{"models/gemini-2.5-pro", "models/gemini-2.5-flash", "models/gemini-flash-lite-latest"}
	}
	if cfg.Agent.MaxRetryWaitSeconds <= 0 {
		cfg.Agent.MaxRetryWaitSeconds = 300
	}
	if cfg.Ranking.CurrencySymbol == "" {
		cfg.Ranking.CurrencySymbol = "₹"
	}
	if cfg.Ranking.CurrencyCode == "" {
		cfg.Ranking.CurrencyCode = "INR"
	}
	if cfg.Ranking.MaxPicks <= 0 {
		cfg.Ranking.MaxPicks = 3
	}
	if cfg.Ranking.TolerancePct <= 0 {
		cfg.Ranking.TolerancePct = 0.05
	}
}
