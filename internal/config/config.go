package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from an
// optional yaml file overridden by environment variables, so the same
// binary runs in docker-compose and locally.
type Config struct {
	Port         string `yaml:"port"`
	ShareBaseURL string `yaml:"share_base_url"`

	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	Summarize ServiceConfig   `yaml:"summarize"`
	Recommend RecommendConfig `yaml:"recommend"`
	Preview   PreviewConfig   `yaml:"preview"`
}

type DBConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Name string `yaml:"name"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

// DSN builds the lib/pq connection URL.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Pass, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type ServiceConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RecommendConfig carries the ranking weights and result counts. The
// weights balance text similarity, summary similarity and category
// preference; Count applies to text/URL submissions, FileCount to file
// uploads (the two paths historically requested different amounts).
type RecommendConfig struct {
	BaseURL     string  `yaml:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Alpha       float64 `yaml:"alpha"`
	Beta        float64 `yaml:"beta"`
	Gamma       float64 `yaml:"gamma"`
	Count       int     `yaml:"count"`
	FileCount   int     `yaml:"file_count"`
}

type PreviewConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Placeholder string `yaml:"placeholder"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:         "8080",
		ShareBaseURL: "http://localhost:8080",
		DB: DBConfig{
			Host: "localhost",
			Port: "5432",
			Name: "newsalyze_db",
			User: "newsalyze_user",
			Pass: "newsalyze",
		},
		Redis:     RedisConfig{Addr: "localhost:6379"},
		Summarize: ServiceConfig{BaseURL: "http://localhost:9100", TimeoutSecs: 120},
		Recommend: RecommendConfig{
			BaseURL:     "http://localhost:9200",
			TimeoutSecs: 30,
			Alpha:       0.6,
			Beta:        0.3,
			Gamma:       0.1,
			Count:       10,
			FileCount:   5,
		},
		Preview: PreviewConfig{
			BaseURL:     "https://api.microlink.io",
			TimeoutSecs: 10,
			Placeholder: "/placeholder.png",
		},
	}
}

// Load reads the yaml file at path (skipped when path is empty or the
// file does not exist), applies env overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfEnv(&c.Port, "PORT")
	setIfEnv(&c.ShareBaseURL, "SHARE_BASE_URL")
	setIfEnv(&c.DB.Host, "DB_HOST")
	setIfEnv(&c.DB.Port, "DB_PORT")
	setIfEnv(&c.DB.Name, "DB_NAME")
	setIfEnv(&c.DB.User, "DB_USER")
	setIfEnv(&c.DB.Pass, "DB_PASS")
	setIfEnv(&c.Redis.Addr, "REDIS_ADDR")
	setIfEnv(&c.Summarize.BaseURL, "SUMMARIZE_URL")
	setIfEnv(&c.Recommend.BaseURL, "RECOMMEND_URL")
	setIfEnv(&c.Preview.BaseURL, "PREVIEW_URL")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	if c.Summarize.BaseURL == "" {
		return fmt.Errorf("summarize base_url is required")
	}
	if c.Recommend.BaseURL == "" {
		return fmt.Errorf("recommend base_url is required")
	}
	if c.Recommend.Count <= 0 || c.Recommend.FileCount <= 0 {
		return fmt.Errorf("recommendation counts must be positive")
	}
	for _, w := range []float64{c.Recommend.Alpha, c.Recommend.Beta, c.Recommend.Gamma} {
		if w < 0 || w > 1 {
			return fmt.Errorf("recommendation weights must be in [0,1]")
		}
	}
	return nil
}
