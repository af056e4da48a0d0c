package app

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/baseline"
	"github.com/shrimpsizemoose/markbook/internal/scoring"
)

type Config struct {
	Server struct {
		Port string `toml:"port" validate:"required"`
	} `toml:"server"`

	Markbook struct {
		RoundingPrecision int      `toml:"rounding_precision" validate:"oneof=2 3"`
		DepthEncoding     string   `toml:"depth_encoding" validate:"oneof=labelled indented"`
		ExcusedSentinels  []string `toml:"excused_sentinels" validate:"dive,required"`
	} `toml:"markbook"`

	Baseline struct {
		Backend     string `toml:"backend" validate:"oneof=memory redis"`
		RedisURL    string `toml:"redis_url" validate:"required_if=Backend redis"`
		KeyTemplate string `toml:"key_template"`
		SessionTTL  string `toml:"session_ttl"`
	} `toml:"baseline"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`
}

func DefaultConfig() *Config {
	var config Config
	config.Server.Port = ":9999"
	config.Markbook.RoundingPrecision = 2
	config.Markbook.DepthEncoding = "labelled"
	config.Markbook.ExcusedSentinels = append([]string(nil), scoring.DefaultExcusedSentinels...)
	config.Baseline.Backend = "memory"
	config.Baseline.KeyTemplate = baseline.DefaultKeyTemplate
	config.Baseline.SessionTTL = baseline.DefaultSessionTTL.String()
	config.Database.MigrationsDir = "./migrations"
	return &config
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger.Debug.Printf("Loaded markbook config: %+v", config.Markbook)

	return config, nil
}

// applyEnv lets deployments keep secrets out of the TOML file.
func (c *Config) applyEnv() {
	if dsn := os.Getenv("MARKBOOK_DATABASE_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if url := os.Getenv("MARKBOOK_REDIS_URL"); url != "" {
		c.Baseline.RedisURL = url
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.SessionTTL(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) SessionTTL() (time.Duration, error) {
	if c.Baseline.SessionTTL == "" {
		return baseline.DefaultSessionTTL, nil
	}
	ttl, err := time.ParseDuration(c.Baseline.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("bad baseline session_ttl %q: %w", c.Baseline.SessionTTL, err)
	}
	return ttl, nil
}
