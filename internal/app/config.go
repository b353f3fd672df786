package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	EnvDatabaseDSN = "BETYG_DATABASE_DSN"
	EnvRedisURL    = "BETYG_REDIS_URL"

	defaultKeyTemplate = "ranking:{level}:{track}"
	defaultCacheTTL    = 300
)

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type Config struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`

	API struct {
		RequiredHeaders []HeaderConfig `toml:"required_headers"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Cache struct {
		Enabled     bool   `toml:"enabled"`
		RedisURL    string `toml:"redis_url"`
		KeyTemplate string `toml:"key_template"`
		TTLSeconds  int    `toml:"ttl_seconds"`
	} `toml:"cache"`

	Catalog struct {
		Path string `toml:"path"`
	} `toml:"catalog"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}
	return config, nil
}

// ParseConfig decodes the TOML document, applies environment overrides and defaults.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if dsn := os.Getenv(EnvDatabaseDSN); dsn != "" {
		config.Database.DSN = dsn
	}
	if url := os.Getenv(EnvRedisURL); url != "" {
		config.Cache.RedisURL = url
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database dsn is not specified in config or %s", EnvDatabaseDSN)
	}
	if config.Cache.KeyTemplate == "" {
		config.Cache.KeyTemplate = defaultKeyTemplate
	}
	if config.Cache.TTLSeconds <= 0 {
		config.Cache.TTLSeconds = defaultCacheTTL
	}

	logger.Debug.Printf("Loaded cache config: %+v", config.Cache)

	return &config, nil
}

// LoadDotEnv exports the variables of a .env file when there is one.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debug.Printf("No %s file, using the environment as is", path)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Info.Printf("Loaded environment from %s", path)
	return nil
}
