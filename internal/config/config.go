package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/prsentry/prsentry/internal/domain/fixtures"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	GitHub struct {
		Token          string `yaml:"token"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"github"`

	Auth struct {
		// APIKeys maps tenant -> key; empty map disables auth
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	AI struct {
		Provider string `yaml:"provider"` // openai | gemini | local
		APIKey   string `yaml:"apiKey"`
		Model    string `yaml:"model"`
	} `yaml:"ai"`

	Fixtures []fixtures.FixturePR `yaml:"fixtures"`

	Verify struct {
		Schedule string `yaml:"schedule"` // cron expression; empty disables
	} `yaml:"verify"`

	Suite struct {
		Command string   `yaml:"command"`
		Path    string   `yaml:"path"`
		Markers []string `yaml:"markers"`
	} `yaml:"suite"`
}

// Load reads config.yaml and applies env overrides for secrets. A .env file
// next to the binary is honored when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.GitHub.Token = getEnv("GITHUB_TOKEN", cfg.GitHub.Token)
	switch cfg.AI.Provider {
	case "gemini":
		cfg.AI.APIKey = getEnv("GEMINI_API_KEY", getEnv("GOOGLE_GENAI_API_KEY", cfg.AI.APIKey))
	default:
		cfg.AI.APIKey = getEnv("OPENAI_API_KEY", cfg.AI.APIKey)
	}

	return &cfg, nil
}

// FixtureSet returns the configured fixtures, falling back to the default
// prebid set when the config names none.
func (c *Config) FixtureSet() []fixtures.FixturePR {
	if len(c.Fixtures) > 0 {
		return c.Fixtures
	}
	return fixtures.DefaultSet()
}

// MySQLDSN builds the DSN for the mysql driver
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the DSN for lib/pq
func (c *Config) PostgresDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
