package config

import (
	"fmt"
	"strings"

	"shoppingstore/ingest/internal/domain"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Catalog    CatalogConfig       `mapstructure:"catalog"`
	Database   DatabaseConfig      `mapstructure:"database"`
	Redis      RedisConfig         `mapstructure:"redis"`
	Categories []CategoryEntry     `mapstructure:"categories"`
	Facets     map[string][]string `mapstructure:"facets"`
}

// CatalogConfig holds remote catalog API configuration
type CatalogConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	PageDataPath         string `mapstructure:"pagedata_path"`
	PageSize             int    `mapstructure:"page_size"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxWorkers           int    `mapstructure:"max_workers"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	PriceDivisor         int64  `mapstructure:"price_divisor"`
	PriceScale           int32  `mapstructure:"price_scale"`
	DefaultQuantity      int    `mapstructure:"default_quantity"`
}

// CategoryEntry is one row of the category table in config.yaml: the display
// name of a seeded category, its remote code, and how many pages to traverse.
type CategoryEntry struct {
	Name  string `mapstructure:"name"`
	Code  string `mapstructure:"code"`
	Pages int    `mapstructure:"pages"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// CategorySpecs converts the configured category table into pipeline input.
func (c *Config) CategorySpecs() []domain.CategorySpec {
	specs := make([]domain.CategorySpec, 0, len(c.Categories))
	for _, entry := range c.Categories {
		specs = append(specs, domain.CategorySpec{
			Name:  entry.Name,
			Code:  entry.Code,
			Pages: entry.Pages,
		})
	}
	return specs
}

func setDefaults() {
	viper.SetDefault("catalog.base_url", "https://www.reliancedigital.in")
	viper.SetDefault("catalog.pagedata_path", "/rildigitalws/v2/rrldigital/cms/pagedata")
	viper.SetDefault("catalog.page_size", 24)
	viper.SetDefault("catalog.timeout", 60)
	viper.SetDefault("catalog.max_retries", 3)
	viper.SetDefault("catalog.max_workers", 8)
	viper.SetDefault("catalog.max_requests_per_second", 5)
	viper.SetDefault("catalog.price_divisor", 69)
	viper.SetDefault("catalog.price_scale", 2)
	viper.SetDefault("catalog.default_quantity", 100)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "shoppingstore")
	viper.SetDefault("database.user", "shoppingstore_user")
	viper.SetDefault("database.password", "shoppingstore_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
}
