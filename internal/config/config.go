package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Store   StoreConfig
}

type AppConfig struct {
	Env string
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StoreConfig struct {
	DefaultPageSize int
	SearchDebounce  time.Duration
	PriceDebounce   time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:8080")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 30)
	viper.SetDefault("STORE_DEFAULT_PAGE_SIZE", 10)
	viper.SetDefault("STORE_SEARCH_DEBOUNCE_MS", 400)
	viper.SetDefault("STORE_PRICE_DEBOUNCE_MS", 500)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		App: AppConfig{
			Env: viper.GetString("APP_ENV"),
		},
		Backend: BackendConfig{
			BaseURL: viper.GetString("BACKEND_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("BACKEND_TIMEOUT_SECONDS")) * time.Second,
		},
		Store: StoreConfig{
			DefaultPageSize: viper.GetInt("STORE_DEFAULT_PAGE_SIZE"),
			SearchDebounce:  time.Duration(viper.GetInt("STORE_SEARCH_DEBOUNCE_MS")) * time.Millisecond,
			PriceDebounce:   time.Duration(viper.GetInt("STORE_PRICE_DEBOUNCE_MS")) * time.Millisecond,
		},
	}
}
