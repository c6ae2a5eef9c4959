package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath          = ".env"
	defaultSecretKey = "SecRetKey"
	EnvLocal         = "local"
	EnvDev           = "dev"
	EnvProd          = "prod"
)

type Config struct {
	Env    string
	DB     db
	Server server
	Auth   auth
	Logger logger
}

type db struct {
	DatabaseURI string
	Migrations  string
}

type server struct {
	RunAddress      string
	ShutdownTimeout time.Duration
}

type auth struct {
	Secret   string
	TokenTTL time.Duration
}

type logger struct {
	LogLevel string
}

// MustLoad загружает конфигурацию сервера и завершает процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Load читает .env (если есть) и переменные окружения.
// Пустой DATABASE_URI означает хранение в памяти.
func Load() (*Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("load %s: %v", envPath, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("run_address", ":8080")
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("log_level", "info")
	v.SetDefault("token_ttl_hours", 24)
	v.SetDefault("shutdown_timeout_seconds", 10)

	secret := v.GetString("secret")
	if secret == "" {
		secret = defaultSecretKey
	}

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: db{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: server{
			RunAddress:      v.GetString("run_address"),
			ShutdownTimeout: time.Duration(v.GetInt("shutdown_timeout_seconds")) * time.Second,
		},
		Auth: auth{
			Secret:   secret,
			TokenTTL: time.Duration(v.GetInt("token_ttl_hours")) * time.Hour,
		},
		Logger: logger{LogLevel: v.GetString("log_level")},
	}

	if cfg.Env == EnvProd && secret == defaultSecretKey {
		return nil, fmt.Errorf("SECRET must be set in %s", EnvProd)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}

	return cfg, nil
}
