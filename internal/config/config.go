package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppURL        string
	DatabaseDSN   string
	RedisAddr     string
	RedisPoolSize int
	EventChannel  string
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:        fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=fieldflow port=5432 sslmode=disable"),
		RedisAddr:     fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisPoolSize: getEnvInt("REDIS_POOL_SIZE", 100),
		EventChannel:  getEnv("REDIS_EVENT_CHANNEL", "fieldflow:events:tasks"),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_HOST/APP_PORT must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_HOST/REDIS_PORT must not be empty")
	}
	if cfg.RedisPoolSize <= 0 {
		log.Fatal("REDIS_POOL_SIZE must be a positive integer")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}
