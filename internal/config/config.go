package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Env          string
	HTTPPort     int
	Database     Database
	RedisAddr    string
	KafkaBrokers string
	KafkaTopic   string
	RateLimitRPS int
	RateBurst    int
}

// Database describes how to reach the reporting database. URL, when set,
// takes precedence over the individual fields.
type Database struct {
	Driver   string
	URL      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

func Load() Config {
	return Config{
		Env:      getenv("APP_ENV", "development"),
		HTTPPort: getenvInt("HTTP_PORT", 8080),
		Database: Database{
			Driver:   getenv("DB_DRIVER", "pgx"),
			URL:      getenv("POSTGRES_URL", ""),
			Host:     getenv("DB_HOST", "127.0.0.1"),
			Port:     getenvInt("DB_PORT", 5432),
			Name:     getenv("DB_NAME", "pagila_dwh"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "admin"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		RedisAddr:    getenv("REDIS_ADDR", ""),
		KafkaBrokers: getenv("KAFKA_BROKERS", ""),
		KafkaTopic:   getenv("KAFKA_TOPIC", "report-renders"),
		RateLimitRPS: getenvInt("RATE_LIMIT_RPS", 20),
		RateBurst:    getenvInt("RATE_LIMIT_BURST", 40),
	}
}

// DSN returns a postgres:// connection URL accepted by both pgx and lib/pq.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
