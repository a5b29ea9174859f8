package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	Environment string
	Database    Database
}

// Database holds everything needed to establish a connection. Either URL, the
// four direct variables, or SecretARN plus an endpoint must be present.
type Database struct {
	URL      string
	Host     string
	Name     string
	Username string
	Password string
	Port     int

	SecretARN       string
	ClusterEndpoint string
	ProxyEndpoint   string

	ConnectRetries int
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

func Load() Config {
	addr := os.Getenv("FITSPACE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "unknown"
	}

	return Config{
		Addr:        addr,
		Environment: env,
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            os.Getenv("DB_HOST"),
			Name:            os.Getenv("DB_NAME"),
			Username:        os.Getenv("DB_USERNAME"),
			Password:        os.Getenv("DB_PASSWORD"),
			Port:            envInt("DB_PORT", 5432),
			SecretARN:       os.Getenv("DB_SECRET_ARN"),
			ClusterEndpoint: os.Getenv("DB_CLUSTER_ENDPOINT"),
			ProxyEndpoint:   os.Getenv("DB_PROXY_ENDPOINT"),
			ConnectRetries:  envInt("DB_CONNECT_RETRIES", 2),
			ConnectTimeout:  envSeconds("DB_CONNECT_TIMEOUT", 5*time.Second),
			QueryTimeout:    envSeconds("DB_QUERY_TIMEOUT", 10*time.Second),
		},
	}
}

// HasDirectEnv reports whether the four direct connection variables are all
// set, in which case the secret store is never consulted.
func (d Database) HasDirectEnv() bool {
	return d.Host != "" && d.Name != "" && d.Username != "" && d.Password != ""
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}
