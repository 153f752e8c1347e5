// Package config builds the process configuration from the environment.
// One Config value is constructed in main and handed to the store and the
// translation client; nothing reads the environment after startup.
package config

import (
	"os"
	"strconv"
)

const (
	DefaultModel        = "gpt-4.1-mini"
	DefaultGatewayModel = "openai/gpt-4.1-mini"
	DefaultSQLitePath   = "notes.db"
	DefaultPort         = 8080
)

type Config struct {
	// Translation credentials. APIKey is the primary provider key; the
	// gateway token is only consulted when APIKey is empty.
	APIKey       string
	GatewayToken string
	BaseURL      string
	Model        string
	MockMode     bool

	// Storage. DatabaseURL selects Postgres; when it is empty or the
	// server is unreachable the store falls back to a local SQLite file.
	DatabaseURL string
	SQLitePath  string

	// HTTP server.
	Port int

	// Optional Consul registration.
	ConsulRegister bool
	ServiceName    string
	ServiceAddr    string
}

func FromEnv() Config {
	cfg := Config{
		APIKey:         firstNonEmpty(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_API_TOKEN")),
		GatewayToken:   os.Getenv("GITHUB_TOKEN"),
		BaseURL:        os.Getenv("BASE_URL"),
		Model:          os.Getenv("MODEL"),
		MockMode:       boolFromEnv("MOCK_TRANSLATION"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		Port:           DefaultPort,
		ConsulRegister: boolFromEnv("CONSUL_REGISTER"),
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ServiceAddr:    os.Getenv("SERVICE_ADDR"),
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = DefaultSQLitePath
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "notes-api"
	}
	if cfg.ServiceAddr == "" {
		cfg.ServiceAddr = "localhost"
	}
	if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil && p > 0 {
		cfg.Port = p
	}
	return cfg
}

func boolFromEnv(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "True":
		return true
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
