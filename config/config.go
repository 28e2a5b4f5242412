package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the typed view over the process environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	HotScore  HotScoreConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	AcceptedOrigins []string
}

type DatabaseConfig struct {
	Type        string
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SSLMode     string
	ReplicaDSNs []string
}

type AuthConfig struct {
	JWTSecret string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type HotScoreConfig struct {
	BatchSize   int
	Concurrency int
}

// JobsConfig holds the one-shot modes main can run instead of serving.
type JobsConfig struct {
	AutoMigrate          bool
	GenerateModels       bool
	GenerateColumnReport bool
	RefreshHotScores     bool
}

// Load builds a Config from an environment map, applying defaults.
func Load(env map[string]string) Config {
	dbType := strings.ToLower(GetString(env, "DB_TYPE", "postgres"))
	sslMode := "disable"
	prefix := "DB_"
	if dbType == "supa" {
		sslMode = "require"
		prefix = "SUPABASE_DB_"
	}

	return Config{
		Server: ServerConfig{
			Port:            GetString(env, "PORT", "8080"),
			ReadTimeout:     time.Duration(GetInt(env, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
			WriteTimeout:    time.Duration(GetInt(env, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
			IdleTimeout:     time.Duration(GetInt(env, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,
			AcceptedOrigins: GetStrings(env, "ACCEPTED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Type:        dbType,
			Host:        GetString(env, prefix+"HOST", "localhost"),
			User:        GetString(env, prefix+"USER", ""),
			Password:    GetString(env, prefix+"PASSWORD", ""),
			Name:        GetString(env, prefix+"NAME", ""),
			Port:        GetString(env, prefix+"PORT", "5432"),
			SSLMode:     GetString(env, "DB_SSLMODE", sslMode),
			ReplicaDSNs: GetStrings(env, "DB_REPLICA_DSNS"),
		},
		Auth: AuthConfig{
			JWTSecret: GetString(env, "JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: GetInt(env, "RATE_LIMIT_REQUESTS", 120),
			Window:   time.Duration(GetInt(env, "RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		HotScore: HotScoreConfig{
			BatchSize:   GetInt(env, "HOT_SCORE_BATCH_SIZE", 500),
			Concurrency: GetInt(env, "HOT_SCORE_CONCURRENCY", 4),
		},
		Jobs: JobsConfig{
			AutoMigrate:          GetBool(env, "AUTO_MIGRATE", false),
			GenerateModels:       GetBool(env, "GENERATE_MODELS", false),
			GenerateColumnReport: GetBool(env, "GENERATE_COLUMN_REPORT", false),
			RefreshHotScores:     GetBool(env, "REFRESH_HOT_SCORES", false),
		},
	}
}

// DSN returns the postgres connection string for the primary database.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value, _ := strings.Cut(entry, "=")
			envAsMap[key] = value
		}
	}
	return envAsMap
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s, ok := config[key]
	if !ok || s == "" {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetStrings splits a comma separated value, dropping blank entries.
func GetStrings(config map[string]string, key string) []string {
	s, ok := config[key]
	if !ok {
		return nil
	}

	var values []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
