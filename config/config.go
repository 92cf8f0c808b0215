package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type BasicConfig interface {
	Load(map[string]string) error
	Validate() error
}

type AppConfig struct {
	Host     string
	Port     int
	LogLevel slog.Level
	// SessionKey signs session cookies. Empty means a per-process key.
	SessionKey []byte
}

type MinIOConfig struct {
	UseSSL          bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Location        string
}

type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

type Config struct {
	App    AppConfig
	MinIO  MinIOConfig
	Upload UploadConfig
}

// readEnv merges the optional env file with the process environment.
// Process variables win.
func readEnv(envFile string) (map[string]string, error) {
	envMap, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
		slog.Warn("env file not found, using process environment only", "path", envFile)
		envMap = map[string]string{}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	return envMap, nil
}

// Get loads and validates every config section.
func Get(envFile string) (Config, error) {
	envMap, err := readEnv(envFile)
	if err != nil {
		slog.Error("failed to read environment", "error", err)
		return Config{}, err
	}
	return FromMap(envMap)
}

func FromMap(envMap map[string]string) (Config, error) {
	appCfg := &AppConfig{}
	minioCfg := &MinIOConfig{}
	uploadCfg := &UploadConfig{}

	configs := []BasicConfig{appCfg, minioCfg, uploadCfg}
	for _, cfg := range configs {
		if err := cfg.Load(envMap); err != nil {
			slog.Error("failed to load config", "error", err)
			return Config{}, err
		}
		if err := cfg.Validate(); err != nil {
			slog.Error("config validation failed", "error", err)
			return Config{}, err
		}
	}

	slog.Debug("all config sections loaded")
	return Config{
		App:    *appCfg,
		MinIO:  *minioCfg,
		Upload: *uploadCfg,
	}, nil
}
