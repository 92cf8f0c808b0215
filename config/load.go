package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"dropzone/widget"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = 8080
)

func (c *AppConfig) Load(envMap map[string]string) error {
	c.Host = defaultHost
	if host, ok := envMap["APP_HOST"]; ok && host != "" {
		c.Host = host
	}

	c.Port = defaultPort
	if portStr, ok := envMap["APP_PORT"]; ok && portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("APP_PORT must be a number, got %q: %w", portStr, err)
		}
		c.Port = port
	}

	c.LogLevel = slog.LevelInfo
	if level, ok := envMap["APP_LOG_LEVEL"]; ok && level != "" {
		if err := c.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("APP_LOG_LEVEL: %w", err)
		}
	}

	c.SessionKey = nil
	if key, ok := envMap["APP_SESSION_KEY"]; ok && key != "" {
		c.SessionKey = []byte(key)
	}

	return nil
}

func (c *MinIOConfig) Load(envMap map[string]string) error {
	var ok bool

	c.Endpoint, ok = envMap["MINIO_ENDPOINT"]
	if !ok {
		slog.Warn("MINIO_ENDPOINT is not set")
	}

	c.AccessKeyID, ok = envMap["MINIO_ACCESS_KEY"]
	if !ok {
		slog.Warn("MINIO_ACCESS_KEY is not set")
	}

	c.SecretAccessKey, ok = envMap["MINIO_SECRET_KEY"]
	if !ok {
		slog.Warn("MINIO_SECRET_KEY is not set")
	}

	useSSLStr, ok := envMap["MINIO_USE_SSL"]
	if ok {
		c.UseSSL = strings.ToLower(useSSLStr) != "false"
	} else {
		c.UseSSL = true
		slog.Warn("MINIO_USE_SSL is not set, defaulting to true")
	}

	c.BucketName, ok = envMap["MINIO_BUCKET_NAME"]
	if !ok {
		slog.Warn("MINIO_BUCKET_NAME is not set")
	}

	c.Location, ok = envMap["MINIO_LOCATION"]
	if !ok {
		slog.Warn("MINIO_LOCATION is not set")
	}

	return nil
}

func (c *UploadConfig) Load(envMap map[string]string) error {
	c.MaxBytes = widget.MaxFileSize
	if maxStr, ok := envMap["UPLOAD_MAX_BYTES"]; ok && maxStr != "" {
		maxBytes, err := strconv.ParseInt(maxStr, 10, 64)
		if err != nil {
			return fmt.Errorf("UPLOAD_MAX_BYTES must be a number, got %q: %w", maxStr, err)
		}
		c.MaxBytes = maxBytes
	}

	c.AllowedTypes = append([]string(nil), widget.AllowedTypes...)
	if types, ok := envMap["UPLOAD_ALLOWED_TYPES"]; ok && types != "" {
		c.AllowedTypes = c.AllowedTypes[:0]
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
				c.AllowedTypes = append(c.AllowedTypes, t)
			}
		}
	}

	return nil
}

// Policy returns the selection gates for this config.
func (c UploadConfig) Policy() widget.Policy {
	return widget.Policy{
		AllowedTypes: append([]string(nil), c.AllowedTypes...),
		MaxSize:      c.MaxBytes,
	}
}
