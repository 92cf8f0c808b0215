package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropzone/widget"
)

func validEnv() map[string]string {
	return map[string]string{
		"MINIO_ENDPOINT":    "localhost:9000",
		"MINIO_ACCESS_KEY":  "minio",
		"MINIO_SECRET_KEY":  "minio123",
		"MINIO_USE_SSL":     "false",
		"MINIO_BUCKET_NAME": "uploads",
		"MINIO_LOCATION":    "us-east-1",
	}
}

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(validEnv())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.App.Host)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, slog.LevelInfo, cfg.App.LogLevel)
	assert.False(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "uploads", cfg.MinIO.BucketName)
	assert.Equal(t, widget.MaxFileSize, cfg.Upload.MaxBytes)
	assert.Equal(t, widget.AllowedTypes, cfg.Upload.AllowedTypes)
	assert.Equal(t, widget.DefaultPolicy(), cfg.Upload.Policy())
	assert.Empty(t, cfg.App.SessionKey)
}

func TestFromMap_Overrides(t *testing.T) {
	env := validEnv()
	env["APP_PORT"] = "9090"
	env["APP_LOG_LEVEL"] = "debug"
	env["UPLOAD_MAX_BYTES"] = "1024"
	env["UPLOAD_ALLOWED_TYPES"] = "image/png, Application/PDF, image/gif"
	env["APP_SESSION_KEY"] = "0123456789abcdef0123456789abcdef"
	delete(env, "MINIO_USE_SSL")

	cfg, err := FromMap(env)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, slog.LevelDebug, cfg.App.LogLevel)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"image/png", "application/pdf", "image/gif"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, []string{".png", ".pdf", ".gif"}, cfg.Upload.Policy().Extensions())
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), cfg.App.SessionKey)
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantMsg string
	}{
		{"missing minio vars", func(m map[string]string) { delete(m, "MINIO_ENDPOINT"); delete(m, "MINIO_LOCATION") }, "MINIO_ENDPOINT, MINIO_LOCATION"},
		{"bad bucket", func(m map[string]string) { m["MINIO_BUCKET_NAME"] = "Bad_Bucket" }, "bucket name"},
		{"port not a number", func(m map[string]string) { m["APP_PORT"] = "http" }, "APP_PORT"},
		{"port out of range", func(m map[string]string) { m["APP_PORT"] = "70000" }, "1-65535"},
		{"bad log level", func(m map[string]string) { m["APP_LOG_LEVEL"] = "loud" }, "APP_LOG_LEVEL"},
		{"zero max bytes", func(m map[string]string) { m["UPLOAD_MAX_BYTES"] = "0" }, "UPLOAD_MAX_BYTES"},
		{"bad mime", func(m map[string]string) { m["UPLOAD_ALLOWED_TYPES"] = "png" }, "not a MIME type"},
		{"type without extension", func(m map[string]string) { m["UPLOAD_ALLOWED_TYPES"] = "image/png,application/x-unheard-of" }, "no known file extension"},
		{"short session key", func(m map[string]string) { m["APP_SESSION_KEY"] = "short" }, "APP_SESSION_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			tt.mutate(env)
			_, err := FromMap(env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGet_EnvFileAndProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "MINIO_ENDPOINT=localhost:9000\nMINIO_ACCESS_KEY=minio\nMINIO_SECRET_KEY=secret\n" +
		"MINIO_BUCKET_NAME=from-file\nMINIO_LOCATION=us-east-1\nAPP_PORT=7000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("MINIO_BUCKET_NAME", "from-env")

	cfg, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.MinIO.BucketName)
	assert.Equal(t, 7000, cfg.App.Port)
}

func TestGet_MissingEnvFileFallsBackToProcessEnv(t *testing.T) {
	for k, v := range validEnv() {
		t.Setenv(k, v)
	}

	cfg, err := Get(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "uploads", cfg.MinIO.BucketName)
}
