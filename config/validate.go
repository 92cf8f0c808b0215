package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"dropzone/widget"
)

func (mc *MinIOConfig) Validate() error {
	missingVars := []string{}

	if mc.Endpoint == "" {
		missingVars = append(missingVars, "MINIO_ENDPOINT")
	}
	if mc.AccessKeyID == "" {
		missingVars = append(missingVars, "MINIO_ACCESS_KEY")
	}
	if mc.SecretAccessKey == "" {
		missingVars = append(missingVars, "MINIO_SECRET_KEY")
	}
	if mc.BucketName == "" {
		missingVars = append(missingVars, "MINIO_BUCKET_NAME")
	}
	if mc.Location == "" {
		missingVars = append(missingVars, "MINIO_LOCATION")
	}

	if len(missingVars) > 0 {
		message := fmt.Sprintf("missing environment variables: %s", strings.Join(missingVars, ", "))
		slog.Warn(message)
		return errors.New(message)
	}

	if !isValidBucketName(mc.BucketName) {
		message := fmt.Sprintf("bucket name %q is invalid: use lowercase letters, digits and hyphens only", mc.BucketName)
		slog.Error(message)
		return errors.New(message)
	}

	return nil
}

var bucketNameRegex = regexp.MustCompile(`^[a-z0-9\-]+$`)

func isValidBucketName(bucketName string) bool {
	return bucketNameRegex.MatchString(bucketName)
}

func (ap *AppConfig) Validate() error {
	if ap.Port <= 0 || ap.Port > 65535 {
		return fmt.Errorf("APP_PORT must be in range 1-65535, got %d", ap.Port)
	}
	if len(ap.SessionKey) > 0 && len(ap.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("APP_SESSION_KEY must be at least %d bytes, got %d", minSessionKeyLen, len(ap.SessionKey))
	}
	return nil
}

const minSessionKeyLen = 32

var mimeTypeRegex = regexp.MustCompile(`^[a-z0-9.+\-]+/[a-z0-9.+\-]+$`)

func (uc *UploadConfig) Validate() error {
	if uc.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", uc.MaxBytes)
	}
	if len(uc.AllowedTypes) == 0 {
		return errors.New("UPLOAD_ALLOWED_TYPES must list at least one MIME type")
	}
	for _, t := range uc.AllowedTypes {
		if !mimeTypeRegex.MatchString(t) {
			return fmt.Errorf("UPLOAD_ALLOWED_TYPES: %q is not a MIME type", t)
		}
		// Uploads are also gated on the file extension.
		if len((widget.Policy{AllowedTypes: []string{t}}).Extensions()) == 0 {
			return fmt.Errorf("UPLOAD_ALLOWED_TYPES: %q has no known file extension", t)
		}
	}
	return nil
}
