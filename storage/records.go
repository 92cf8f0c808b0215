package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"dropzone/models"
	"dropzone/passport"
)

const (
	uploadChunkSize = 1024 * 1024 * 10

	metaOriginalName = "X-Original-Name"
	metaFileName     = "X-File-Name"
	metaUploadedAt   = "X-Uploaded-At"

	metaPassportNumber   = "X-Passport-Number"
	metaSurname          = "X-Surname"
	metaGivenNames       = "X-Given-Names"
	metaNationality      = "X-Nationality"
	metaDateOfBirth      = "X-Date-Of-Birth"
	metaPlaceOfBirth     = "X-Place-Of-Birth"
	metaSex              = "X-Sex"
	metaDateOfIssue      = "X-Date-Of-Issue"
	metaDateOfExpiry     = "X-Date-Of-Expiry"
	metaIssuingAuthority = "X-Issuing-Authority"
)

// passportFields maps metadata keys to the passport fields they carry.
func passportFields(p *passport.Fields) map[string]*string {
	return map[string]*string{
		metaPassportNumber:   &p.Number,
		metaSurname:          &p.Surname,
		metaGivenNames:       &p.GivenNames,
		metaNationality:      &p.Nationality,
		metaDateOfBirth:      &p.DateOfBirth,
		metaPlaceOfBirth:     &p.PlaceOfBirth,
		metaSex:              &p.Sex,
		metaDateOfIssue:      &p.DateOfIssue,
		metaDateOfExpiry:     &p.DateOfExpiry,
		metaIssuingAuthority: &p.IssuingAuthority,
	}
}

// Put streams r into the bucket under rec.ID.
func (m *Minio) Put(ctx context.Context, rec models.Record, r io.Reader) error {
	startTime := time.Now()
	progressReader := models.NewProgressReader(r, rec.ID, rec.Size)

	_, err := m.client.PutObject(
		ctx,
		m.bucketName,
		rec.ID,
		progressReader,
		rec.Size,
		minio.PutObjectOptions{
			ContentType:  rec.ContentType,
			PartSize:     uploadChunkSize,
			UserMetadata: recordMetadata(rec),
		},
	)
	if err != nil {
		slog.Error("failed to upload object", "object_id", rec.ID, "error", err)
		return fmt.Errorf("uploading %s to MinIO: %w", rec.ID, err)
	}

	slog.Info("object uploaded",
		"object_id", rec.ID,
		"file_name", rec.FileName,
		"bytes", progressReader.TotalBytes,
		"upload_duration", time.Since(startTime).Seconds(),
	)
	return nil
}

// List returns every stored record, newest first.
func (m *Minio) List(ctx context.Context) ([]models.Record, error) {
	var records []models.Record

	for obj := range m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			slog.Error("failed to list objects", "bucket", m.bucketName, "error", obj.Err)
			return nil, fmt.Errorf("listing %s: %w", m.bucketName, obj.Err)
		}

		stat, err := m.client.StatObject(ctx, m.bucketName, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", obj.Key, err)
		}
		records = append(records, recordFromInfo(stat))
	}

	sortNewestFirst(records)
	return records, nil
}

// Remove deletes the record with the given id.
func (m *Minio) Remove(ctx context.Context, id string) error {
	if _, err := m.client.StatObject(ctx, m.bucketName, id, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: %w", id, models.ErrRecordNotFound)
		}
		return fmt.Errorf("stat %s: %w", id, err)
	}

	if err := m.client.RemoveObject(ctx, m.bucketName, id, minio.RemoveObjectOptions{}); err != nil {
		slog.Error("failed to remove object", "object_id", id, "error", err)
		return fmt.Errorf("removing %s: %w", id, err)
	}

	slog.Info("object removed", "object_id", id)
	return nil
}

func recordMetadata(rec models.Record) map[string]string {
	meta := map[string]string{
		metaOriginalName: rec.OriginalName,
		metaFileName:     rec.FileName,
		metaUploadedAt:   rec.UploadedAt.UTC().Format(time.RFC3339),
	}
	for key, value := range passportFields(&rec.Passport) {
		if *value != "" {
			meta[key] = *value
		}
	}
	return meta
}

func recordFromInfo(info minio.ObjectInfo) models.Record {
	rec := models.Record{
		ID:           info.Key,
		FileName:     info.UserMetadata[metaFileName],
		OriginalName: info.UserMetadata[metaOriginalName],
		ContentType:  info.ContentType,
		Size:         info.Size,
		UploadedAt:   info.LastModified,
	}

	for key, field := range passportFields(&rec.Passport) {
		*field = info.UserMetadata[key]
	}

	if uploadedAt, err := time.Parse(time.RFC3339, info.UserMetadata[metaUploadedAt]); err == nil {
		rec.UploadedAt = uploadedAt
	}
	if rec.FileName == "" {
		rec.FileName = info.Key
	}
	if rec.OriginalName == "" {
		rec.OriginalName = rec.FileName
	}
	return rec
}

func sortNewestFirst(records []models.Record) {
	slices.SortStableFunc(records, func(a, b models.Record) int {
		if c := b.UploadedAt.Compare(a.UploadedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
