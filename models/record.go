package models

import (
	"errors"
	"time"

	"dropzone/passport"
)

var ErrRecordNotFound = errors.New("record not found")

// Record is a stored upload.
type Record struct {
	ID           string
	FileName     string
	OriginalName string
	ContentType  string
	Size         int64
	UploadedAt   time.Time
	// Passport holds the identity fields read from the document text
	// submitted with the file, if any.
	Passport passport.Fields
}
