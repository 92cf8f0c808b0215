package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"dropzone/metrics"
	"dropzone/models"
	"dropzone/passport"
	"dropzone/widget"
)

const (
	// multipartOverhead covers boundaries and other form fields on top of
	// the file itself.
	multipartOverhead = 1 << 20
	maxMemory         = 32 << 20

	// maxDocumentText caps the passport text read from the form.
	maxDocumentText = 8 << 10

	msgNoFileSelected = "No file selected"
	msgUploadSuccess  = "File uploaded successfully!"
)

func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	slog.Info("processing upload request")

	r.Body = http.MaxBytesReader(w, r.Body, s.policy.MaxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if isBodyTooLarge(err) {
			s.rejectUpload(w, r, widget.ErrFileTooLarge)
			return
		}
		slog.Warn("failed to parse multipart form", "error", err)
		s.countUpload(widget.ErrNoFileSelected)
		s.redirectWithFlash(w, r, "/", "error", msgNoFileSelected)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		if file != nil {
			file.Close()
		}
		s.countUpload(widget.ErrNoFileSelected)
		s.redirectWithFlash(w, r, "/", "error", msgNoFileSelected)
		return
	}
	defer file.Close()

	candidate := candidateFromHeader(header)
	slog.Info("upload received", "file_name", candidate.Name, "content_type", candidate.Type, "size", candidate.Size)

	if !hasAllowedExtension(candidate.Name, s.extensions) {
		s.rejectUpload(w, r, widget.ErrInvalidFileType)
		return
	}
	if err := s.policy.Validate(candidate); err != nil {
		s.rejectUpload(w, r, err)
		return
	}

	now := s.now()
	rec := models.Record{
		ID:           uuid.NewString(),
		FileName:     timestampedName(candidate.Name, now),
		OriginalName: candidate.Name,
		ContentType:  candidate.Type,
		Size:         candidate.Size,
		UploadedAt:   now,
		Passport:     documentFields(r),
	}

	if err := s.store.Put(r.Context(), rec, file); err != nil {
		slog.Error("failed to store upload", "object_id", rec.ID, "error", err)
		s.countUpload(err)
		s.redirectWithFlash(w, r, "/", "error", "Error processing file: "+err.Error())
		return
	}

	s.countUpload(nil)
	slog.Info("upload stored", "object_id", rec.ID, "file_name", rec.FileName)
	s.redirectWithFlash(w, r, "/records", "success", msgUploadSuccess)
}

// documentFields reads passport fields from the optional document text
// submitted with the file.
func documentFields(r *http.Request) passport.Fields {
	text := r.PostFormValue("document_text")
	if text == "" {
		return passport.Fields{}
	}
	if len(text) > maxDocumentText {
		slog.Warn("truncating document text", "bytes", len(text), "limit", maxDocumentText)
		text = text[:maxDocumentText]
	}

	fields := passport.Parse(text)
	if fields.IsZero() {
		slog.Info("no passport fields found in document text")
	} else {
		slog.Info("passport fields extracted", "passport_number", fields.Number, "nationality", fields.Nationality)
	}
	return fields
}

func (s *Server) rejectUpload(w http.ResponseWriter, r *http.Request, err error) {
	slog.Info("upload rejected", "error", err)
	s.countUpload(err)
	s.redirectWithFlash(w, r, "/", "error", s.policy.Message(err))
}

func (s *Server) countUpload(err error) {
	if s.metrics != nil {
		s.metrics.Uploads.WithLabelValues(metrics.Result(err)).Inc()
	}
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
