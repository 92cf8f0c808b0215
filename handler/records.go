package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"dropzone/models"
)

func (s *Server) Records(w http.ResponseWriter, r *http.Request) {
	flash := s.popFlash(w, r)

	records, err := s.store.List(r.Context())
	if err != nil {
		slog.Error("failed to list records", "error", err)
		flash = &flashMessage{Level: "error", Message: "Could not load records"}
	}

	s.render(w, "records.html", pageData{Flash: flash, Records: records})
}

func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "record_id")
	if recordID == "" {
		http.Error(w, "record_id is required", http.StatusBadRequest)
		return
	}

	if err := s.store.Remove(r.Context(), recordID); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to delete record", "record_id", recordID, "error", err)
		s.redirectWithFlash(w, r, "/records", "error", "Could not delete record")
		return
	}

	s.redirectWithFlash(w, r, "/records", "success", "Record deleted successfully!")
}
