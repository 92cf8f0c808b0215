package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dropzone/models"
	"dropzone/widget"
)

//go:embed web
var webFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formatSize": widget.FormatSize,
	"formatTime": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
}).ParseFS(webFS, "web/*.html"))

type pageData struct {
	Flash   *flashMessage
	Records []models.Record
	MaxSize string
	Accept  string
	Types   string
}

func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", pageData{
		Flash:   s.popFlash(w, r),
		MaxSize: widget.FormatSize(s.policy.MaxSize),
		Accept:  strings.Join(s.policy.AllowedTypes, ","),
		Types:   s.policy.TypeList(),
	})
}

func (s *Server) Script(w http.ResponseWriter, r *http.Request) {
	data, err := webFS.ReadFile("web/upload.js")
	if err != nil {
		http.Error(w, "script not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
