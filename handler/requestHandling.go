package handler

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/text/unicode/norm"

	"dropzone/widget"
)

const (
	defaultUploadFileName = "upload"
	sessionName           = "dropzone"
	sessionMaxAge         = 10 * 60
)

func getContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	defaultContentType := "application/octet-stream"
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			return mediaType
		}
		return contentType
	}
	return defaultContentType
}

// partContentType prefers the type the browser declared for the part and
// falls back to the file extension.
func partContentType(header *multipart.FileHeader) string {
	declared := header.Header.Get("Content-Type")
	if declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err == nil && mediaType != "application/octet-stream" {
			return strings.ToLower(mediaType)
		}
		if err != nil {
			slog.Warn("failed to parse part Content-Type", "content_type", declared, "error", err)
		}
	}
	return getContentType(header.Filename)
}

func candidateFromHeader(header *multipart.FileHeader) widget.File {
	return widget.File{
		Name: header.Filename,
		Size: header.Size,
		Type: partContentType(header),
	}
}

func hasAllowedExtension(fileName string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	return ext != "" && slices.Contains(extensions, ext)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)

// secureFilename reduces a client file name to a flat ASCII name that is safe
// to use as a storage key.
func secureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// timestampedName appends the unix time before the extension so repeated
// uploads of the same file do not collide.
func timestampedName(name string, at time.Time) string {
	name = secureFilename(name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = defaultUploadFileName
	}
	return fmt.Sprintf("%s_%d%s", base, at.Unix(), strings.ToLower(ext))
}

type flashMessage struct {
	Level   string
	Message string
}

func init() {
	gob.Register(flashMessage{})
}

// newSessionStore returns the signed cookie store that carries flash
// messages between a redirect and the next page. Without a key, a random
// one is used and cookies do not survive a restart.
func newSessionStore(key []byte) *sessions.CookieStore {
	if len(key) == 0 {
		slog.Warn("no session key configured, generating a random one")
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	// A tampered or stale cookie yields a fresh session alongside the error.
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		slog.Warn("discarding unreadable session", "error", err)
	}
	session.AddFlash(flashMessage{Level: level, Message: message})
	if err := session.Save(r, w); err != nil {
		slog.Error("failed to save flash message", "error", err)
	}
}

// popFlash returns the latest pending flash message, if any, and clears the
// queue.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flashMessage {
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		slog.Warn("rejected session cookie", "error", err)
		return nil
	}

	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		slog.Error("failed to clear flash messages", "error", err)
	}

	msg, ok := flashes[len(flashes)-1].(flashMessage)
	if !ok {
		return nil
	}
	return &msg
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, level, message string) {
	s.setFlash(w, r, level, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
