package widget

import (
	"errors"
	"fmt"
	"mime"
	"slices"
	"strings"
)

// MaxFileSize is the largest accepted file, 16 MiB.
const MaxFileSize int64 = 16 * 1024 * 1024

// AllowedTypes is the default MIME allow-set.
var AllowedTypes = []string{"image/png", "image/jpeg", "image/jpg", "application/pdf"}

var (
	ErrInvalidFileType = errors.New("Invalid file type. Please select a PNG, JPG, JPEG, or PDF file.")
	ErrFileTooLarge    = errors.New("File is too large. Please select a file smaller than 16MB.")
	ErrNoFileSelected  = errors.New("Please select a file first.")
	ErrMalformedFile   = errors.New("The selected file could not be read. Please choose it again.")
)

// knownExtensions pins the extensions offered for the default types, so
// host mime tables cannot add aliases such as .jfif.
var knownExtensions = map[string][]string{
	"image/png":       {".png"},
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/jpg":       {".jpg", ".jpeg"},
	"application/pdf": {".pdf"},
}

// File is a candidate file handle as reported by the client.
type File struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

func (f File) IsPDF() bool {
	return f.Type == "application/pdf"
}

// Policy holds the two selection gates.
type Policy struct {
	AllowedTypes []string
	MaxSize      int64
}

func DefaultPolicy() Policy {
	return Policy{
		AllowedTypes: slices.Clone(AllowedTypes),
		MaxSize:      MaxFileSize,
	}
}

// Validate runs the type gate and then the size gate. A candidate with a
// negative size never reaches either gate.
func (p Policy) Validate(f File) error {
	if f.Size < 0 {
		return fmt.Errorf("size %d: %w", f.Size, ErrMalformedFile)
	}
	if !slices.Contains(p.AllowedTypes, f.Type) {
		return fmt.Errorf("type %q: %w", f.Type, ErrInvalidFileType)
	}
	if f.Size > p.MaxSize {
		return fmt.Errorf("size %d exceeds %d: %w", f.Size, p.MaxSize, ErrFileTooLarge)
	}
	return nil
}

// Extensions returns the lower-case file extensions, with leading dot, that
// belong to the allowed types, in allow-set order.
func (p Policy) Extensions() []string {
	var exts []string
	for _, typ := range p.AllowedTypes {
		found, ok := knownExtensions[typ]
		if !ok {
			found, _ = mime.ExtensionsByType(typ)
		}
		for _, ext := range found {
			ext = strings.ToLower(ext)
			if !slices.Contains(exts, ext) {
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

// Message returns the text shown to the user for a selection error. The
// type and size messages describe this policy's limits.
func (p Policy) Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFileType):
		return "Invalid file type. Please select a " + p.TypeList() + " file."
	case errors.Is(err, ErrFileTooLarge):
		return "File is too large. Please select a file smaller than " + compactSize(p.MaxSize) + "."
	case errors.Is(err, ErrNoFileSelected):
		return ErrNoFileSelected.Error()
	case errors.Is(err, ErrMalformedFile):
		return ErrMalformedFile.Error()
	}
	return err.Error()
}

// TypeList renders the extensions as "PNG, JPG, or PDF".
func (p Policy) TypeList() string {
	var names []string
	for _, ext := range p.Extensions() {
		names = append(names, strings.ToUpper(strings.TrimPrefix(ext, ".")))
	}

	switch len(names) {
	case 0:
		return "supported"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}

// compactSize writes whole units without a space, e.g. "16MB".
func compactSize(n int64) string {
	s := FormatSize(n)
	if strings.HasSuffix(s, " Bytes") {
		return s
	}
	return strings.ReplaceAll(s, " ", "")
}
