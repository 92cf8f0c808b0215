package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1535, "1.5 KB"},
		{2047, "2 KB"},
		{1048575, "1024 KB"},
		{1024 * 1024, "1 MB"},
		{16 * 1024 * 1024, "16 MB"},
		{1024 * 1024 * 1024, "1 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5120 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "FormatSize(%d)", tt.bytes)
	}
}

func TestPolicy_Validate(t *testing.T) {
	p := DefaultPolicy()

	for _, typ := range []string{"image/png", "image/jpeg", "image/jpg", "application/pdf"} {
		assert.NoError(t, p.Validate(File{Name: "f", Size: MaxFileSize, Type: typ}), typ)
	}

	assert.ErrorIs(t, p.Validate(File{Type: "text/plain"}), ErrInvalidFileType)
	assert.ErrorIs(t, p.Validate(File{Type: ""}), ErrInvalidFileType)
	assert.ErrorIs(t, p.Validate(File{Type: "image/png", Size: MaxFileSize + 1}), ErrFileTooLarge)
	assert.Equal(t, ErrFileTooLarge.Error(), p.Message(p.Validate(File{Type: "image/png", Size: MaxFileSize + 1})))
}

func TestPolicy_ValidateNegativeSize(t *testing.T) {
	p := DefaultPolicy()

	err := p.Validate(File{Name: "scan.png", Type: "image/png", Size: -1})
	assert.ErrorIs(t, err, ErrMalformedFile)
	assert.NotErrorIs(t, err, ErrFileTooLarge)

	err = p.Validate(File{Name: "anim.gif", Type: "image/gif", Size: -5})
	assert.ErrorIs(t, err, ErrMalformedFile, "checked before the type gate")
}

func TestPolicy_Extensions(t *testing.T) {
	assert.Equal(t, []string{".png", ".jpg", ".jpeg", ".pdf"}, DefaultPolicy().Extensions())
	assert.Equal(t, []string{".gif"}, Policy{AllowedTypes: []string{"image/gif"}}.Extensions())
	assert.Empty(t, Policy{AllowedTypes: []string{"application/x-unheard-of"}}.Extensions())
}

func TestPolicy_Message(t *testing.T) {
	def := DefaultPolicy()
	assert.Equal(t, ErrInvalidFileType.Error(), def.Message(ErrInvalidFileType))
	assert.Equal(t, ErrFileTooLarge.Error(), def.Message(ErrFileTooLarge))
	assert.Equal(t, ErrNoFileSelected.Error(), def.Message(ErrNoFileSelected))
	assert.Equal(t, ErrMalformedFile.Error(), def.Message(ErrMalformedFile))

	tests := []struct {
		name   string
		policy Policy
		err    error
		want   string
	}{
		{
			name:   "larger limit",
			policy: Policy{AllowedTypes: AllowedTypes, MaxSize: 32 * 1024 * 1024},
			err:    ErrFileTooLarge,
			want:   "File is too large. Please select a file smaller than 32MB.",
		},
		{
			name:   "fractional limit",
			policy: Policy{AllowedTypes: AllowedTypes, MaxSize: 1536},
			err:    ErrFileTooLarge,
			want:   "File is too large. Please select a file smaller than 1.5KB.",
		},
		{
			name:   "byte limit",
			policy: Policy{AllowedTypes: AllowedTypes, MaxSize: 4},
			err:    ErrFileTooLarge,
			want:   "File is too large. Please select a file smaller than 4 Bytes.",
		},
		{
			name:   "single type",
			policy: Policy{AllowedTypes: []string{"image/gif"}, MaxSize: 200},
			err:    ErrInvalidFileType,
			want:   "Invalid file type. Please select a GIF file.",
		},
		{
			name:   "two types",
			policy: Policy{AllowedTypes: []string{"image/png", "application/pdf"}, MaxSize: 200},
			err:    ErrInvalidFileType,
			want:   "Invalid file type. Please select a PNG or PDF file.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Message(tt.err))
		})
	}
}
