package psalm_test

import (
	"testing"

	"github.com/psalmlegal/psalm"
	"github.com/stretchr/testify/assert"
)

func TestValidateUpload_AcceptsDocumentTypes(t *testing.T) {
	t.Parallel()
	for _, mime := range []string{
		"application/pdf",
		"text/plain",
		"text/markdown",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	} {
		assert.NoError(t, psalm.ValidateUpload("doc", mime, 1024), "mime %s", mime)
	}
}

func TestValidateUpload_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fileName string
		mime     string
		size     int64
	}{
		{"empty name", "", "application/pdf", 1024},
		{"empty file", "doc.pdf", "application/pdf", 0},
		{"negative size", "doc.pdf", "application/pdf", -1},
		{"oversize", "doc.pdf", "application/pdf", psalm.MaxUploadSize + 1},
		{"executable", "evil.exe", "application/x-msdownload", 1024},
		{"image", "scan.png", "image/png", 1024},
		{"no mime", "doc.pdf", "", 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := psalm.ValidateUpload(tt.fileName, tt.mime, tt.size)
			assert.ErrorIs(t, err, psalm.ErrValidation)
		})
	}
}

func TestValidateUpload_SizeAtLimit(t *testing.T) {
	t.Parallel()
	assert.NoError(t, psalm.ValidateUpload("big.pdf", "application/pdf", psalm.MaxUploadSize))
}
