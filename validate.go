package psalm

import "fmt"

// MaxUploadSize is the largest attachment accepted for upload.
const MaxUploadSize = 10 << 20 // 10 MiB

// allowedUploadMimes lists the document types the assistant accepts.
var allowedUploadMimes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"text/markdown":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// ValidateUpload checks an attachment before any network call is made.
// Returns an error wrapping ErrValidation describing the rejection.
func ValidateUpload(name, mime string, size int64) error {
	if name == "" {
		return fmt.Errorf("%w: file name is empty", ErrValidation)
	}
	if size <= 0 {
		return fmt.Errorf("%w: file %q is empty", ErrValidation, name)
	}
	if size > MaxUploadSize {
		return fmt.Errorf("%w: file %q exceeds %d bytes", ErrValidation, name, MaxUploadSize)
	}
	if !allowedUploadMimes[mime] {
		return fmt.Errorf("%w: unsupported file type %q", ErrValidation, mime)
	}
	return nil
}
