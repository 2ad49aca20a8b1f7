package flow

import (
	"path/filepath"
	"strings"

	"go-cvbot-backend/internal/transport"
)

// Accepted payment-proof and profile-image kinds: JPEG, PNG and PDF.
var allowedMIME = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// validateFile returns the prompt key of the violation, or "" when the
// file is acceptable. Platform photos are always JPEG so they pass on the
// IsPhoto flag alone.
func validateFile(f transport.File, maxSize int64) string {
	if f.Size > maxSize {
		return "file_too_large"
	}
	if f.IsPhoto {
		return ""
	}
	if allowedMIME[strings.ToLower(f.MIME)] {
		return ""
	}
	if allowedExt[strings.ToLower(filepath.Ext(f.Name))] {
		return ""
	}
	return "file_wrong_type"
}
