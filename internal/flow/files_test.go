package flow

import (
	"testing"

	"go-cvbot-backend/internal/transport"
)

func TestValidateFile(t *testing.T) {
	const maxSize = 5 * 1024 * 1024

	tests := []struct {
		name     string
		file     transport.File
		expected string
	}{
		{name: "photo", file: transport.File{IsPhoto: true, Size: 1024}, expected: ""},
		{name: "jpeg document", file: transport.File{MIME: "image/jpeg", Size: 2048}, expected: ""},
		{name: "pdf document", file: transport.File{MIME: "application/pdf", Size: 2048}, expected: ""},
		{name: "mime case insensitive", file: transport.File{MIME: "Image/PNG", Size: 2048}, expected: ""},
		{name: "extension fallback", file: transport.File{Name: "receipt.PDF", Size: 2048}, expected: ""},
		{name: "too large photo", file: transport.File{IsPhoto: true, Size: maxSize + 1}, expected: "file_too_large"},
		{name: "exactly at limit", file: transport.File{IsPhoto: true, Size: maxSize}, expected: ""},
		{name: "wrong type", file: transport.File{MIME: "video/mp4", Name: "clip.mp4", Size: 2048}, expected: "file_wrong_type"},
		{name: "no metadata at all", file: transport.File{Size: 2048}, expected: "file_wrong_type"},
		{name: "oversized wins over wrong type", file: transport.File{MIME: "video/mp4", Size: maxSize + 1}, expected: "file_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateFile(tt.file, maxSize)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
