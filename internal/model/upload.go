package model

import (
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMediaType is sent when a file's type cannot be determined.
const DefaultMediaType = "application/pdf"

// PendingFile is a file chosen by the user but not yet submitted.
type PendingFile struct {
	Source    string // path the file is read from
	Name      string // display name sent to the backend
	MediaType string
}

// NewPendingFile describes the file at path, guessing its media type from
// the extension.
func NewPendingFile(path string) PendingFile {
	return PendingFile{
		Source:    path,
		Name:      filepath.Base(path),
		MediaType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
	}
}

// DisplayName falls back to the source's base name.
func (f PendingFile) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	if f.Source != "" {
		return filepath.Base(f.Source)
	}
	return "comprobante.pdf"
}

// ContentType returns the media type, defaulting to DefaultMediaType.
func (f PendingFile) ContentType() string {
	if f.MediaType == "" {
		return DefaultMediaType
	}
	return f.MediaType
}
