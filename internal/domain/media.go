package domain

import (
	"time"
)

// Media is an uploaded file's metadata record. The binary itself lives
// outside the store; only the path and descriptive attributes are kept.
type Media struct {
	ID         string         `json:"id"`
	FileName   string         `json:"file_name"`
	Path       string         `json:"path"`
	MimeType   string         `json:"mime_type"`
	SizeBytes  int64          `json:"size_bytes"`
	Title      string         `json:"title,omitempty"`
	AltText    string         `json:"alt_text,omitempty"`
	Caption    string         `json:"caption,omitempty"`
	UploaderID string         `json:"uploader_id"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
