package dto

// CreateMediaRequest represents a request to record an uploaded file
type CreateMediaRequest struct {
	FileName  string         `json:"file_name" binding:"required,max=255"`
	Path      string         `json:"path" binding:"required,max=1024"`
	MimeType  string         `json:"mime_type" binding:"required,max=100"`
	SizeBytes int64          `json:"size_bytes" binding:"omitempty,min=0"`
	Title     string         `json:"title" binding:"omitempty,max=255"`
	AltText   string         `json:"alt_text" binding:"omitempty,max=512"`
	Caption   string         `json:"caption" binding:"omitempty,max=1024"`
	Meta      map[string]any `json:"meta"`
}

// UpdateMediaRequest represents a request to update a media record
type UpdateMediaRequest struct {
	Title   *string        `json:"title" binding:"omitempty,max=255"`
	AltText *string        `json:"alt_text" binding:"omitempty,max=512"`
	Caption *string        `json:"caption" binding:"omitempty,max=1024"`
	Meta    map[string]any `json:"meta"`
}

// ListMediaQuery represents query parameters for the media library
type ListMediaQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	MimeType string `form:"mime_type" binding:"omitempty,max=100"`
}

// SetDefaults sets default values for query parameters
func (q *ListMediaQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// SetSettingRequest represents a request to create or replace a setting
type SetSettingRequest struct {
	Value    any  `json:"value" binding:"required"`
	Autoload bool `json:"autoload"`
}
