package domain

import (
	"time"
)

// Setting is a tenant-scoped key/value pair. Key is unique per tenant.
type Setting struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	Autoload  bool      `json:"autoload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known setting keys.
const (
	SettingSiteTitle       = "site_title"
	SettingSiteTagline     = "site_tagline"
	SettingPostsPerPage    = "posts_per_page"
	SettingDefaultCategory = "default_category"
	SettingTimezone        = "timezone"
)
