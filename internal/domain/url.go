package domain

import (
	"time"
)

// ShortURL maps an original URL to its short code.
// Code is unique; OriginalURL is not enforced unique at the data level.
type ShortURL struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OriginalURL string    `gorm:"not null;type:text;index" json:"original_url"`
	Code        string    `gorm:"uniqueIndex;not null;size:8" json:"code"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	VisitCount  int64     `gorm:"not null;default:0" json:"visit_count"`

	// Events is the owned access log. It is never loaded implicitly;
	// audit queries go through the code index instead.
	Events []AccessEvent `gorm:"foreignKey:Code;references:Code" json:"-"`
}

// TableName specifies the table name for GORM
func (ShortURL) TableName() string {
	return "short_urls"
}

// AccessEvent is one successful resolution of a code. Append-only.
type AccessEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"not null;size:8;index:idx_access_events_code_time,priority:1" json:"code"`
	AccessedAt time.Time `gorm:"not null;index:idx_access_events_code_time,priority:2" json:"accessed_at"`
}

// TableName specifies the table name for GORM
func (AccessEvent) TableName() string {
	return "access_events"
}

// ListEntry is one row of the list-all view
type ListEntry struct {
	Code        string `json:"code"`
	OriginalURL string `json:"original_url"`
}

// AuditReport is the admin view of a code's visit accounting
type AuditReport struct {
	Code         string      `json:"code"`
	VisitCount   int64       `json:"visit_count"`
	RecentEvents []time.Time `json:"recent_events"`
}

// CreateURLRequest represents the request payload for creating a short URL
type CreateURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// CreateURLResponse represents the response after creating a short URL
type CreateURLResponse struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
