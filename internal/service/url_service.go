package service

import (
	"context"
	"time"

	"hashurl/internal/domain"
)

// URLService is the registry and visit accounting surface used by the
// HTTP layer.
type URLService interface {
	// Shorten returns the record for originalURL, creating it on first use.
	// created reports whether this call inserted the record.
	Shorten(ctx context.Context, originalURL string) (url *domain.ShortURL, created bool, err error)

	// Lookup finds a record by code without counting a visit
	Lookup(ctx context.Context, code string) (*domain.ShortURL, error)

	// Resolve looks up code, records the visit and returns the original URL
	Resolve(ctx context.Context, code string) (string, error)

	// RecordVisit atomically increments the counter and appends an access event
	RecordVisit(ctx context.Context, code string) (*domain.ShortURL, error)

	// RecentEvents returns access timestamps for code, newest first.
	// A non-positive limit selects the configured default.
	RecentEvents(ctx context.Context, code string, limit int) ([]time.Time, error)

	// VisitCount returns the counter for code, 0 when unknown
	VisitCount(ctx context.Context, code string) (int64, error)

	// ListAll returns every code with its original URL
	ListAll(ctx context.Context) ([]domain.ListEntry, error)

	// AuditLog returns the visit report for code when secret matches the
	// configured admin secret
	AuditLog(ctx context.Context, code, secret string) (*domain.AuditReport, error)
}
