package repository

import (
	"context"
	"time"

	"hashurl/internal/domain"
)

// URLRepository is the storage collaborator. Implementations must enforce
// code uniqueness and apply RecordVisit as a single atomic unit.
type URLRepository interface {
	// FindByOriginalURL returns the oldest record for an exact URL match,
	// or domain.ErrURLNotFound
	FindByOriginalURL(ctx context.Context, originalURL string) (*domain.ShortURL, error)

	// FindByCode returns the record holding code, or domain.ErrURLNotFound
	FindByCode(ctx context.Context, code string) (*domain.ShortURL, error)

	// Insert stores a new record and fills in its ID and CreatedAt.
	// Returns domain.ErrShortCodeTaken when another record holds the code.
	Insert(ctx context.Context, url *domain.ShortURL) error

	// RecordVisit increments the visit counter and appends an access event
	// stamped at, together or not at all. Returns the updated record.
	RecordVisit(ctx context.Context, code string, at time.Time) (*domain.ShortURL, error)

	// ListEventsByCode returns up to limit events for code, newest first
	ListEventsByCode(ctx context.Context, code string, limit int) ([]domain.AccessEvent, error)

	// List returns every record in insertion order
	List(ctx context.Context) ([]domain.ShortURL, error)
}
