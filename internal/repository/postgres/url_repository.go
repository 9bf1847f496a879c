package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hashurl/internal/domain"
	"hashurl/internal/repository"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// urlRepository implements the URLRepository interface for PostgreSQL
type urlRepository struct {
	db *gorm.DB
}

// NewURLRepository creates a new PostgreSQL URL repository
func NewURLRepository(db *gorm.DB) repository.URLRepository {
	return &urlRepository{db: db}
}

// Migrate creates or updates the short_urls and access_events tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.ShortURL{}, &domain.AccessEvent{})
}

// Insert adds a new record. The unique index on code turns a concurrent or
// truncation collision into domain.ErrShortCodeTaken.
func (r *urlRepository) Insert(ctx context.Context, url *domain.ShortURL) error {
	if err := r.db.WithContext(ctx).Create(url).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrShortCodeTaken
		}
		return domain.NewInternalError(err)
	}
	return nil
}

// FindByCode retrieves a record by its short code
func (r *urlRepository) FindByCode(ctx context.Context, code string) (*domain.ShortURL, error) {
	var url domain.ShortURL

	result := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&url)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return &url, nil
}

// FindByOriginalURL retrieves the oldest record for an original URL
func (r *urlRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*domain.ShortURL, error) {
	var url domain.ShortURL

	result := r.db.WithContext(ctx).
		Where("original_url = ?", originalURL).
		First(&url)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return &url, nil
}

// RecordVisit increments visit_count and appends an access event in one
// transaction. The UPDATE takes the row lock, so concurrent visits to the
// same code serialise and no increment is lost.
func (r *urlRepository) RecordVisit(ctx context.Context, code string, at time.Time) (*domain.ShortURL, error) {
	var url domain.ShortURL

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.ShortURL{}).
			Where("code = ?", code).
			UpdateColumn("visit_count", gorm.Expr("visit_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrURLNotFound
		}

		event := &domain.AccessEvent{Code: code, AccessedAt: at}
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		return tx.Where("code = ?", code).First(&url).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return &url, nil
}

// ListEventsByCode returns the newest events first
func (r *urlRepository) ListEventsByCode(ctx context.Context, code string, limit int) ([]domain.AccessEvent, error) {
	var events []domain.AccessEvent

	query := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("accessed_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return events, nil
}

// List returns all records ordered by id
func (r *urlRepository) List(ctx context.Context) ([]domain.ShortURL, error) {
	var urls []domain.ShortURL

	if err := r.db.WithContext(ctx).Order("id ASC").Find(&urls).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return urls, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, domain.ErrURLNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrURLNotFound
	default:
		return domain.NewInternalError(err)
	}
}

// isUniqueViolation accepts both the translated GORM error and the raw
// driver error, so it works whether or not TranslateError is enabled.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
