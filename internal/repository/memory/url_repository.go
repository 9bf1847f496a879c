package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hashurl/internal/domain"
	"hashurl/internal/repository"
)

// urlRepository is an in-process store for development and tests.
// A single mutex gives it the uniqueness and atomicity a relational
// store provides through constraints and transactions.
type urlRepository struct {
	mu          sync.RWMutex
	nextURLID   uint
	nextEventID uint
	urls        []domain.ShortURL // insertion order
	byCode      map[string]int    // code -> index into urls
	events      map[string][]domain.AccessEvent
}

// NewURLRepository creates an empty in-memory URL repository
func NewURLRepository() repository.URLRepository {
	return &urlRepository{
		byCode: make(map[string]int),
		events: make(map[string][]domain.AccessEvent),
	}
}

func (r *urlRepository) Insert(ctx context.Context, url *domain.ShortURL) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byCode[url.Code]; taken {
		return domain.ErrShortCodeTaken
	}

	r.nextURLID++
	url.ID = r.nextURLID
	if url.CreatedAt.IsZero() {
		url.CreatedAt = time.Now().UTC()
	}

	stored := *url
	stored.Events = nil
	r.byCode[url.Code] = len(r.urls)
	r.urls = append(r.urls, stored)
	return nil
}

func (r *urlRepository) FindByCode(ctx context.Context, code string) (*domain.ShortURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrURLNotFound
	}
	url := r.urls[idx]
	return &url, nil
}

func (r *urlRepository) FindByOriginalURL(ctx context.Context, originalURL string) (*domain.ShortURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, url := range r.urls {
		if url.OriginalURL == originalURL {
			found := url
			return &found, nil
		}
	}
	return nil, domain.ErrURLNotFound
}

func (r *urlRepository) RecordVisit(ctx context.Context, code string, at time.Time) (*domain.ShortURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrURLNotFound
	}

	r.nextEventID++
	r.events[code] = append(r.events[code], domain.AccessEvent{
		ID:         r.nextEventID,
		Code:       code,
		AccessedAt: at,
	})
	r.urls[idx].VisitCount++

	url := r.urls[idx]
	return &url, nil
}

func (r *urlRepository) ListEventsByCode(ctx context.Context, code string, limit int) ([]domain.AccessEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	events := make([]domain.AccessEvent, len(r.events[code]))
	copy(events, r.events[code])
	r.mu.RUnlock()

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].AccessedAt.Equal(events[j].AccessedAt) {
			return events[i].ID > events[j].ID
		}
		return events[i].AccessedAt.After(events[j].AccessedAt)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *urlRepository) List(ctx context.Context) ([]domain.ShortURL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]domain.ShortURL, len(r.urls))
	copy(urls, r.urls)
	return urls, nil
}
