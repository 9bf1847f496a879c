package service

import (
	"context"
	"errors"
	"time"

	"hashurl/internal/cache"
	"hashurl/internal/config"
	"hashurl/internal/domain"
	"hashurl/internal/repository"
	"hashurl/internal/shortener"
	"hashurl/pkg/logger"
	"hashurl/pkg/validator"
)

// urlService implements the URLService interface
type urlService struct {
	repo      repository.URLRepository
	cache     cache.Cache
	cfg       *config.Config
	logger    *logger.Logger
	generator *shortener.CodeGenerator
	now       func() time.Time
}

// Option customises a URL service
type Option func(*urlService)

// WithCodeGenerator replaces the default SHA-256 code generator
func WithCodeGenerator(g *shortener.CodeGenerator) Option {
	return func(s *urlService) {
		s.generator = g
	}
}

// WithClock sets the time source used to stamp access events
func WithClock(now func() time.Time) Option {
	return func(s *urlService) {
		s.now = now
	}
}

// NewURLService creates a new URL service with dependencies injected.
// cache may be nil.
func NewURLService(
	repo repository.URLRepository,
	cache cache.Cache,
	cfg *config.Config,
	logger *logger.Logger,
	opts ...Option,
) URLService {
	s := &urlService{
		repo:      repo,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		generator: shortener.NewCodeGenerator(nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shorten runs the optimistic insert protocol:
//
//	candidate -> insert -> ok
//	                    -> code taken -> next candidate -> insert ...
//
// Only ErrShortCodeTaken is retried. There is no attempt cap; the loop ends on
// success, on any other store error, or when ctx is done.
func (s *urlService) Shorten(ctx context.Context, originalURL string) (*domain.ShortURL, bool, error) {
	if err := validator.ValidateURL(originalURL); err != nil {
		s.logger.Warn("Invalid URL provided", "url", originalURL, "error", err)
		return nil, false, domain.NewURLValidationError(err.Error())
	}

	existing, err := s.repo.FindByOriginalURL(ctx, originalURL)
	switch {
	case err == nil:
		s.logger.Info("URL already shortened, returning existing", "code", existing.Code)
		return existing, false, nil
	case !errors.Is(err, domain.ErrURLNotFound):
		s.logger.Error("Failed to look up original URL", "error", err)
		return nil, false, err
	}

	candidate := s.generator.Candidate(originalURL)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		url := &domain.ShortURL{
			OriginalURL: originalURL,
			Code:        candidate.Code,
		}

		err := s.repo.Insert(ctx, url)
		switch {
		case err == nil:
			s.cacheURL(ctx, url)
			s.logger.Info("URL shortened successfully",
				"code", url.Code,
				"original_url", originalURL,
				"attempts", attempt,
			)
			return url, true, nil

		case errors.Is(err, domain.ErrShortCodeTaken):
			s.logger.Warn("Short code collision detected, resolving",
				"code", candidate.Code,
				"attempt", attempt,
			)
			candidate, err = s.generator.Next(candidate)
			if err != nil {
				return nil, false, err
			}

		default:
			s.logger.Error("Failed to insert URL", "error", err, "code", candidate.Code)
			return nil, false, err
		}
	}
}

// Lookup is a pure read; it never counts a visit.
func (s *urlService) Lookup(ctx context.Context, code string) (*domain.ShortURL, error) {
	if !shortener.IsValid(code) {
		return nil, domain.ErrURLNotFound
	}
	return s.repo.FindByCode(ctx, code)
}

// Resolve returns the original URL for code and records the visit.
// The cache only saves the lookup; every visit still goes to the store.
func (s *urlService) Resolve(ctx context.Context, code string) (string, error) {
	if !shortener.IsValid(code) {
		return "", domain.ErrURLNotFound
	}

	cached := s.cachedURL(ctx, code)
	if cached == "" {
		if _, err := s.Lookup(ctx, code); err != nil {
			if errors.Is(err, domain.ErrURLNotFound) {
				s.logger.Info("Short code not found", "code", code)
			}
			return "", err
		}
	}

	url, err := s.RecordVisit(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrURLNotFound) && cached != "" {
			s.evict(ctx, code)
		}
		return "", err
	}

	if cached == "" {
		s.cacheURL(ctx, url)
	}

	s.logger.Info("URL accessed", "code", code, "visits", url.VisitCount)
	return url.OriginalURL, nil
}

// RecordVisit increments the visit counter and appends an access event,
// together or not at all.
func (s *urlService) RecordVisit(ctx context.Context, code string) (*domain.ShortURL, error) {
	url, err := s.repo.RecordVisit(ctx, code, s.now().UTC())
	if err != nil {
		if !errors.Is(err, domain.ErrURLNotFound) {
			s.logger.Error("Failed to record visit", "error", err, "code", code)
		}
		return nil, err
	}
	return url, nil
}

func (s *urlService) RecentEvents(ctx context.Context, code string, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = s.cfg.RecentEventsLimit
	}

	stamps := []time.Time{}
	if !shortener.IsValid(code) {
		return stamps, nil
	}

	events, err := s.repo.ListEventsByCode(ctx, code, limit)
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		stamps = append(stamps, event.AccessedAt)
	}
	return stamps, nil
}

func (s *urlService) VisitCount(ctx context.Context, code string) (int64, error) {
	url, err := s.Lookup(ctx, code)
	if errors.Is(err, domain.ErrURLNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return url.VisitCount, nil
}

func (s *urlService) ListAll(ctx context.Context) ([]domain.ListEntry, error) {
	urls, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ListEntry, 0, len(urls))
	for _, url := range urls {
		entries = append(entries, domain.ListEntry{
			Code:        url.Code,
			OriginalURL: url.OriginalURL,
		})
	}
	return entries, nil
}

// AuditLog checks the secret before anything else, so an unauthorised
// caller learns nothing about the code. An unset admin secret disables
// the audit log entirely.
func (s *urlService) AuditLog(ctx context.Context, code, secret string) (*domain.AuditReport, error) {
	if s.cfg.AdminSecret == "" || secret != s.cfg.AdminSecret {
		s.logger.Warn("Rejected audit log request", "code", code)
		return nil, domain.ErrUnauthorized
	}

	if code == "" {
		return nil, domain.NewValidationError("Please provide code")
	}

	count, err := s.VisitCount(ctx, code)
	if err != nil {
		return nil, err
	}

	events, err := s.RecentEvents(ctx, code, 0)
	if err != nil {
		return nil, err
	}

	return &domain.AuditReport{
		Code:         code,
		VisitCount:   count,
		RecentEvents: events,
	}, nil
}

func (s *urlService) cachedURL(ctx context.Context, code string) string {
	if s.cache == nil {
		return ""
	}

	originalURL, err := s.cache.Get(ctx, cache.CodeKey(code))
	if err != nil {
		s.logger.Warn("Cache read failed", "error", err, "code", code)
		return ""
	}
	if originalURL != "" {
		s.logger.Debug("Cache hit", "code", code)
	}
	return originalURL
}

func (s *urlService) cacheURL(ctx context.Context, url *domain.ShortURL) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, cache.CodeKey(url.Code), url.OriginalURL, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache URL", "error", err, "code", url.Code)
	}
}

func (s *urlService) evict(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cache.CodeKey(code)); err != nil {
		s.logger.Warn("Failed to delete from cache", "error", err, "code", code)
	}
}
