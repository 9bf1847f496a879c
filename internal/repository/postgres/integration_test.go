package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hashurl/internal/domain"
	"hashurl/internal/repository"
	"hashurl/internal/shortener"
)

type URLRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	repo      repository.URLRepository
}

func TestURLRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(URLRepositoryIntegrationTestSuite))
}

func (s *URLRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("hashurl_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		s.T().Skipf("postgres container unavailable: %v", err)
	}
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Discard,
	})
	s.Require().NoError(err)
	s.Require().NoError(Migrate(db))

	s.db = db
	s.repo = NewURLRepository(db)
}

func (s *URLRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *URLRepositoryIntegrationTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM access_events")
	s.db.Exec("DELETE FROM short_urls")
}

func (s *URLRepositoryIntegrationTestSuite) TestInsertEnforcesCodeUniqueness() {
	ctx := context.Background()
	code := shortener.Generate("https://example.com/a")

	first := &domain.ShortURL{OriginalURL: "https://example.com/a", Code: code}
	s.Require().NoError(s.repo.Insert(ctx, first))
	s.NotZero(first.ID)

	second := &domain.ShortURL{OriginalURL: "https://example.com/other", Code: code}
	s.ErrorIs(s.repo.Insert(ctx, second), domain.ErrShortCodeTaken)
}

func (s *URLRepositoryIntegrationTestSuite) TestConcurrentVisitsAreNotLost() {
	ctx := context.Background()
	url := &domain.ShortURL{OriginalURL: "https://example.com/busy", Code: shortener.Generate("https://example.com/busy")}
	s.Require().NoError(s.repo.Insert(ctx, url))

	const visits = 50
	var wg sync.WaitGroup
	errs := make(chan error, visits)
	for i := 0; i < visits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.RecordVisit(ctx, url.Code, time.Now().UTC())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	stored, err := s.repo.FindByCode(ctx, url.Code)
	s.Require().NoError(err)
	s.Equal(int64(visits), stored.VisitCount)

	events, err := s.repo.ListEventsByCode(ctx, url.Code, 0)
	s.Require().NoError(err)
	s.Len(events, visits)
}

func (s *URLRepositoryIntegrationTestSuite) TestRecordVisitUnknownCode() {
	_, err := s.repo.RecordVisit(context.Background(), "missing1", time.Now())
	s.ErrorIs(err, domain.ErrURLNotFound)

	var count int64
	s.db.Model(&domain.AccessEvent{}).Count(&count)
	s.Zero(count)
}

func (s *URLRepositoryIntegrationTestSuite) TestListEventsNewestFirst() {
	ctx := context.Background()
	url := &domain.ShortURL{OriginalURL: "https://example.com/log", Code: shortener.Generate("https://example.com/log")}
	s.Require().NoError(s.repo.Insert(ctx, url))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		_, err := s.repo.RecordVisit(ctx, url.Code, base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
	}

	events, err := s.repo.ListEventsByCode(ctx, url.Code, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 10)
	s.True(events[0].AccessedAt.Equal(base.Add(11 * time.Minute)))
	s.True(events[9].AccessedAt.Equal(base.Add(2 * time.Minute)))
}
