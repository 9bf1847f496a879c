package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"hashurl/internal/domain"
)

func TestInsert_AssignsIDAndRejectsDuplicateCode(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	first := &domain.ShortURL{OriginalURL: "https://example.com/a", Code: "Lc4KTFBE"}
	require.NoError(t, repo.Insert(ctx, first))
	assert.Equal(t, uint(1), first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &domain.ShortURL{OriginalURL: "https://example.com/b", Code: "Lc4KTFBE"}
	assert.ErrorIs(t, repo.Insert(ctx, second), domain.ErrShortCodeTaken)
	assert.Zero(t, second.ID)

	urls, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, urls, 1)
}

func TestFind(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.ShortURL{OriginalURL: "https://example.com/a", Code: "Lc4KTFBE"}))
	require.NoError(t, repo.Insert(ctx, &domain.ShortURL{OriginalURL: "https://example.com/a", Code: "DuYIMZhS"}))

	byURL, err := repo.FindByOriginalURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "Lc4KTFBE", byURL.Code, "oldest record wins")

	byCode, err := repo.FindByCode(ctx, "DuYIMZhS")
	require.NoError(t, err)
	assert.Equal(t, uint(2), byCode.ID)

	_, err = repo.FindByCode(ctx, "missing1")
	assert.ErrorIs(t, err, domain.ErrURLNotFound)

	_, err = repo.FindByOriginalURL(ctx, "https://example.com/none")
	assert.ErrorIs(t, err, domain.ErrURLNotFound)
}

func TestFind_ReturnsCopies(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &domain.ShortURL{OriginalURL: "https://example.com/a", Code: "Lc4KTFBE"}))

	url, err := repo.FindByCode(ctx, "Lc4KTFBE")
	require.NoError(t, err)
	url.VisitCount = 99

	again, err := repo.FindByCode(ctx, "Lc4KTFBE")
	require.NoError(t, err)
	assert.Zero(t, again.VisitCount)
}

func TestRecordVisit_ConcurrentVisitsAreNotLost(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &domain.ShortURL{OriginalURL: "https://example.com/a", Code: "Lc4KTFBE"}))

	const visits = 200
	var g errgroup.Group
	for i := 0; i < visits; i++ {
		g.Go(func() error {
			_, err := repo.RecordVisit(ctx, "Lc4KTFBE", time.Now())
			return err
		})
	}
	require.NoError(t, g.Wait())

	url, err := repo.FindByCode(ctx, "Lc4KTFBE")
	require.NoError(t, err)
	assert.Equal(t, int64(visits), url.VisitCount)

	events, err := repo.ListEventsByCode(ctx, "Lc4KTFBE", 0)
	require.NoError(t, err)
	assert.Len(t, events, visits)
}

func TestRecordVisit_UnknownCode(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	_, err := repo.RecordVisit(ctx, "missing1", time.Now())
	assert.ErrorIs(t, err, domain.ErrURLNotFound)

	events, err := repo.ListEventsByCode(ctx, "missing1", 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListEventsByCode_NewestFirstAndLimited(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &domain.ShortURL{OriginalURL: "https://example.com/a", Code: "Lc4KTFBE"}))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{3, 0, 5, 1, 4, 2} {
		_, err := repo.RecordVisit(ctx, "Lc4KTFBE", base.Add(time.Duration(offset)*time.Minute))
		require.NoError(t, err)
	}

	events, err := repo.ListEventsByCode(ctx, "Lc4KTFBE", 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, base.Add(5*time.Minute), events[0].AccessedAt)
	assert.Equal(t, base.Add(4*time.Minute), events[1].AccessedAt)
	assert.Equal(t, base.Add(3*time.Minute), events[2].AccessedAt)
}

func TestCancelledContext(t *testing.T) {
	repo := NewURLRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Insert(ctx, &domain.ShortURL{OriginalURL: "https://example.com/a", Code: "Lc4KTFBE"})
	assert.ErrorIs(t, err, context.Canceled)
}
