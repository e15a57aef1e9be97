package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

func newMockRepository(t *testing.T) (*PostgreSQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewPostgreSQLRepository(RepositoryConfig{DB: db}).(*PostgreSQLRepository), mock
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestPoll_IncrementViewCountIsAtomic(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "polls" SET "view_count"=view_count \+ \$1 WHERE id = \$2`).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Poll().IncrementViewCount(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoll_IncrementMissingPollIsNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "polls" SET "response_count"=response_count \+ \$1 WHERE id = \$2`).
		WithArgs(1, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Poll().IncrementResponseCount(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, repositories.IsNotFoundError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPollResponse_HasCompletedBySession(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "poll_responses" WHERE .*session_id = \$3`).
		WithArgs(3, string(models.ResponseCompleted), "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	done, err := repo.PollResponse().HasCompleted(context.Background(), 3, nil, "sess-1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPollResponse_HasCompletedPrefersUser(t *testing.T) {
	repo, mock := newMockRepository(t)
	userID := uint(12)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "poll_responses" WHERE .*user_id = \$3`).
		WithArgs(3, string(models.ResponseCompleted), 12).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	done, err := repo.PollResponse().HasCompleted(context.Background(), 3, &userID, "ignored")
	require.NoError(t, err)
	assert.False(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUser_GetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := repo.User().GetByID(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, repositories.IsNotFoundError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUser_CreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.User().Create(context.Background(), &models.User{Email: "A@Example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicateError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_CommitsAndRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "polls" SET "response_count"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Poll().IncrementResponseCount(ctx, 1)
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgreSQLRepository_UsesSharedCache(t *testing.T) {
	db, _ := newMockDB(t)
	shared := cache.NewCacheManager(nil)

	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db, Cache: shared}).(*PostgreSQLRepository)
	assert.Same(t, shared, repo.cacheManager)

	repo = NewPostgreSQLRepository(RepositoryConfig{DB: db}).(*PostgreSQLRepository)
	assert.NotNil(t, repo.cacheManager)
}

func TestWithTransaction_InvalidatesCacheAfterCommit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db, mock := newMockDB(t)
	cm := cache.NewCacheManager(client)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db, RedisClient: client, Cache: cm}).(*PostgreSQLRepository)
	ctx := context.Background()

	require.NoError(t, mr.Set("poll:id:1", `{"id":1,"response_count":0}`))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "polls" SET "response_count"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Poll().IncrementResponseCount(ctx, 1); err != nil {
			return err
		}
		// Readers outside the transaction still see the committed definition
		assert.True(t, mr.Exists("poll:id:1"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("poll:id:1"))

	// A rolled back transaction leaves the cache alone
	require.NoError(t, mr.Set("poll:id:1", `{"id":1,"response_count":1}`))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "polls" SET "response_count"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Poll().IncrementResponseCount(ctx, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, mr.Exists("poll:id:1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_TicketStats(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "tickets" GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("open", 2).
			AddRow("pending", 1).
			AddRow("closed", 4))

	stats, err := repo.Dashboard().GetTicketStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.TicketStats{Total: 7, Open: 2, Pending: 1, Closed: 4}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, containsPattern(" 50% off_now "))
}
