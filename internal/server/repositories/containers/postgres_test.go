package containers

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

const (
	insertQ = `(?s)^INSERT\s+INTO\s+containers\s*\(user_id,\s*file_path,\s*content_type\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	getQ    = `^SELECT id, user_id, file_path, content_type, created_at FROM containers WHERE id = \$1$`
	byUserQ = `^SELECT id, user_id, file_path, content_type, created_at FROM containers WHERE user_id = \$1 ORDER BY id$`
	allQ    = `^SELECT id, user_id, file_path, content_type, created_at FROM containers ORDER BY id$`
)

var cols = []string{"id", "user_id", "file_path", "content_type", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(insertQ).
		WithArgs(int64(1), "report.csv", "text/csv").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), now))

	got, err := repo.Create(context.Background(), &models.Container{UserID: 1, FilePath: "report.csv", ContentType: "text/csv"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, now, got.CreatedAt)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs(int64(1), "report.csv", "").
		WillReturnError(errors.New("fk violation"))

	_, err := repo.Create(context.Background(), &models.Container{UserID: 1, FilePath: "report.csv"})
	if err == nil || !regexp.MustCompile(`db error: .*fk violation`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(getQ).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(10), int64(1), "report.csv", "text/csv", time.Now()))

	got, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "report.csv", got.FilePath)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(getQ).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(byUserQ).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(3), int64(1), "a.txt", "text/plain", now).
			AddRow(int64(7), int64(1), "b.txt", "text/plain", now))

	got, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(7), got[1].ID)
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(byUserQ).WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListByUser(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListAll_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(allQ).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("not-a-number", int64(1), "a", "", time.Now()))

	_, err := repo.ListAll(context.Background())
	assert.ErrorContains(t, err, "db error")
}

func TestListAll_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(allQ).WillReturnError(errors.New("db err"))

	_, err := repo.ListAll(context.Background())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
