package entries

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var entryColumns = []string{"id", "location", "date", "comment", "photo_url", "author", "is_deleted", "comments", "created_at"}

func TestList_PartitionFieldsAndOrder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(entryColumns).
		AddRow("e1", "Jeju", "2024-05-01", "Great trip", "http://blob/a.jpg", "kim", false,
			[]byte(`[{"text":"nice","author":"lee","createdAt":"2024-05-02"}]`), now).
		AddRow("e2", "Busan", "2024-06-01", "Rainy", "http://blob/b.jpg", "anonymous", true, []byte(`[]`), now.Add(time.Second))

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*comments,\s*created_at\s+FROM\s+entries\s+ORDER\s+BY\s+created_at`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "e1", got[0].ID)
	assert.False(t, got[0].IsDeleted)
	assert.Equal(t, []models.Comment{{Text: "nice", Author: "lee", CreatedAt: "2024-05-02"}}, got[0].Comments)
	assert.Equal(t, "e2", got[1].ID)
	assert.True(t, got[1].IsDeleted)
	assert.Empty(t, got[1].Comments)
	assert.NotNil(t, got[1].Comments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`failed to select entries: .*db down`), err.Error())
}

func TestList_BadCommentsJSON(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(entryColumns).
		AddRow("e1", "Jeju", "", "", "", "kim", false, []byte(`{broken`), time.Now())
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode comments")
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+entries\s+WHERE\s+id\s*=\s*\$1$`

	rows := sqlmock.NewRows(entryColumns).
		AddRow("e1", "Jeju", "2024-05-01", "Great trip", "http://blob/a.jpg", "kim", false, []byte(`[]`), time.Now())
	mock.ExpectQuery(q).WithArgs("e1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Jeju", got.Location)

	mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(q).WithArgs("not-a-uuid").WillReturnError(&pgconn.PgError{Code: "22P02"})
	_, err = repo.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_AssignsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+entries\s*\(location,\s*date,\s*comment,\s*photo_url,\s*author,\s*is_deleted,\s*comments\)\s*VALUES\s*\(\$1,.*\$7\)\s*RETURNING\s+id,\s*created_at\s*$`

	created := time.Now()
	mock.ExpectQuery(q).
		WithArgs("Jeju", "2024-05-01", "Great trip", "http://blob/a.jpg", "kim", false, []byte(`[]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("e1", created))

	got, err := repo.Create(context.Background(), &models.Entry{
		Location: "Jeju", Date: "2024-05-01", Comment: "Great trip", PhotoURL: "http://blob/a.jpg", Author: "kim",
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, []models.Comment{}, got.Comments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_OnlyPatchedFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+entries\s+SET\s+location\s*=\s*COALESCE\(\$2,\s*location\),\s*date\s*=\s*COALESCE\(\$3,\s*date\),\s*comment\s*=\s*COALESCE\(\$4,\s*comment\)\s+WHERE\s+id\s*=\s*\$1`

	loc := "Seoul"
	mock.ExpectExec(q).
		WithArgs("e1", "Seoul", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "e1", models.EntryPatch{Location: &loc}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDeleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE\s+entries\s+SET\s+is_deleted\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("e1", true).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetDeleted(context.Background(), "e1", true))

	mock.ExpectExec(q).WithArgs("e1", false).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetDeleted(context.Background(), "e1", false))

	mock.ExpectExec(q).WithArgs("gone", true).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetDeleted(context.Background(), "gone", true), common.ErrorNotFound)

	mock.ExpectExec(q).WithArgs("e1", true).WillReturnResult(sqlmock.NewResult(0, 2))
	err := repo.SetDeleted(context.Background(), "e1", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected rows affected")
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+entries\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "e1"))

	mock.ExpectExec(q).WithArgs("e1").WillReturnError(errors.New("db down"))
	err := repo.Delete(context.Background(), "e1")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestAppendComment_SingleStatement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE\s+entries\s+SET\s+comments\s*=\s*comments\s*\|\|\s*\$2::jsonb\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).
		WithArgs("e1", []byte(`[{"text":"nice","author":"lee","createdAt":"2024-05-02"}]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendComment(context.Background(), "e1", models.Comment{Text: "nice", Author: "lee", CreatedAt: "2024-05-02"})
	require.NoError(t, err)

	mock.ExpectExec(q).WithArgs("gone", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.AppendComment(context.Background(), "gone", models.Comment{Text: "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
