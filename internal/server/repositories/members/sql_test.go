package members

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/groupshare/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewSQLRepository(db, dbx.Dollar), mock, db
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+group_members.*WHERE\s+m\.account_id\s*=\s*\$1\s+AND\s+g\.name\s*=\s*\$2$`
	mock.ExpectQuery(q).WithArgs(int64(2), "Team").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(q).WithArgs(int64(3), "Team").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(q).WithArgs(int64(4), "Team").
		WillReturnError(errors.New("db down"))

	ok, err := repo.Exists(context.Background(), 2, "Team")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), 3, "Team")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Exists(context.Background(), 4, "Team")
	assert.ErrorContains(t, err, "db error: db down")
}

func TestGroupsFor(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+g\.name\s+FROM\s+group_members.*WHERE\s+m\.account_id\s*=\s*\$1\s+ORDER\s+BY\s+g\.name$`
	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alpha").AddRow("Team"))

	names, err := repo.GroupsFor(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Team"}, names)
}

func TestGroupsFor_RowsError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name"}).AddRow("Alpha").RowError(0, errors.New("broken row"))
	mock.ExpectQuery(`FROM\s+group_members`).WithArgs(int64(1)).WillReturnRows(rows)

	_, err := repo.GroupsFor(context.Background(), 1)
	assert.ErrorContains(t, err, "broken row")
}

func TestAddRemove(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^INSERT\s+INTO\s+group_members\s*\(group_id,\s*account_id\)\s*VALUES\s*\(\$1,\s*\$2\)$`).
		WithArgs(int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+group_members\s+WHERE\s+group_id\s*=\s*\$1\s+AND\s+account_id\s*=\s*\$2$`).
		WithArgs(int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT`).WillReturnError(errors.New("duplicate"))

	require.NoError(t, repo.Add(context.Background(), 2, 10))
	require.NoError(t, repo.Remove(context.Background(), 2, 10))
	assert.ErrorContains(t, repo.Add(context.Background(), 2, 10), "duplicate")
	assert.NoError(t, mock.ExpectationsWereMet())
}
