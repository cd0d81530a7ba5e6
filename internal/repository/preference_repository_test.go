package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
)

func newPreferenceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPreferenceRepositoryListByFaculty(t *testing.T) {
	db, mock, cleanup := newPreferenceRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "faculty_id", "day_of_week", "time_slot", "kind", "created_at", "updated_at"}).
		AddRow("p1", "f1", 1, 2, string(models.PreferencePreferred), time.Now(), time.Now()).
		AddRow("p2", "f1", 5, 7, string(models.PreferenceNotAvailable), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM faculty_preferences WHERE faculty_id = $1")).
		WithArgs("f1").
		WillReturnRows(rows)

	prefs, err := repo.ListByFaculty(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, models.PreferenceNotAvailable, prefs[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryReplaceForFaculty(t *testing.T) {
	db, mock, cleanup := newPreferenceRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM faculty_preferences WHERE faculty_id = $1")).
		WithArgs("f1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO faculty_preferences")).
		WithArgs(sqlmock.AnyArg(), "f1", 2, 3, string(models.PreferencePreferred), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	prefs := []models.Preference{
		{Day: 2, Slot: 3, Kind: models.PreferencePreferred},
	}
	require.NoError(t, repo.ReplaceForFaculty(context.Background(), "f1", prefs))
	assert.Equal(t, "f1", prefs[0].FacultyID)
	assert.NotEmpty(t, prefs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryReplaceForFacultyClearsGrid(t *testing.T) {
	db, mock, cleanup := newPreferenceRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM faculty_preferences WHERE faculty_id = $1")).
		WithArgs("f1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceForFaculty(context.Background(), "f1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
