package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/rajac/admission-portal/internal/models"
)

func admissionRows() *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(admissionColumns, ", "))
}

func admissionRow(id, userID, fatherName, first, last, status string, createdAt time.Time) []driver.Value {
	var statusValue driver.Value
	if status != "" {
		statusValue = status
	}
	return []driver.Value{
		id, userID, first, last, "عمر", "2015-03-10", "Muslim", "Egyptian", "French", "12 Nile Street, Cairo", "Male", "Rajac", "Grade 4", nil, nil,
		fatherName, "1980-01-01", "01012345678", "father@example.com", "BSc", "Engineer", "Smart Village",
		"Mona Ali", "1985-05-05", "01112345678", "mother@example.com", "BA", "Teacher", "Maadi",
		statusValue, nil, nil, nil, nil, createdAt,
	}
}

func TestAdmissionRepositoryFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	rows := admissionRows().AddRow(admissionRow("a1", "u1", "Ahmed Hassan", "Omar", "Hassan", "", time.Now())...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admission_forms WHERE user_id = $1 LIMIT 1")).WithArgs("u1").WillReturnRows(rows)

	form, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a1", form.ID)
	assert.False(t, form.Status.Valid)
	assert.False(t, form.PrevSchool.Valid)
	assert.Equal(t, models.StatusUnderReview, form.DisplayStatus())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryFindByUserIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery("FROM admission_forms WHERE user_id").WithArgs("u2").WillReturnRows(admissionRows())

	_, err := repo.FindByUserID(context.Background(), "u2")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestAdmissionRepositoryExistsForUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM admission_forms WHERE user_id = $1)")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAdmissionRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO admission_forms .* ON CONFLICT \\(user_id\\) DO NOTHING").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	form := &models.AdmissionForm{UserID: "u1", StudentFirstName: "Omar", PrevSchool: null.StringFrom("Cairo School")}
	require.NoError(t, repo.Insert(context.Background(), form))
	assert.NotEmpty(t, form.ID)
	assert.Equal(t, created, form.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryInsertConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery("INSERT INTO admission_forms").WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	err := repo.Insert(context.Background(), &models.AdmissionForm{UserID: "u1"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAdmissionRepositoryUpdateByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	status := models.StatusPassed
	notes := "Strong interview"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admission_forms SET status = $2, admin_notes = $3 WHERE id = $1")).
		WithArgs("a1", status, notes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.UpdateByID(context.Background(), "a1", models.AdmissionUpdate{Status: &status, AdminNotes: &notes})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryUpdateByIDNoFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	affected, err := repo.UpdateByID(context.Background(), "a1", models.AdmissionUpdate{})
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryUpdateSlotByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admission_forms SET test_date = $2, test_time = $3, status = $4 WHERE user_id = $1")).
		WithArgs("u1", "2025-07-01", "10:00", models.StatusTestSlotBooked).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdateSlotByUserID(context.Background(), "u1", "2025-07-01", "10:00", models.StatusTestSlotBooked)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestAdmissionRepositoryListOrdered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	now := time.Now()
	rows := admissionRows().
		AddRow(admissionRow("a2", "u2", "Mahmoud Ali", "Laila", "Mahmoud", models.StatusPassed, now)...).
		AddRow(admissionRow("a1", "u1", "Ahmed Hassan", "Omar", "Hassan", "", now.Add(-time.Hour))...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admission_forms ORDER BY created_at DESC")).WillReturnRows(rows)

	forms, err := repo.ListOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "a2", forms[0].ID)
	assert.Equal(t, models.StatusPassed, forms[0].Status.String)
}
