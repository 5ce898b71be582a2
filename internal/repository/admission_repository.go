package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rajac/admission-portal/internal/models"
)

const admissionColumns = `id, user_id, student_first_name, student_last_name, student_name_ar, dob, religion, citizenship, second_lang, address, gender, school, grade, prev_school, scholar_notes, father_name, father_dob, father_phone, father_email, father_degree, father_work, father_business, mother_name, mother_dob, mother_phone, mother_email, mother_degree, mother_work, mother_business, status, test_date, test_time, test_result, admin_notes, created_at`

// AdmissionRepository provides database access for admission_forms.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository creates a new instance of AdmissionRepository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// FindByUserID returns the submission owned by a user.
func (r *AdmissionRepository) FindByUserID(ctx context.Context, userID string) (*models.AdmissionForm, error) {
	query := `SELECT ` + admissionColumns + ` FROM admission_forms WHERE user_id = $1 LIMIT 1`
	var form models.AdmissionForm
	if err := r.db.GetContext(ctx, &form, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admission by user: %w", err)
	}
	return &form, nil
}

// ExistsForUser reports whether a user already has a submission.
func (r *AdmissionRepository) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM admission_forms WHERE user_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check admission exists: %w", err)
	}
	return exists, nil
}

// Insert stores a submission unless the user already has one, in which case
// it returns ErrDuplicate and leaves the table untouched.
func (r *AdmissionRepository) Insert(ctx context.Context, form *models.AdmissionForm) error {
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	const insert = `INSERT INTO admission_forms (id, user_id, student_first_name, student_last_name, student_name_ar, dob, religion, citizenship, second_lang, address, gender, school, grade, prev_school, scholar_notes, father_name, father_dob, father_phone, father_email, father_degree, father_work, father_business, mother_name, mother_dob, mother_phone, mother_email, mother_degree, mother_work, mother_business, status)
		VALUES (:id, :user_id, :student_first_name, :student_last_name, :student_name_ar, :dob, :religion, :citizenship, :second_lang, :address, :gender, :school, :grade, :prev_school, :scholar_notes, :father_name, :father_dob, :father_phone, :father_email, :father_degree, :father_work, :father_business, :mother_name, :mother_dob, :mother_phone, :mother_email, :mother_degree, :mother_work, :mother_business, :status)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at`

	query, args, err := r.db.BindNamed(insert, form)
	if err != nil {
		return fmt.Errorf("bind admission insert: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&form.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admission: %w", err)
	}
	return nil
}

// UpdateByID applies the non-nil fields of update and reports the affected row count.
func (r *AdmissionRepository) UpdateByID(ctx context.Context, id string, update models.AdmissionUpdate) (int64, error) {
	var sets []string
	args := []interface{}{id}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("status", update.Status)
	add("admin_notes", update.AdminNotes)
	add("test_result", update.TestResult)
	add("test_date", update.TestDate)
	add("test_time", update.TestTime)

	if len(sets) == 0 {
		return 0, nil
	}

	query := `UPDATE admission_forms SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update admission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update admission rows affected: %w", err)
	}
	return affected, nil
}

// UpdateSlotByUserID records the booked exam slot for a user's submission.
func (r *AdmissionRepository) UpdateSlotByUserID(ctx context.Context, userID, testDate, testTime, status string) (int64, error) {
	const query = `UPDATE admission_forms SET test_date = $2, test_time = $3, status = $4 WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, testDate, testTime, status)
	if err != nil {
		return 0, fmt.Errorf("update admission slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update admission slot rows affected: %w", err)
	}
	return affected, nil
}

// ListOrdered returns every submission, newest first.
func (r *AdmissionRepository) ListOrdered(ctx context.Context) ([]models.AdmissionForm, error) {
	query := `SELECT ` + admissionColumns + ` FROM admission_forms ORDER BY created_at DESC`
	forms := []models.AdmissionForm{}
	if err := r.db.SelectContext(ctx, &forms, query); err != nil {
		return nil, fmt.Errorf("list admissions: %w", err)
	}
	return forms, nil
}
