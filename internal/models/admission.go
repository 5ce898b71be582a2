package models

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Application statuses.
const (
	StatusUnderReview    = "Under Review"
	StatusTestSlotBooked = "Test Slot Booked"
	StatusPassed         = "Passed"
	StatusFailed         = "Failed"
)

// Test results.
const (
	ResultPass    = "Pass"
	ResultFail    = "Fail"
	ResultPending = "Pending"
)

// AdmissionForm is one row of admission_forms.
type AdmissionForm struct {
	ID     string `db:"id" json:"id"`
	UserID string `db:"user_id" json:"user_id"`

	StudentFirstName string      `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string      `db:"student_last_name" json:"student_last_name"`
	StudentNameAr    string      `db:"student_name_ar" json:"student_name_ar"`
	DOB              string      `db:"dob" json:"dob"`
	Religion         string      `db:"religion" json:"religion"`
	Citizenship      string      `db:"citizenship" json:"citizenship"`
	SecondLang       string      `db:"second_lang" json:"second_lang"`
	Address          string      `db:"address" json:"address"`
	Gender           string      `db:"gender" json:"gender"`
	School           string      `db:"school" json:"school"`
	Grade            string      `db:"grade" json:"grade"`
	PrevSchool       null.String `db:"prev_school" json:"prev_school"`
	ScholarNotes     null.String `db:"scholar_notes" json:"scholar_notes"`

	FatherName     string `db:"father_name" json:"father_name"`
	FatherDOB      string `db:"father_dob" json:"father_dob"`
	FatherPhone    string `db:"father_phone" json:"father_phone"`
	FatherEmail    string `db:"father_email" json:"father_email"`
	FatherDegree   string `db:"father_degree" json:"father_degree"`
	FatherWork     string `db:"father_work" json:"father_work"`
	FatherBusiness string `db:"father_business" json:"father_business"`

	MotherName     string `db:"mother_name" json:"mother_name"`
	MotherDOB      string `db:"mother_dob" json:"mother_dob"`
	MotherPhone    string `db:"mother_phone" json:"mother_phone"`
	MotherEmail    string `db:"mother_email" json:"mother_email"`
	MotherDegree   string `db:"mother_degree" json:"mother_degree"`
	MotherWork     string `db:"mother_work" json:"mother_work"`
	MotherBusiness string `db:"mother_business" json:"mother_business"`

	Status     null.String `db:"status" json:"status"`
	TestDate   null.String `db:"test_date" json:"test_date"`
	TestTime   null.String `db:"test_time" json:"test_time"`
	TestResult null.String `db:"test_result" json:"test_result"`
	AdminNotes null.String `db:"admin_notes" json:"admin_notes"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// StudentFullName joins first and last name with a single space.
func (f *AdmissionForm) StudentFullName() string {
	return f.StudentFirstName + " " + f.StudentLastName
}

// DisplayStatus returns the status, or Under Review when unset.
func (f *AdmissionForm) DisplayStatus() string {
	if s := strings.TrimSpace(f.Status.String); f.Status.Valid && s != "" {
		return s
	}
	return StatusUnderReview
}

// DisplayResult returns the test result, or Pending when unset.
func (f *AdmissionForm) DisplayResult() string {
	if r := strings.TrimSpace(f.TestResult.String); f.TestResult.Valid && r != "" {
		return r
	}
	return ResultPending
}

// AdmissionUpdate carries the reviewer-editable columns. Nil fields are left untouched.
type AdmissionUpdate struct {
	Status     *string
	AdminNotes *string
	TestResult *string
	TestDate   *string
	TestTime   *string
}

// Empty reports whether no column would change.
func (u AdmissionUpdate) Empty() bool {
	return u.Status == nil && u.AdminNotes == nil && u.TestResult == nil && u.TestDate == nil && u.TestTime == nil
}
