package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/repository"
	"github.com/rajac/admission-portal/internal/validation"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
	"github.com/rajac/admission-portal/pkg/jobs"
)

// Navigation targets of the parent flow.
const (
	RouteHome         = "/"
	RouteAuth         = "/auth"
	RouteForm         = "/form"
	RouteEnterOutlook = "/enter-outlook"
	RoutePayFees      = "/pay-fees"
	RouteDashboard    = "/dashboard"
	RouteAdminLogin   = "/admin/login"
	RouteAdminPanel   = "/admin/dashboard"
)

const (
	slotDateLayout = "2006-01-02"
	slotTimeLayout = "15:04"
)

type admissionRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.AdmissionForm, error)
	ExistsForUser(ctx context.Context, userID string) (bool, error)
	Insert(ctx context.Context, form *models.AdmissionForm) error
	UpdateSlotByUserID(ctx context.Context, userID, testDate, testTime, status string) (int64, error)
}

// GateDecision says whether a page renders or where the browser goes instead.
type GateDecision struct {
	Redirect string
}

// Render reports whether the requested page should be shown.
func (d GateDecision) Render() bool {
	return d.Redirect == ""
}

// NotificationPayload is the job payload of parent notification e-mails.
type NotificationPayload struct {
	FormID      string `json:"form_id"`
	Email       string `json:"email"`
	ParentName  string `json:"parent_name"`
	StudentName string `json:"student_name"`
	Grade       string `json:"grade"`
	TestDate    string `json:"test_date,omitempty"`
	TestTime    string `json:"test_time,omitempty"`
}

// AdmissionConfig tunes the form orchestrator.
type AdmissionConfig struct {
	// Sanitize strips markup from string fields before validation.
	Sanitize bool
}

// AdmissionService orchestrates the parent admission flow.
type AdmissionService struct {
	repo       admissionRepository
	validator  *validation.Validator
	dispatcher jobs.Dispatcher
	metrics    *MetricsService
	logger     *zap.Logger
	config     AdmissionConfig
	now        func() time.Time
}

// NewAdmissionService constructs the orchestrator. dispatcher and metrics may be nil.
func NewAdmissionService(repo admissionRepository, validate *validation.Validator, dispatcher jobs.Dispatcher, metrics *MetricsService, logger *zap.Logger, config AdmissionConfig) *AdmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &AdmissionService{
		repo:       repo,
		validator:  validate,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}
}

// HasSubmission reports whether the identity already submitted the form.
func (s *AdmissionService) HasSubmission(ctx context.Context, identity *models.Identity) (bool, error) {
	exists, err := s.repo.ExistsForUser(ctx, identity.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not check your application. Please try again.")
	}
	return exists, nil
}

// Gate decides what a parent page does for the given identity.
func (s *AdmissionService) Gate(ctx context.Context, identity *models.Identity, page string) (GateDecision, error) {
	if identity == nil {
		if page == dto.PageAuth {
			return GateDecision{}, nil
		}
		return GateDecision{Redirect: RouteAuth}, nil
	}

	switch page {
	case dto.PageAuth:
		return s.landing(ctx, identity)
	case dto.PageForm:
		exists, err := s.HasSubmission(ctx, identity)
		if err != nil {
			return GateDecision{}, err
		}
		if exists {
			return GateDecision{Redirect: RouteDashboard}, nil
		}
	}
	return GateDecision{}, nil
}

// Landing picks where a freshly authenticated parent goes.
func (s *AdmissionService) Landing(ctx context.Context, identity *models.Identity) string {
	decision, err := s.landing(ctx, identity)
	if err != nil {
		s.logger.Warn("submission lookup failed, sending parent to form", zap.String("user_id", identity.ID), zap.Error(err))
		return RouteForm
	}
	return decision.Redirect
}

func (s *AdmissionService) landing(ctx context.Context, identity *models.Identity) (GateDecision, error) {
	exists, err := s.HasSubmission(ctx, identity)
	if err != nil {
		return GateDecision{}, err
	}
	if exists {
		return GateDecision{Redirect: RouteDashboard}, nil
	}
	return GateDecision{Redirect: RouteForm}, nil
}

// Submit validates and stores the admission form of identity.
func (s *AdmissionService) Submit(ctx context.Context, identity *models.Identity, raw []byte) (*models.AdmissionForm, error) {
	result := s.validate(raw)
	if !result.OK() {
		s.metrics.RecordSubmission(OutcomeInvalid)
		return nil, result.Err()
	}

	exists, err := s.repo.ExistsForUser(ctx, identity.ID)
	if err != nil {
		s.metrics.RecordSubmission(OutcomeFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not submit form. Please try again.")
	}
	if exists {
		s.metrics.RecordSubmission(OutcomeDuplicate)
		return nil, appErrors.Clone(appErrors.ErrDuplicateSubmission, "")
	}

	form := formFromRequest(identity.ID, result.Form)
	if err := s.repo.Insert(ctx, form); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordSubmission(OutcomeDuplicate)
			return nil, appErrors.Clone(appErrors.ErrDuplicateSubmission, "")
		}
		s.metrics.RecordSubmission(OutcomeFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not submit form. Please try again.")
	}

	s.metrics.RecordSubmission(OutcomeAccepted)
	s.logger.Info("admission form submitted", zap.String("form_id", form.ID), zap.String("user_id", identity.ID))
	s.notify(jobs.TypeNotifyAck, form, identity)
	return form, nil
}

// BookSlot stores the exam slot picked by identity.
func (s *AdmissionService) BookSlot(ctx context.Context, identity *models.Identity, req dto.BookSlotRequest) error {
	err := s.bookSlot(ctx, identity, req)
	s.metrics.RecordSlotBooking(err)
	return err
}

func (s *AdmissionService) bookSlot(ctx context.Context, identity *models.Identity, req dto.BookSlotRequest) error {
	date := strings.TrimSpace(req.TestDate)
	clock := strings.TrimSpace(req.TestTime)
	if date == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Please choose your exam date.")
	}
	if clock == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Please choose your exam time.")
	}

	day, err := time.ParseInLocation(slotDateLayout, date, time.Local)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "Please choose a valid exam date.")
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if day.Before(today) {
		return appErrors.Clone(appErrors.ErrValidation, "Exam date cannot be in the past.")
	}
	if _, err := time.Parse(slotTimeLayout, clock); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "Please choose a valid exam time.")
	}

	affected, err := s.repo.UpdateSlotByUserID(ctx, identity.ID, date, clock, models.StatusTestSlotBooked)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not save your test slot. Please try again.")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "Please submit the admission form first.")
	}

	s.logger.Info("exam slot booked", zap.String("user_id", identity.ID), zap.String("test_date", date), zap.String("test_time", clock))
	form, err := s.repo.FindByUserID(ctx, identity.ID)
	if err != nil {
		s.logger.Warn("failed to reload form for slot notification", zap.String("user_id", identity.ID), zap.Error(err))
		return nil
	}
	s.notify(jobs.TypeNotifySlot, form, identity)
	return nil
}

// Dashboard summarises the identity's submission.
func (s *AdmissionService) Dashboard(ctx context.Context, identity *models.Identity) (*dto.ParentDashboard, error) {
	form, err := s.repo.FindByUserID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &dto.ParentDashboard{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not load your application. Please try again.")
	}
	return &dto.ParentDashboard{HasSubmission: true, Application: applicationStatus(form)}, nil
}

func (s *AdmissionService) validate(raw []byte) validation.Result {
	if !s.config.Sanitize {
		return s.validator.Validate(raw)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return s.validator.Validate(raw)
	}
	validation.SanitizeMap(payload)
	return s.validator.ValidateMap(payload)
}

func (s *AdmissionService) notify(jobType string, form *models.AdmissionForm, identity *models.Identity) {
	if s.dispatcher == nil {
		return
	}
	payload := NotificationPayload{
		FormID:      form.ID,
		Email:       identity.Email,
		ParentName:  form.FatherName,
		StudentName: form.StudentFullName(),
		Grade:       form.Grade,
		TestDate:    form.TestDate.String,
		TestTime:    form.TestTime.String,
	}
	if payload.Email == "" {
		payload.Email = form.FatherEmail
	}
	if err := s.dispatcher.Enqueue(jobs.Job{Type: jobType, Payload: payload}); err != nil {
		s.logger.Warn("failed to queue notification", zap.String("type", jobType), zap.Error(err))
	}
}

func applicationStatus(form *models.AdmissionForm) *dto.ApplicationStatus {
	status := form.DisplayStatus()
	result := form.DisplayResult()

	message := dto.MessageReview
	switch status {
	case models.StatusPassed:
		message = dto.MessagePassed
	case models.StatusFailed:
		message = dto.MessageFailed
	}

	return &dto.ApplicationStatus{
		ID:          form.ID,
		StudentName: form.StudentFullName(),
		Grade:       form.Grade,
		TestDate:    form.TestDate.String,
		TestTime:    form.TestTime.String,
		TestResult:  result,
		Status:      status,
		AdminNotes:  form.AdminNotes.String,
		Message:     message,
	}
}

func formFromRequest(userID string, req *dto.AdmissionFormRequest) *models.AdmissionForm {
	return &models.AdmissionForm{
		UserID:           userID,
		StudentFirstName: req.StudentFirstName,
		StudentLastName:  req.StudentLastName,
		StudentNameAr:    req.StudentNameAr,
		DOB:              req.DOB,
		Religion:         req.Religion,
		Citizenship:      req.Citizenship,
		SecondLang:       req.SecondLang,
		Address:          req.Address,
		Gender:           req.Gender,
		School:           req.School,
		Grade:            req.Grade,
		PrevSchool:       optional(req.PrevSchool),
		ScholarNotes:     optional(req.ScholarNotes),
		FatherName:       req.FatherName,
		FatherDOB:        req.FatherDOB,
		FatherPhone:      req.FatherPhone,
		FatherEmail:      req.FatherEmail,
		FatherDegree:     req.FatherDegree,
		FatherWork:       req.FatherWork,
		FatherBusiness:   req.FatherBusiness,
		MotherName:       req.MotherName,
		MotherDOB:        req.MotherDOB,
		MotherPhone:      req.MotherPhone,
		MotherEmail:      req.MotherEmail,
		MotherDegree:     req.MotherDegree,
		MotherWork:       req.MotherWork,
		MotherBusiness:   req.MotherBusiness,
	}
}

func optional(value string) null.String {
	return null.NewString(value, strings.TrimSpace(value) != "")
}
