package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	"github.com/rajac/admission-portal/internal/validation"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
)

type reviewRepository interface {
	ListOrdered(ctx context.Context) ([]models.AdmissionForm, error)
	UpdateByID(ctx context.Context, id string, update models.AdmissionUpdate) (int64, error)
}

// ReviewService backs the admin review screen.
type ReviewService struct {
	repo      reviewRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(repo reviewRepository, validate *validation.Validator, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &ReviewService{repo: repo, validator: validate, logger: logger}
}

// List returns every submission, newest first.
func (s *ReviewService) List(ctx context.Context) ([]models.AdmissionForm, error) {
	apps, err := s.repo.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not load applications. Please try again.")
	}
	if apps == nil {
		apps = []models.AdmissionForm{}
	}
	return apps, nil
}

// Filter keeps the applications whose father name or student full name
// contains term, ignoring case. A blank term keeps everything.
func Filter(apps []models.AdmissionForm, term string) []models.AdmissionForm {
	if strings.TrimSpace(term) == "" {
		return apps
	}
	needle := strings.ToLower(term)
	out := make([]models.AdmissionForm, 0, len(apps))
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.FatherName), needle) ||
			strings.Contains(strings.ToLower(app.StudentFullName()), needle) {
			out = append(out, app)
		}
	}
	return out
}

// Stats aggregates a loaded application set.
func Stats(apps []models.AdmissionForm) dto.ReviewStats {
	stats := dto.ReviewStats{Total: len(apps), ByStatus: make(map[string]int)}
	for i := range apps {
		raw := apps[i].Status.String
		switch {
		case raw == models.StatusPassed:
			stats.Passed++
		case raw == models.StatusFailed:
			stats.Failed++
		case strings.Contains(raw, "Pending") || strings.Contains(raw, "Awaiting"):
			stats.Pending++
		}
		stats.ByStatus[apps[i].DisplayStatus()]++
	}
	return stats
}

// Dashboard loads, filters and summarises applications for admin.
func (s *ReviewService) Dashboard(ctx context.Context, admin models.AdminUser, term string) (*dto.AdminDashboard, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AdminDashboard{
		Admin:        admin,
		Search:       term,
		Stats:        Stats(apps),
		Applications: Filter(apps, term),
	}, nil
}

// Update applies reviewer edits and reloads the full review list. The
// returned dashboard replaces whatever the caller had loaded.
func (s *ReviewService) Update(ctx context.Context, admin models.AdminUser, id string, req dto.ReviewUpdateRequest, term string) (*dto.AdminDashboard, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Application not found.")
	}
	if violations := s.validator.Struct(req); len(violations) > 0 {
		return nil, validation.ViolationsError(violations)
	}
	update := models.AdmissionUpdate{
		Status:     req.Status,
		AdminNotes: req.AdminNotes,
		TestResult: req.TestResult,
		TestDate:   req.TestDate,
		TestTime:   req.TestTime,
	}
	if update.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Nothing to update.")
	}

	affected, err := s.repo.UpdateByID(ctx, id, update)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "Could not update application. Please try again.")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Application not found.")
	}
	s.logger.Info("application updated", zap.String("form_id", id), zap.String("admin_id", admin.ID))

	return s.Dashboard(ctx, admin, term)
}
