package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/rajac/admission-portal/internal/dto"
	"github.com/rajac/admission-portal/internal/models"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
)

type mockReviewRepo struct {
	apps      []models.AdmissionForm
	listErr   error
	updateErr error
	updates   []models.AdmissionUpdate
}

func (m *mockReviewRepo) ListOrdered(context.Context) ([]models.AdmissionForm, error) {
	return m.apps, m.listErr
}

func (m *mockReviewRepo) UpdateByID(_ context.Context, id string, update models.AdmissionUpdate) (int64, error) {
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	m.updates = append(m.updates, update)
	for i := range m.apps {
		if m.apps[i].ID != id {
			continue
		}
		if update.Status != nil {
			m.apps[i].Status = null.StringFrom(*update.Status)
		}
		if update.TestResult != nil {
			m.apps[i].TestResult = null.StringFrom(*update.TestResult)
		}
		if update.AdminNotes != nil {
			m.apps[i].AdminNotes = null.StringFrom(*update.AdminNotes)
		}
		return 1, nil
	}
	return 0, nil
}

const appIDPrefix = "6f1c2a00-0000-4000-8000-0000000000"

func appID(short string) string { return appIDPrefix + short }

func sampleApps() []models.AdmissionForm {
	return []models.AdmissionForm{
		{ID: appID("a1"), FatherName: "Ahmed Hassan", StudentFirstName: "Omar", StudentLastName: "Hassan", Status: null.StringFrom(models.StatusPassed)},
		{ID: appID("a2"), FatherName: "Karim Nabil", StudentFirstName: "Laila", StudentLastName: "Nabil", Status: null.StringFrom(models.StatusFailed)},
		{ID: appID("a3"), FatherName: "Youssef Adel", StudentFirstName: "Omar", StudentLastName: "Adel", Status: null.StringFrom("Pending Payment")},
		{ID: appID("a4"), FatherName: "Sherif Samir", StudentFirstName: "Nour", StudentLastName: "Samir", Status: null.StringFrom("Awaiting Documents")},
		{ID: appID("a5"), FatherName: "Tarek Fawzy", StudentFirstName: "Hana", StudentLastName: "Fawzy"},
	}
}

func ids(apps []models.AdmissionForm) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, strings.TrimPrefix(a.ID, appIDPrefix))
	}
	return out
}

func TestFilter(t *testing.T) {
	apps := sampleApps()

	assert.Equal(t, []string{"a1", "a3"}, ids(Filter(apps, "OMAR")))
	assert.Equal(t, []string{"a2"}, ids(Filter(apps, "karim")))
	assert.Equal(t, []string{"a3"}, ids(Filter(apps, "omar adel")))
	assert.Empty(t, Filter(apps, "zzz"))
	assert.Len(t, Filter(apps, "   "), len(apps))
	assert.Len(t, Filter(apps, ""), len(apps))
}

func TestStats(t *testing.T) {
	stats := Stats(sampleApps())
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.ByStatus[models.StatusUnderReview])
	assert.Equal(t, 1, stats.ByStatus["Pending Payment"])
}

func TestReviewDashboardFiltersButCountsAll(t *testing.T) {
	svc := NewReviewService(&mockReviewRepo{apps: sampleApps()}, nil, nil)

	view, err := svc.Dashboard(context.Background(), models.AdminUser{ID: "admin-1"}, "nabil")
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, ids(view.Applications))
	assert.Equal(t, 5, view.Stats.Total)
	assert.Equal(t, "nabil", view.Search)
}

func TestReviewListFailure(t *testing.T) {
	svc := NewReviewService(&mockReviewRepo{listErr: errors.New("down")}, nil, nil)
	_, err := svc.List(context.Background())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRemoteUnavailable.Code))

	svc = NewReviewService(&mockReviewRepo{}, nil, nil)
	apps, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, apps)
}

func TestReviewUpdateReloadsFullList(t *testing.T) {
	repo := &mockReviewRepo{apps: sampleApps()}
	svc := NewReviewService(repo, nil, nil)
	admin := models.AdminUser{ID: "admin-1"}

	status, result, notes := models.StatusPassed, models.ResultPass, "Excellent interview"
	view, err := svc.Update(context.Background(), admin, appID("a5"), dto.ReviewUpdateRequest{Status: &status, TestResult: &result, AdminNotes: &notes}, "")
	require.NoError(t, err)
	require.Len(t, repo.updates, 1)
	assert.Nil(t, repo.updates[0].TestDate)

	assert.Equal(t, []string{"a1", "a2", "a3", "a4", "a5"}, ids(view.Applications))
	assert.Equal(t, 2, view.Stats.Passed)
	assert.Equal(t, admin, view.Admin)
	updated := view.Applications[4]
	assert.Equal(t, models.StatusPassed, updated.DisplayStatus())
	assert.Equal(t, models.ResultPass, updated.DisplayResult())
	assert.Equal(t, notes, updated.AdminNotes.String)
}

func TestReviewUpdateKeepsSearch(t *testing.T) {
	svc := NewReviewService(&mockReviewRepo{apps: sampleApps()}, nil, nil)
	status := models.StatusFailed

	view, err := svc.Update(context.Background(), models.AdminUser{ID: "admin-1"}, appID("a1"), dto.ReviewUpdateRequest{Status: &status}, "omar")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a3"}, ids(view.Applications))
	assert.Equal(t, "omar", view.Search)
	assert.Equal(t, 5, view.Stats.Total)
	assert.Equal(t, 2, view.Stats.Failed)
}

func TestReviewUpdateErrors(t *testing.T) {
	repo := &mockReviewRepo{apps: sampleApps()}
	svc := NewReviewService(repo, nil, nil)
	admin := models.AdminUser{ID: "admin-1"}
	status := models.StatusFailed

	_, err := svc.Update(context.Background(), admin, appID("ff"), dto.ReviewUpdateRequest{Status: &status}, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.Update(context.Background(), admin, "not-a-uuid", dto.ReviewUpdateRequest{Status: &status}, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
	assert.Empty(t, repo.updates)

	_, err = svc.Update(context.Background(), admin, appID("a1"), dto.ReviewUpdateRequest{}, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	repo.updateErr = errors.New("timeout")
	_, err = svc.Update(context.Background(), admin, appID("a1"), dto.ReviewUpdateRequest{Status: &status}, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRemoteUnavailable.Code))

	repo.updateErr = nil
	repo.listErr = errors.New("down")
	_, err = svc.Update(context.Background(), admin, appID("a1"), dto.ReviewUpdateRequest{Status: &status}, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRemoteUnavailable.Code))
}
