package dto

import "github.com/rajac/admission-portal/internal/models"

// Outcome messages shown on the parent dashboard.
const (
	MessagePassed = "passed"
	MessageFailed = "failed"
	MessageReview = "review"
)

// ApplicationStatus is the parent-facing summary of a submission.
type ApplicationStatus struct {
	ID          string `json:"id"`
	StudentName string `json:"studentName"`
	Grade       string `json:"grade"`
	TestDate    string `json:"testDate,omitempty"`
	TestTime    string `json:"testTime,omitempty"`
	TestResult  string `json:"testResult"`
	Status      string `json:"status"`
	AdminNotes  string `json:"adminNotes,omitempty"`
	Message     string `json:"message"`
}

// ParentDashboard is the payload of the parent dashboard page.
type ParentDashboard struct {
	HasSubmission bool               `json:"hasSubmission"`
	Application   *ApplicationStatus `json:"application,omitempty"`
}

// ReviewStats aggregates the loaded applications.
type ReviewStats struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Pending  int            `json:"pending"`
	ByStatus map[string]int `json:"byStatus"`
}

// AdminDashboard is the payload of the admin dashboard page.
type AdminDashboard struct {
	Admin        models.AdminUser       `json:"admin"`
	Search       string                 `json:"search"`
	Stats        ReviewStats            `json:"stats"`
	Applications []models.AdmissionForm `json:"applications"`
}
