package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"github.com/talentwire/pipeline-tracker/internal/service"
	"github.com/talentwire/pipeline-tracker/internal/transport"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newApplicationTestApp(t *testing.T, svc ApplicationService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	if err := RegisterApplicationRoutes(app, svc); err != nil {
		t.Fatalf("RegisterApplicationRoutes() error = %v", err)
	}
	return app
}

func sampleApplication(status domain.Status) *domain.Application {
	return &domain.Application{
		ID:          "app-1",
		JobID:       "job-1",
		CandidateID: "cand-1",
		Status:      status,
		Version:     2,
		AppliedAt:   testNow.Add(-72 * time.Hour),
		UpdatedAt:   testNow,
	}
}

func TestCreateApplicationReturnsCreated(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		createFn: func(ctx context.Context, actor domain.Actor, input service.CreateApplicationInput) (*domain.Application, error) {
			if actor.ID != "rec-1" || actor.Role != domain.RoleRecruiter {
				t.Fatalf("actor = %+v, want recruiter rec-1", actor)
			}
			app := sampleApplication(domain.StatusPending)
			app.JobID = input.JobID
			app.CandidateID = input.CandidateID
			return app, nil
		},
	}
	app := newApplicationTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{
		"jobId":       "job-1",
		"candidateId": "cand-1",
	})
	req := httptest.NewRequest("POST", "/v1/applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", "rec-1")
	req.Header.Set("X-Actor-Role", "recruiter")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var got applicationResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Status != "pending" {
		t.Fatalf("response status = %s, want pending", got.Status)
	}
	if len(got.AvailableTransitions) == 0 {
		t.Fatal("expected available transitions for a pending application")
	}
}

func TestUpdateStatusSuccess(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		updateStatusFn: func(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error) {
			if target != domain.StatusShortlisted {
				t.Fatalf("target = %s, want shortlisted", target)
			}
			return sampleApplication(domain.StatusShortlisted), nil
		},
	}
	app := newApplicationTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"status": "shortlisted"})
	req := httptest.NewRequest("PATCH", "/v1/applications/app-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", "rec-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got applicationResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Status != "shortlisted" {
		t.Fatalf("response status = %s, want shortlisted", got.Status)
	}
	if got.Warning != "" {
		t.Fatalf("warning = %q, want empty", got.Warning)
	}
}

func TestUpdateStatusIllegalTransitionConflicts(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		updateStatusFn: func(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error) {
			return nil, domain.ErrIllegalTransition
		},
	}
	app := newApplicationTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"status": "pending"})
	req := httptest.NewRequest("PATCH", "/v1/applications/app-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestUpdateStatusUnknownStatusIsBadRequest(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		updateStatusFn: func(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error) {
			t.Fatal("service must not be reached for an unknown status")
			return nil, nil
		},
	}
	app := newApplicationTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"status": "archived"})
	req := httptest.NewRequest("PATCH", "/v1/applications/app-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateStatusPartialSuccessStillOK(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		updateStatusFn: func(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error) {
			updated := sampleApplication(domain.StatusReviewed)
			return updated, &domain.PartialSuccessError{Application: updated}
		},
	}
	app := newApplicationTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"status": "reviewed"})
	req := httptest.NewRequest("PATCH", "/v1/applications/app-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 for partial success", resp.StatusCode)
	}

	var got applicationResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Warning == "" {
		t.Fatal("partial success response should carry a warning")
	}
	if got.Status != "reviewed" {
		t.Fatalf("response status = %s, want reviewed", got.Status)
	}
}

func TestScheduleInterviewReturnsCreated(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		scheduleInterviewFn: func(ctx context.Context, actor domain.Actor, applicationID string, proposal domain.InterviewProposal) (*domain.Application, *domain.Interview, error) {
			if proposal.Type != "video" {
				t.Fatalf("proposal type = %s, want video", proposal.Type)
			}
			return sampleApplication(domain.StatusScheduledForInterview), &domain.Interview{
				ID:              "int-1",
				ApplicationID:   applicationID,
				ScheduledAt:     testNow.Add(29 * time.Hour),
				DurationMinutes: 60,
				Type:            domain.InterviewVideo,
				MeetingLink:     "https://meet.example.com/room-1",
			}, nil
		},
	}
	app := newApplicationTestApp(t, svc)

	body, _ := json.Marshal(map[string]any{
		"date":            "2026-03-11",
		"time":            "14:00",
		"durationMinutes": 60,
		"type":            "video",
		"meetingLink":     "https://meet.example.com/room-1",
	})
	req := httptest.NewRequest("POST", "/v1/applications/app-1/interviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", "rec-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var got scheduleInterviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Interview.ID != "int-1" {
		t.Fatalf("interview id = %s, want int-1", got.Interview.ID)
	}
	if got.Application.Status != "scheduled_for_interview" {
		t.Fatalf("application status = %s, want scheduled_for_interview", got.Application.Status)
	}
}

func TestScheduleInterviewValidationRendersFields(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		scheduleInterviewFn: func(ctx context.Context, actor domain.Actor, applicationID string, proposal domain.InterviewProposal) (*domain.Application, *domain.Interview, error) {
			ve := domain.NewValidationError()
			ve.Add("location", "required")
			return nil, nil, ve
		},
	}
	app := newApplicationTestApp(t, svc)

	body, _ := json.Marshal(map[string]any{
		"date":            "2026-03-11",
		"time":            "14:00",
		"durationMinutes": 60,
		"type":            "in_person",
	})
	req := httptest.NewRequest("POST", "/v1/applications/app-1/interviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var got struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Fields["location"] != "required" {
		t.Fatalf("fields = %v, want location required", got.Fields)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		getByIDFn: func(ctx context.Context, id string) (*domain.Application, error) {
			return nil, domain.ErrNotFound
		},
	}
	app := newApplicationTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/applications/missing", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListApplicationsFilters(t *testing.T) {
	t.Parallel()

	svc := &stubApplicationService{
		listFn: func(ctx context.Context, params repository.ApplicationListParams) ([]domain.Application, int64, error) {
			if params.Status == nil || *params.Status != domain.StatusShortlisted {
				t.Fatalf("status filter = %v, want shortlisted", params.Status)
			}
			return []domain.Application{*sampleApplication(domain.StatusShortlisted)}, 1, nil
		},
	}
	app := newApplicationTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/applications?status=shortlisted", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got listApplicationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Meta.Total != 1 || len(got.Data) != 1 {
		t.Fatalf("list = %+v, want one application", got)
	}
}

type stubApplicationService struct {
	createFn            func(ctx context.Context, actor domain.Actor, input service.CreateApplicationInput) (*domain.Application, error)
	getByIDFn           func(ctx context.Context, id string) (*domain.Application, error)
	listFn              func(ctx context.Context, params repository.ApplicationListParams) ([]domain.Application, int64, error)
	updateStatusFn      func(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error)
	scheduleInterviewFn func(ctx context.Context, actor domain.Actor, applicationID string, proposal domain.InterviewProposal) (*domain.Application, *domain.Interview, error)
	listInterviewsFn    func(ctx context.Context, applicationID string) ([]domain.Interview, error)
}

func (s *stubApplicationService) Create(ctx context.Context, actor domain.Actor, input service.CreateApplicationInput) (*domain.Application, error) {
	if s.createFn != nil {
		return s.createFn(ctx, actor, input)
	}
	return nil, domain.ErrValidation
}

func (s *stubApplicationService) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (s *stubApplicationService) List(ctx context.Context, params repository.ApplicationListParams) ([]domain.Application, int64, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (s *stubApplicationService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, actor, id, target)
	}
	return nil, domain.ErrNotFound
}

func (s *stubApplicationService) ScheduleInterview(ctx context.Context, actor domain.Actor, applicationID string, proposal domain.InterviewProposal) (*domain.Application, *domain.Interview, error) {
	if s.scheduleInterviewFn != nil {
		return s.scheduleInterviewFn(ctx, actor, applicationID, proposal)
	}
	return nil, nil, domain.ErrNotFound
}

func (s *stubApplicationService) ListInterviews(ctx context.Context, applicationID string) ([]domain.Interview, error) {
	if s.listInterviewsFn != nil {
		return s.listInterviewsFn(ctx, applicationID)
	}
	return nil, nil
}
