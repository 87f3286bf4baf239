package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"github.com/talentwire/pipeline-tracker/internal/service"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100

	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"
)

type ApplicationService interface {
	Create(ctx context.Context, actor domain.Actor, input service.CreateApplicationInput) (*domain.Application, error)
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	List(ctx context.Context, params repository.ApplicationListParams) ([]domain.Application, int64, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error)
	ScheduleInterview(ctx context.Context, actor domain.Actor, applicationID string, proposal domain.InterviewProposal) (*domain.Application, *domain.Interview, error)
	ListInterviews(ctx context.Context, applicationID string) ([]domain.Interview, error)
}

type ApplicationHandler struct {
	service ApplicationService
}

func NewApplicationHandler(service ApplicationService) (*ApplicationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("application service is required")
	}
	return &ApplicationHandler{service: service}, nil
}

func RegisterApplicationRoutes(router fiber.Router, service ApplicationService) error {
	h, err := NewApplicationHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/applications", h.CreateApplication)
	v1.Get("/applications", h.ListApplications)
	v1.Get("/applications/:id", h.GetApplication)
	v1.Patch("/applications/:id/status", h.UpdateStatus)
	v1.Post("/applications/:id/interviews", h.ScheduleInterview)
	v1.Get("/applications/:id/interviews", h.ListInterviews)

	return nil
}

type createApplicationRequest struct {
	JobID       string `json:"jobId"`
	CandidateID string `json:"candidateId"`
	Notes       string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type scheduleInterviewRequest struct {
	Date                string `json:"date"`
	Time                string `json:"time"`
	DurationMinutes     int    `json:"durationMinutes"`
	Type                string `json:"type"`
	Location            string `json:"location"`
	MeetingLink         string `json:"meetingLink"`
	Interviewer         string `json:"interviewer"`
	ReminderOffsetHours int    `json:"reminderOffsetHours"`
	Notes               string `json:"notes"`
}

type applicationResponse struct {
	ID                   string    `json:"id"`
	JobID                string    `json:"jobId"`
	CandidateID          string    `json:"candidateId"`
	Status               string    `json:"status"`
	Notes                string    `json:"notes,omitempty"`
	Version              int64     `json:"version"`
	AvailableTransitions []string  `json:"availableTransitions"`
	AppliedAt            time.Time `json:"appliedAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	Warning              string    `json:"warning,omitempty"`
}

type interviewResponse struct {
	ID                  string    `json:"id"`
	ApplicationID       string    `json:"applicationId"`
	ScheduledAt         time.Time `json:"scheduledAt"`
	DurationMinutes     int       `json:"durationMinutes"`
	Type                string    `json:"type"`
	Location            string    `json:"location,omitempty"`
	MeetingLink         string    `json:"meetingLink,omitempty"`
	Interviewer         string    `json:"interviewer,omitempty"`
	ReminderOffsetHours int       `json:"reminderOffsetHours"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

type scheduleInterviewResponse struct {
	Application applicationResponse `json:"application"`
	Interview   interviewResponse   `json:"interview"`
	Warning     string              `json:"warning,omitempty"`
}

type listApplicationsResponse struct {
	Data []applicationResponse `json:"data"`
	Meta listMeta              `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	var req createApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.UserContext(), requestActor(c), service.CreateApplicationInput{
		JobID:       req.JobID,
		CandidateID: req.CandidateID,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toApplicationResponse(created, ""))
}

func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	app, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(toApplicationResponse(app, ""))
}

func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return err
	}

	applications, total, err := h.service.List(c.UserContext(), params)
	if err != nil {
		return err
	}

	data := make([]applicationResponse, 0, len(applications))
	for i := range applications {
		data = append(data, toApplicationResponse(&applications[i], ""))
	}

	return c.Status(fiber.StatusOK).JSON(listApplicationsResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

// UpdateStatus moves an application along one lifecycle edge. A partial
// success (status committed, notification append failed) still returns 200,
// with the failure surfaced in the warning field.
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	target, err := domain.ParseStatusFromString(req.Status)
	if err != nil {
		return err
	}

	updated, err := h.service.UpdateStatus(c.UserContext(), requestActor(c), c.Params("id"), target)
	if err != nil {
		if errors.Is(err, domain.ErrPartialSuccess) && updated != nil {
			return c.Status(fiber.StatusOK).JSON(toApplicationResponse(updated, partialSuccessWarning))
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(toApplicationResponse(updated, ""))
}

func (h *ApplicationHandler) ScheduleInterview(c *fiber.Ctx) error {
	var req scheduleInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	proposal := domain.InterviewProposal{
		Date:                req.Date,
		Time:                req.Time,
		DurationMinutes:     req.DurationMinutes,
		Type:                req.Type,
		Location:            req.Location,
		MeetingLink:         req.MeetingLink,
		Interviewer:         req.Interviewer,
		ReminderOffsetHours: req.ReminderOffsetHours,
		Notes:               req.Notes,
	}

	updated, interview, err := h.service.ScheduleInterview(c.UserContext(), requestActor(c), c.Params("id"), proposal)
	if err != nil {
		if errors.Is(err, domain.ErrPartialSuccess) && updated != nil && interview != nil {
			return c.Status(fiber.StatusCreated).JSON(scheduleInterviewResponse{
				Application: toApplicationResponse(updated, ""),
				Interview:   toInterviewResponse(interview),
				Warning:     partialSuccessWarning,
			})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(scheduleInterviewResponse{
		Application: toApplicationResponse(updated, ""),
		Interview:   toInterviewResponse(interview),
	})
}

func (h *ApplicationHandler) ListInterviews(c *fiber.Ctx) error {
	interviews, err := h.service.ListInterviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	data := make([]interviewResponse, 0, len(interviews))
	for i := range interviews {
		data = append(data, toInterviewResponse(&interviews[i]))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": data})
}

const partialSuccessWarning = "status committed but the notification could not be delivered"

func parseListParams(c *fiber.Ctx) (repository.ApplicationListParams, error) {
	params := repository.ApplicationListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ApplicationListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ApplicationListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseStatusFromString(rawStatus)
		if err != nil {
			return repository.ApplicationListParams{}, err
		}
		params.Status = &status
	}

	if candidateID := strings.TrimSpace(c.Query("candidateId")); candidateID != "" {
		params.CandidateID = &candidateID
	}
	if jobID := strings.TrimSpace(c.Query("jobId")); jobID != "" {
		params.JobID = &jobID
	}

	return params, nil
}

// requestActor reads the acting party from the gateway-set identity headers.
// Authentication happens upstream; these headers are trusted here.
func requestActor(c *fiber.Ctx) domain.Actor {
	actor := domain.Actor{
		ID:   strings.TrimSpace(c.Get(actorIDHeader)),
		Role: domain.RoleRecruiter,
	}
	if role := strings.ToLower(strings.TrimSpace(c.Get(actorRoleHeader))); role == string(domain.RoleCandidate) {
		actor.Role = domain.RoleCandidate
	}
	return actor
}

func toApplicationResponse(app *domain.Application, warning string) applicationResponse {
	if app == nil {
		return applicationResponse{}
	}

	targets := app.Status.LegalTargets()
	transitions := make([]string, 0, len(targets))
	for _, target := range targets {
		transitions = append(transitions, target.String())
	}

	return applicationResponse{
		ID:                   app.ID,
		JobID:                app.JobID,
		CandidateID:          app.CandidateID,
		Status:               app.Status.String(),
		Notes:                app.Notes,
		Version:              app.Version,
		AvailableTransitions: transitions,
		AppliedAt:            app.AppliedAt,
		UpdatedAt:            app.UpdatedAt,
		Warning:              warning,
	}
}

func toInterviewResponse(interview *domain.Interview) interviewResponse {
	if interview == nil {
		return interviewResponse{}
	}

	return interviewResponse{
		ID:                  interview.ID,
		ApplicationID:       interview.ApplicationID,
		ScheduledAt:         interview.ScheduledAt,
		DurationMinutes:     interview.DurationMinutes,
		Type:                interview.Type.String(),
		Location:            interview.Location,
		MeetingLink:         interview.MeetingLink,
		Interviewer:         interview.Interviewer,
		ReminderOffsetHours: interview.ReminderOffsetHours,
		Notes:               interview.Notes,
		CreatedAt:           interview.CreatedAt,
	}
}
