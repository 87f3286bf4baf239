package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/observability"
	"github.com/talentwire/pipeline-tracker/internal/queue"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"go.uber.org/zap"
)

// EventSink receives domain events after their state change has been
// committed. The dispatcher is the production implementation.
type EventSink interface {
	OnEvent(ctx context.Context, event domain.Event) error
}

// ApplicationService orchestrates the application lifecycle: transitions,
// interview scheduling, and the notification fan-out that follows both.
type ApplicationService struct {
	applications repository.ApplicationRepository
	interviews   repository.InterviewRepository
	events       EventSink
	publisher    queue.Publisher
	logger       *zap.Logger
	metrics      *observability.Metrics
	now          func() time.Time
}

type CreateApplicationInput struct {
	JobID       string
	CandidateID string
	Notes       string
}

func NewApplicationService(
	applications repository.ApplicationRepository,
	interviews repository.InterviewRepository,
	events EventSink,
	publisher queue.Publisher,
	logger *zap.Logger,
) (*ApplicationService, error) {
	if applications == nil {
		return nil, fmt.Errorf("application repository is required")
	}
	if interviews == nil {
		return nil, fmt.Errorf("interview repository is required")
	}
	if events == nil {
		return nil, fmt.Errorf("event sink is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ApplicationService{
		applications: applications,
		interviews:   interviews,
		events:       events,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}, nil
}

func (s *ApplicationService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

func (s *ApplicationService) Create(ctx context.Context, actor domain.Actor, input CreateApplicationInput) (*domain.Application, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now().UTC()
	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       strings.TrimSpace(input.JobID),
		CandidateID: strings.TrimSpace(input.CandidateID),
		Status:      domain.StatusPending,
		Notes:       strings.TrimSpace(input.Notes),
		Version:     1,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("application created",
		zap.String("applicationId", app.ID),
		zap.String("jobId", app.JobID),
		zap.String("actorId", actor.ID),
		zap.String("actorRole", string(actor.Role)),
	)
	return app, nil
}

func (s *ApplicationService) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: application id is required", domain.ErrValidation)
	}
	return s.applications.GetByID(ctx, strings.TrimSpace(id))
}

func (s *ApplicationService) List(ctx context.Context, params repository.ApplicationListParams) ([]domain.Application, int64, error) {
	return s.applications.List(ctx, params)
}

func (s *ApplicationService) ListInterviews(ctx context.Context, applicationID string) ([]domain.Interview, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, fmt.Errorf("%w: application id is required", domain.ErrValidation)
	}

	if _, err := s.applications.GetByID(ctx, strings.TrimSpace(applicationID)); err != nil {
		return nil, err
	}
	return s.interviews.ListByApplication(ctx, strings.TrimSpace(applicationID))
}

// UpdateStatus moves an application along one edge of the lifecycle state
// machine. The write is conditional on the status and version the caller
// observed; a lost race surfaces as ErrConcurrentModification. A committed
// transition whose notification append fails returns PartialSuccessError
// carrying the updated application.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, target domain.Status) (*domain.Application, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: application id is required", domain.ErrValidation)
	}

	current, err := s.applications.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	_, change, err := domain.Transition(*current, target)
	if err != nil {
		return nil, err
	}

	updated, err := s.applications.UpdateStatus(ctx, current.ID, change, current.Version)
	if err != nil {
		return nil, err
	}

	s.logger.Info("application status updated",
		zap.String("applicationId", updated.ID),
		zap.String("from", change.From.String()),
		zap.String("to", change.To.String()),
		zap.String("actorId", actor.ID),
		zap.String("actorRole", string(actor.Role)),
	)
	if s.metrics != nil {
		s.metrics.IncTransition(change.To.String())
	}

	event := domain.Event{
		Kind:        domain.EventStatusChanged,
		Application: *updated,
		Change:      change,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.events.OnEvent(ctx, event); err != nil {
		s.logger.Error("status committed but notification dispatch failed",
			zap.String("applicationId", updated.ID),
			zap.Error(err),
		)
		return updated, &domain.PartialSuccessError{Application: updated, Cause: err}
	}

	return updated, nil
}

// ScheduleInterview validates the proposal, records the interview, and moves
// the application from shortlisted to scheduled_for_interview. The interview
// row is written first and compensated away if the status write loses a
// concurrent race, so no interview ever exists for an unscheduled application.
func (s *ApplicationService) ScheduleInterview(
	ctx context.Context,
	actor domain.Actor,
	applicationID string,
	proposal domain.InterviewProposal,
) (*domain.Application, *domain.Interview, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(applicationID) == "" {
		return nil, nil, fmt.Errorf("%w: application id is required", domain.ErrValidation)
	}

	current, err := s.applications.GetByID(ctx, strings.TrimSpace(applicationID))
	if err != nil {
		return nil, nil, err
	}

	if current.Status != domain.StatusShortlisted {
		return nil, nil, fmt.Errorf(
			"%w: interviews can only be scheduled for shortlisted applications, current status is %s",
			domain.ErrInvalidState, current.Status,
		)
	}

	interview, err := domain.BuildInterview(current.ID, proposal, s.now().UTC())
	if err != nil {
		return nil, nil, err
	}

	_, change, err := domain.Transition(*current, domain.StatusScheduledForInterview)
	if err != nil {
		return nil, nil, err
	}

	if err := s.interviews.Create(ctx, interview); err != nil {
		return nil, nil, err
	}

	updated, err := s.applications.UpdateStatus(ctx, current.ID, change, current.Version)
	if err != nil {
		if deleteErr := s.interviews.Delete(ctx, interview.ID); deleteErr != nil {
			s.logger.Error("failed to compensate interview after status write failure",
				zap.String("interviewId", interview.ID),
				zap.Error(deleteErr),
			)
		}
		return nil, nil, err
	}

	s.logger.Info("interview scheduled",
		zap.String("applicationId", updated.ID),
		zap.String("interviewId", interview.ID),
		zap.Time("scheduledAt", interview.ScheduledAt),
		zap.String("actorId", actor.ID),
		zap.String("actorRole", string(actor.Role)),
	)
	if s.metrics != nil {
		s.metrics.IncTransition(change.To.String())
		s.metrics.IncInterviewScheduled()
	}

	s.publishInvite(ctx, updated, interview)

	event := domain.Event{
		Kind:        domain.EventInterviewScheduled,
		Application: *updated,
		Change:      change,
		Interview:   interview,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.events.OnEvent(ctx, event); err != nil {
		s.logger.Error("interview committed but notification dispatch failed",
			zap.String("applicationId", updated.ID),
			zap.String("interviewId", interview.ID),
			zap.Error(err),
		)
		return updated, interview, &domain.PartialSuccessError{Application: updated, Cause: err}
	}

	return updated, interview, nil
}

// publishInvite enqueues the outbound invite email. Broker trouble is logged
// and tolerated; the scheduling result never depends on it.
func (s *ApplicationService) publishInvite(ctx context.Context, app *domain.Application, interview *domain.Interview) {
	if s.publisher == nil {
		return
	}

	msg := queue.OutboundMessage{
		Kind:          queue.KindInvite,
		InterviewID:   interview.ID,
		ApplicationID: app.ID,
		Recipient:     app.CandidateID,
	}
	if correlationID, ok := observability.CorrelationIDFromContext(ctx); ok {
		msg.CorrelationID = correlationID
	}

	if err := s.publisher.Publish(ctx, queue.QueueName(queue.KindInvite), msg); err != nil {
		s.logger.Error("failed to publish interview invite",
			zap.String("interviewId", interview.ID),
			zap.Error(err),
		)
	}
}
