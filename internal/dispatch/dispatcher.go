package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talentwire/pipeline-tracker/internal/domain"
	"go.uber.org/zap"
)

// InboxAppender is the slice of the notification store the dispatcher needs.
type InboxAppender interface {
	Append(ctx context.Context, n *domain.Notification) error
}

// RecipientResolver decides which user receives the notification generated
// for an event. Final addressing (email, phone) stays outside this core.
type RecipientResolver interface {
	Resolve(ctx context.Context, event domain.Event) (string, error)
}

// CandidateResolver routes every notification to the applying candidate.
type CandidateResolver struct{}

func (CandidateResolver) Resolve(_ context.Context, event domain.Event) (string, error) {
	if event.Application.CandidateID == "" {
		return "", fmt.Errorf("%w: application %s has no candidate", domain.ErrValidation, event.Application.ID)
	}
	return event.Application.CandidateID, nil
}

// Dispatcher is the single fan-out point between the state machine and the
// inbox: every committed transition or scheduling action becomes exactly one
// notification append, failed operations never reach it.
type Dispatcher struct {
	inbox      InboxAppender
	recipients RecipientResolver
	logger     *zap.Logger
	now        func() time.Time
}

func NewDispatcher(inbox InboxAppender, recipients RecipientResolver, logger *zap.Logger) (*Dispatcher, error) {
	if inbox == nil {
		return nil, fmt.Errorf("inbox appender is required")
	}
	if recipients == nil {
		recipients = CandidateResolver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		inbox:      inbox,
		recipients: recipients,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// OnEvent translates a domain event into one inbox append. It is synchronous;
// an append failure propagates to the caller, never silently dropped.
func (d *Dispatcher) OnEvent(ctx context.Context, event domain.Event) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := event.Validate(); err != nil {
		return err
	}

	recipient, err := d.recipients.Resolve(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to resolve notification recipient: %w", err)
	}

	notification := buildNotification(event, recipient, d.now().UTC())
	if err := d.inbox.Append(ctx, notification); err != nil {
		return fmt.Errorf("failed to append notification for application %s: %w", event.Application.ID, err)
	}

	d.logger.Debug("notification dispatched",
		zap.String("applicationId", event.Application.ID),
		zap.String("type", notification.Type.String()),
		zap.String("recipient", recipient),
	)
	return nil
}

func buildNotification(event domain.Event, recipient string, now time.Time) *domain.Notification {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		CreatedAt: now,
	}

	switch event.Kind {
	case domain.EventInterviewScheduled:
		n.Type = domain.NotificationInterviewScheduled
		n.Priority = domain.PriorityHigh
		n.Title = "Interview scheduled"
		n.Message = interviewMessage(event.Interview)
		n.RelatedKind = domain.RelatedInterview
		n.RelatedID = event.Interview.ID
		n.ActionHint = "view_interview"
	default:
		n.Type = domain.NotificationStatusUpdate
		n.Priority = domain.PriorityMedium
		n.Title = "Application status updated"
		n.Message = statusMessage(event.Change.To)
		n.RelatedKind = domain.RelatedApplication
		n.RelatedID = event.Application.ID
		n.ActionHint = "view_application"
	}

	return n
}

func interviewMessage(interview *domain.Interview) string {
	when := interview.ScheduledAt.Format("Monday, 2 January 2006 at 15:04 MST")
	switch interview.Type {
	case domain.InterviewInPerson:
		return fmt.Sprintf("Your interview is scheduled for %s at %s.", when, interview.Location)
	case domain.InterviewVideo:
		return fmt.Sprintf("Your video interview is scheduled for %s.", when)
	default:
		return fmt.Sprintf("Your %s interview is scheduled for %s.", interview.Type, when)
	}
}

func statusMessage(to domain.Status) string {
	switch to {
	case domain.StatusReviewed:
		return "Your application has been reviewed."
	case domain.StatusShortlisted:
		return "Good news! You have been shortlisted."
	case domain.StatusScheduledForInterview:
		return "Your application moved to the interview stage."
	case domain.StatusInterviewed:
		return "Thanks for interviewing. Your application is under final review."
	case domain.StatusHired:
		return "Congratulations! You have been hired."
	case domain.StatusRejected:
		return "Your application was not selected this time."
	default:
		return fmt.Sprintf("Your application status changed to %s.", to)
	}
}
