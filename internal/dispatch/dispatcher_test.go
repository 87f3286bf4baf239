package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talentwire/pipeline-tracker/internal/domain"
)

type fakeInbox struct {
	appended []*domain.Notification
	appendFn func(ctx context.Context, n *domain.Notification) error
}

func (f *fakeInbox) Append(ctx context.Context, n *domain.Notification) error {
	if f.appendFn != nil {
		if err := f.appendFn(ctx, n); err != nil {
			return err
		}
	}
	f.appended = append(f.appended, n)
	return nil
}

func testApplication() domain.Application {
	return domain.Application{
		ID:          "app-1",
		JobID:       "job-1",
		CandidateID: "cand-1",
		Status:      domain.StatusShortlisted,
		Version:     2,
	}
}

func TestDispatcherStatusUpdateMapping(t *testing.T) {
	t.Parallel()

	targets := []domain.Status{
		domain.StatusReviewed,
		domain.StatusShortlisted,
		domain.StatusScheduledForInterview,
		domain.StatusInterviewed,
		domain.StatusHired,
		domain.StatusRejected,
	}

	for _, target := range targets {
		target := target
		t.Run(target.String(), func(t *testing.T) {
			t.Parallel()

			inbox := &fakeInbox{}
			d, err := NewDispatcher(inbox, nil, nil)
			if err != nil {
				t.Fatalf("NewDispatcher() error = %v", err)
			}

			event := domain.Event{
				Kind:        domain.EventStatusChanged,
				Application: testApplication(),
				Change:      domain.StatusChange{From: domain.StatusPending, To: target},
				OccurredAt:  time.Now().UTC(),
			}

			if err := d.OnEvent(context.Background(), event); err != nil {
				t.Fatalf("OnEvent() error = %v", err)
			}

			if len(inbox.appended) != 1 {
				t.Fatalf("appended = %d notifications, want exactly 1", len(inbox.appended))
			}

			n := inbox.appended[0]
			if n.Type != domain.NotificationStatusUpdate {
				t.Fatalf("type = %s, want status_update", n.Type)
			}
			if n.Priority != domain.PriorityMedium {
				t.Fatalf("priority = %s, want medium", n.Priority)
			}
			if n.Recipient != "cand-1" {
				t.Fatalf("recipient = %s, want cand-1", n.Recipient)
			}
			if n.Read {
				t.Fatal("new notification should be unread")
			}
			if n.RelatedKind != domain.RelatedApplication || n.RelatedID != "app-1" {
				t.Fatalf("related = %s/%s, want application/app-1", n.RelatedKind, n.RelatedID)
			}
		})
	}
}

func TestDispatcherInterviewScheduledMapping(t *testing.T) {
	t.Parallel()

	inbox := &fakeInbox{}
	d, err := NewDispatcher(inbox, nil, nil)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	interview := &domain.Interview{
		ID:            "int-1",
		ApplicationID: "app-1",
		ScheduledAt:   time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		Type:          domain.InterviewVideo,
		MeetingLink:   "https://meet.example.com/abc",
	}
	event := domain.Event{
		Kind:        domain.EventInterviewScheduled,
		Application: testApplication(),
		Change:      domain.StatusChange{From: domain.StatusShortlisted, To: domain.StatusScheduledForInterview},
		Interview:   interview,
		OccurredAt:  time.Now().UTC(),
	}

	if err := d.OnEvent(context.Background(), event); err != nil {
		t.Fatalf("OnEvent() error = %v", err)
	}

	if len(inbox.appended) != 1 {
		t.Fatalf("appended = %d notifications, want exactly 1", len(inbox.appended))
	}

	n := inbox.appended[0]
	if n.Type != domain.NotificationInterviewScheduled {
		t.Fatalf("type = %s, want interview_scheduled", n.Type)
	}
	if n.Priority != domain.PriorityHigh {
		t.Fatalf("priority = %s, want high", n.Priority)
	}
	if n.RelatedKind != domain.RelatedInterview || n.RelatedID != "int-1" {
		t.Fatalf("related = %s/%s, want interview/int-1", n.RelatedKind, n.RelatedID)
	}
	if n.ActionHint != "view_interview" {
		t.Fatalf("actionHint = %s, want view_interview", n.ActionHint)
	}
}

func TestDispatcherAppendFailurePropagates(t *testing.T) {
	t.Parallel()

	inbox := &fakeInbox{
		appendFn: func(ctx context.Context, n *domain.Notification) error {
			return domain.ErrPersistence
		},
	}
	d, err := NewDispatcher(inbox, nil, nil)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	event := domain.Event{
		Kind:        domain.EventStatusChanged,
		Application: testApplication(),
		Change:      domain.StatusChange{From: domain.StatusPending, To: domain.StatusReviewed},
	}

	if err := d.OnEvent(context.Background(), event); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("OnEvent() error = %v, want ErrPersistence", err)
	}
	if len(inbox.appended) != 0 {
		t.Fatal("failed append should not record a notification")
	}
}

func TestDispatcherRejectsInvalidEvent(t *testing.T) {
	t.Parallel()

	inbox := &fakeInbox{}
	d, err := NewDispatcher(inbox, nil, nil)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	event := domain.Event{
		Kind:        domain.EventInterviewScheduled,
		Application: testApplication(),
		// missing interview
	}

	if err := d.OnEvent(context.Background(), event); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("OnEvent() error = %v, want ErrValidation", err)
	}
	if len(inbox.appended) != 0 {
		t.Fatal("invalid event must not append")
	}
}
