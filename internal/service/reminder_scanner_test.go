package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/queue"
)

func newTestReminderScanner(
	t *testing.T,
	interviews *fakeInterviewRepo,
	applications *fakeApplicationRepo,
	publisher *fakePublisher,
) *ReminderScanner {
	t.Helper()

	scanner, err := NewReminderScanner(interviews, applications, publisher, time.Minute, 10, nil)
	if err != nil {
		t.Fatalf("NewReminderScanner() error = %v", err)
	}
	scanner.now = func() time.Time { return testNow }
	return scanner
}

func TestReminderScannerClaimsThenPublishes(t *testing.T) {
	t.Parallel()

	claimed := false
	interviews := &fakeInterviewRepo{
		dueForReminderFn: func(ctx context.Context, now time.Time, limit int) ([]domain.Interview, error) {
			return []domain.Interview{*scheduledInterview()}, nil
		},
		claimReminderFn: func(ctx context.Context, id string, at time.Time) error {
			if id != "int-1" {
				t.Fatalf("claimed id = %s, want int-1", id)
			}
			claimed = true
			return nil
		},
	}
	applications := &fakeApplicationRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Application, error) {
			app := shortlistedApp()
			app.Status = domain.StatusScheduledForInterview
			return app, nil
		},
	}

	var published *queue.OutboundMessage
	publisher := &fakePublisher{
		publishFn: func(ctx context.Context, queueName string, msg queue.OutboundMessage) error {
			if !claimed {
				t.Fatal("reminder must be claimed before it is published")
			}
			if queueName != queue.ReminderQueue {
				t.Fatalf("queue = %s, want %s", queueName, queue.ReminderQueue)
			}
			published = &msg
			return nil
		},
	}

	scanner := newTestReminderScanner(t, interviews, applications, publisher)

	if err := scanner.scanDue(context.Background()); err != nil {
		t.Fatalf("scanDue() error = %v", err)
	}

	if published == nil {
		t.Fatal("expected reminder message to be published")
	}
	if published.Kind != queue.KindReminder {
		t.Fatalf("kind = %s, want reminder", published.Kind)
	}
	if published.Recipient != "cand-1" {
		t.Fatalf("recipient = %s, want cand-1", published.Recipient)
	}
	if published.InterviewID != "int-1" {
		t.Fatalf("interviewId = %s, want int-1", published.InterviewID)
	}
}

func TestReminderScannerSkipsAlreadyClaimed(t *testing.T) {
	t.Parallel()

	interviews := &fakeInterviewRepo{
		dueForReminderFn: func(ctx context.Context, now time.Time, limit int) ([]domain.Interview, error) {
			return []domain.Interview{*scheduledInterview()}, nil
		},
		claimReminderFn: func(ctx context.Context, id string, at time.Time) error {
			return domain.ErrNotFound
		},
	}
	applications := &fakeApplicationRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Application, error) {
			return shortlistedApp(), nil
		},
	}
	publisher := &fakePublisher{
		publishFn: func(ctx context.Context, queueName string, msg queue.OutboundMessage) error {
			t.Fatal("no publish may happen for an already-claimed reminder")
			return nil
		},
	}

	scanner := newTestReminderScanner(t, interviews, applications, publisher)

	if err := scanner.scanDue(context.Background()); err != nil {
		t.Fatalf("scanDue() error = %v", err)
	}
}

func TestReminderScannerContinuesPastBrokenApplication(t *testing.T) {
	t.Parallel()

	first := *scheduledInterview()
	second := *scheduledInterview()
	second.ID = "int-2"
	second.ApplicationID = "app-2"

	interviews := &fakeInterviewRepo{
		dueForReminderFn: func(ctx context.Context, now time.Time, limit int) ([]domain.Interview, error) {
			return []domain.Interview{first, second}, nil
		},
	}
	applications := &fakeApplicationRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Application, error) {
			if id == "app-1" {
				return nil, domain.ErrPersistence
			}
			app := shortlistedApp()
			app.ID = id
			app.CandidateID = "cand-2"
			return app, nil
		},
	}

	publishedIDs := []string{}
	publisher := &fakePublisher{
		publishFn: func(ctx context.Context, queueName string, msg queue.OutboundMessage) error {
			publishedIDs = append(publishedIDs, msg.InterviewID)
			return nil
		},
	}

	scanner := newTestReminderScanner(t, interviews, applications, publisher)

	if err := scanner.scanDue(context.Background()); err != nil {
		t.Fatalf("scanDue() error = %v", err)
	}
	if len(publishedIDs) != 1 || publishedIDs[0] != "int-2" {
		t.Fatalf("published = %v, want only int-2", publishedIDs)
	}
}

func TestReminderScannerFetchFailure(t *testing.T) {
	t.Parallel()

	interviews := &fakeInterviewRepo{
		dueForReminderFn: func(ctx context.Context, now time.Time, limit int) ([]domain.Interview, error) {
			return nil, errors.New("db down")
		},
	}

	scanner := newTestReminderScanner(t, interviews, &fakeApplicationRepo{}, &fakePublisher{})

	if err := scanner.scanDue(context.Background()); err == nil {
		t.Fatal("scanDue() expected error when the due query fails")
	}
}

func TestReminderScannerStartStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	interviews := &fakeInterviewRepo{
		dueForReminderFn: func(ctx context.Context, now time.Time, limit int) ([]domain.Interview, error) {
			return nil, nil
		},
	}

	scanner := newTestReminderScanner(t, interviews, &fakeApplicationRepo{}, &fakePublisher{})
	scanner.interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := scanner.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v, want clean shutdown", err)
	}
}
