package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/observability"
	"github.com/talentwire/pipeline-tracker/internal/queue"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultReminderScanInterval = time.Minute
	defaultReminderScanLimit    = 100
)

// ReminderScanner periodically finds interviews whose reminder window has
// opened, claims each reminder exactly once, and enqueues its delivery.
type ReminderScanner struct {
	interviews   repository.InterviewRepository
	applications repository.ApplicationRepository
	publisher    queue.Publisher
	logger       *zap.Logger
	metrics      *observability.Metrics
	interval     time.Duration
	limit        int
	now          func() time.Time
}

func NewReminderScanner(
	interviews repository.InterviewRepository,
	applications repository.ApplicationRepository,
	publisher queue.Publisher,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*ReminderScanner, error) {
	if interviews == nil {
		return nil, fmt.Errorf("interview repository is required")
	}
	if applications == nil {
		return nil, fmt.Errorf("application repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if interval <= 0 {
		interval = defaultReminderScanInterval
	}
	if limit <= 0 {
		limit = defaultReminderScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReminderScanner{
		interviews:   interviews,
		applications: applications,
		publisher:    publisher,
		logger:       logger,
		interval:     interval,
		limit:        limit,
		now:          time.Now,
	}, nil
}

func (s *ReminderScanner) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

func (s *ReminderScanner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so already-due reminders do not wait for the first ticker edge.
	if err := s.scanDue(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("reminder scanner initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scanDue(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("reminder scanner scan failed", zap.Error(err))
			}
		}
	}
}

func (s *ReminderScanner) scanDue(ctx context.Context) error {
	due, err := s.interviews.DueForReminder(ctx, s.now().UTC(), s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch due reminders: %w", err)
	}

	for i := range due {
		interview := due[i]

		app, err := s.applications.GetByID(ctx, interview.ApplicationID)
		if err != nil {
			s.logger.Error("failed to load application for reminder",
				zap.String("interviewId", interview.ID),
				zap.String("applicationId", interview.ApplicationID),
				zap.Error(err),
			)
			continue
		}

		// Claim before publish: a crash between the two loses one reminder,
		// which beats the duplicate a reversed order could produce.
		if err := s.interviews.ClaimReminder(ctx, interview.ID, s.now().UTC()); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Another scanner instance claimed it first.
				continue
			}
			s.logger.Error("failed to claim reminder",
				zap.String("interviewId", interview.ID),
				zap.Error(err),
			)
			continue
		}

		msg := queue.OutboundMessage{
			Kind:          queue.KindReminder,
			InterviewID:   interview.ID,
			ApplicationID: app.ID,
			Recipient:     app.CandidateID,
		}
		if err := s.publisher.Publish(ctx, queue.QueueName(queue.KindReminder), msg); err != nil {
			s.logger.Error("failed to enqueue claimed reminder",
				zap.String("interviewId", interview.ID),
				zap.Error(err),
			)
			continue
		}

		if s.metrics != nil {
			s.metrics.IncReminderScheduled()
		}
		s.logger.Info("reminder enqueued",
			zap.String("interviewId", interview.ID),
			zap.Time("interviewAt", interview.ScheduledAt),
		)
	}

	return nil
}
