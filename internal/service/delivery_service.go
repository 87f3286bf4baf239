package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/observability"
	"github.com/talentwire/pipeline-tracker/internal/provider"
	"github.com/talentwire/pipeline-tracker/internal/queue"
	"github.com/talentwire/pipeline-tracker/internal/ratelimit"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minWorkerConcurrency = 1

// DeliveryService consumes invite and reminder queues and sends the outbound
// emails through the gateway provider, throttled by the shared rate limiter.
type DeliveryService struct {
	interviews  repository.InterviewRepository
	consumer    queue.Consumer
	provider    provider.Provider
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time
}

func NewDeliveryService(
	interviews repository.InterviewRepository,
	consumer queue.Consumer,
	emailProvider provider.Provider,
	rateLimiter ratelimit.RateLimiter,
	concurrency int,
	logger *zap.Logger,
) (*DeliveryService, error) {
	if interviews == nil {
		return nil, fmt.Errorf("interview repository is required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	if emailProvider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if rateLimiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeliveryService{
		interviews:  interviews,
		consumer:    consumer,
		provider:    emailProvider,
		rateLimiter: rateLimiter,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (s *DeliveryService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start consumes the work queues until context cancellation.
func (s *DeliveryService) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	queueNames := queue.WorkQueueNames()
	if len(queueNames) == 0 {
		return fmt.Errorf("no work queues configured")
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		queueName := queueNames[i%len(queueNames)]
		workerID := i + 1

		g.Go(func() error {
			s.logger.Info("delivery worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queueName),
			)

			err := s.consumer.Consume(groupCtx, queueName, s.processMessage)
			if err != nil {
				s.logger.Error("delivery worker stopped with error",
					zap.Int("workerId", workerID),
					zap.String("queue", queueName),
					zap.Error(err),
				)
				return err
			}

			s.logger.Info("delivery worker stopped",
				zap.Int("workerId", workerID),
				zap.String("queue", queueName),
			)
			return nil
		})
	}

	return g.Wait()
}

// processMessage handles one queued delivery. A returned error dead-letters
// the message; nil acknowledges it.
func (s *DeliveryService) processMessage(ctx context.Context, msg queue.OutboundMessage) error {
	interview, err := s.interviews.GetByID(ctx, msg.InterviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("interview missing for outbound message, skipping",
				zap.String("interviewId", msg.InterviewID),
				zap.String("kind", msg.Kind.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load interview for delivery: %w", err)
	}

	// A reminder for an interview that already happened is worthless; ack it.
	if msg.Kind == queue.KindReminder && !interview.ScheduledAt.After(s.now().UTC()) {
		s.logger.Info("reminder arrived after interview start, skipping",
			zap.String("interviewId", interview.ID),
		)
		return nil
	}

	kindName := msg.Kind.String()
	if s.metrics != nil {
		s.metrics.IncWorkerInFlight(kindName)
		defer s.metrics.DecWorkerInFlight(kindName)
	}

	if err := s.rateLimiter.Wait(ctx, kindName); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	email := buildOutboundEmail(msg, interview)
	sendStart := s.now()
	resp, sendErr := s.provider.Send(ctx, email)
	if s.metrics != nil {
		s.metrics.ObserveOutboundSendDuration(kindName, s.now().Sub(sendStart))
	}

	if sendErr != nil {
		reason := "permanent_error"
		if provider.IsTransient(sendErr) {
			reason = "transient_error"
		}
		if s.metrics != nil {
			s.metrics.IncOutboundFailed(kindName, reason)
		}
		s.logger.Error("outbound send failed",
			zap.String("interviewId", interview.ID),
			zap.String("kind", kindName),
			zap.String("reason", reason),
			zap.Error(sendErr),
		)
		return fmt.Errorf("failed to send %s email: %w", kindName, sendErr)
	}

	if s.metrics != nil {
		s.metrics.IncOutboundSent(kindName)
	}

	gatewayMessageID := ""
	if resp != nil {
		gatewayMessageID = resp.MessageID
	}
	logger := observability.WithContextLogger(s.logger, ctx)
	logger.Info("outbound email sent",
		zap.String("interviewId", interview.ID),
		zap.String("kind", kindName),
		zap.String("recipient", msg.Recipient),
		zap.String("gatewayMessageId", gatewayMessageID),
	)
	return nil
}

func buildOutboundEmail(msg queue.OutboundMessage, interview *domain.Interview) provider.OutboundEmail {
	when := interview.ScheduledAt.Format("Monday, 2 January 2006 at 15:04 MST")

	var subject, body string
	switch msg.Kind {
	case queue.KindReminder:
		subject = "Reminder: upcoming interview"
		body = fmt.Sprintf("This is a reminder that your %s interview takes place on %s.", interview.Type, when)
	default:
		subject = "Interview invitation"
		body = fmt.Sprintf("You are invited to a %s interview on %s. Duration: %d minutes.",
			interview.Type, when, interview.DurationMinutes)
	}

	switch interview.Type {
	case domain.InterviewInPerson:
		if interview.Location != "" {
			body += fmt.Sprintf(" Location: %s.", interview.Location)
		}
	case domain.InterviewVideo:
		if interview.MeetingLink != "" {
			body += fmt.Sprintf(" Join at: %s.", interview.MeetingLink)
		}
	}

	return provider.OutboundEmail{
		To:      msg.Recipient,
		Subject: subject,
		Body:    body,
		Kind:    msg.Kind.String(),
	}
}
