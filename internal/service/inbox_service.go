package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"go.uber.org/zap"
)

// InboxService exposes a recipient's notification inbox: listing, read
// marking, and the always-recomputed unread count.
type InboxService struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// InboxPage is one inbox read: the newest notifications plus the unread count
// taken in the same call.
type InboxPage struct {
	Notifications []domain.Notification
	UnreadCount   int64
}

func NewInboxService(notifications repository.NotificationRepository, logger *zap.Logger) (*InboxService, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &InboxService{
		notifications: notifications,
		logger:        logger,
	}, nil
}

func (s *InboxService) List(ctx context.Context, recipient string, limit int) (*InboxPage, error) {
	recipient, err := requireRecipient(recipient)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifications.List(ctx, recipient, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.notifications.UnreadCount(ctx, recipient)
	if err != nil {
		return nil, err
	}

	return &InboxPage{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

func (s *InboxService) UnreadCount(ctx context.Context, recipient string) (int64, error) {
	recipient, err := requireRecipient(recipient)
	if err != nil {
		return 0, err
	}
	return s.notifications.UnreadCount(ctx, recipient)
}

// MarkRead marks one notification as read. Marking an already-read
// notification is an idempotent no-op. In strict mode a missing notification
// is reported as ErrNotFound instead of being silently ignored.
func (s *InboxService) MarkRead(ctx context.Context, recipient, id string, strict bool) error {
	recipient, err := requireRecipient(recipient)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}

	found, err := s.notifications.MarkRead(ctx, recipient, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !found {
		if strict {
			return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
		}
		s.logger.Debug("mark read ignored for unknown notification",
			zap.String("recipient", recipient),
			zap.String("notificationId", id),
		)
	}
	return nil
}

func (s *InboxService) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	recipient, err := requireRecipient(recipient)
	if err != nil {
		return 0, err
	}

	marked, err := s.notifications.MarkAllRead(ctx, recipient)
	if err != nil {
		return 0, err
	}

	if marked > 0 {
		s.logger.Info("inbox marked read",
			zap.String("recipient", recipient),
			zap.Int64("marked", marked),
		)
	}
	return marked, nil
}

func requireRecipient(recipient string) (string, error) {
	trimmed := strings.TrimSpace(recipient)
	if trimmed == "" {
		return "", fmt.Errorf("%w: recipient is required", domain.ErrValidation)
	}
	return trimmed, nil
}
