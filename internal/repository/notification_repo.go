package repository

import (
	"context"
	"fmt"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository is the durable per-recipient inbox log. Records are
// append-only except for the read flag, which only moves false→true.
type NotificationRepository interface {
	Append(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, recipient string, limit int) ([]domain.Notification, error)
	// MarkRead reports whether a matching notification existed; marking an
	// already-read notification is a no-op that still reports true.
	MarkRead(ctx context.Context, recipient, id string) (bool, error)
	// MarkAllRead flips every unread notification in one statement, so the
	// unread count can never observe a half-applied bulk read.
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
	// UnreadCount is always recomputed from the stored set, never cached.
	UnreadCount(ctx context.Context, recipient string) (int64, error)
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

func (r *GormNotificationRepo) Append(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("%w: notification is required", domain.ErrValidation)
	}
	if err := n.Validate(); err != nil {
		return err
	}

	model := notificationModelFromDomain(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	*n = *notificationModelToDomain(model)
	return nil
}

func (r *GormNotificationRepo) List(ctx context.Context, recipient string, limit int) ([]domain.Notification, error) {
	if limit < 1 {
		limit = 50
	}

	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	notifications := make([]domain.Notification, 0, len(models))
	for i := range models {
		notifications = append(notifications, *notificationModelToDomain(&models[i]))
	}
	return notifications, nil
}

func (r *GormNotificationRepo) MarkRead(ctx context.Context, recipient, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ? AND recipient = ?", id, recipient).
		Update("read", true)
	if result.Error != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistence, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormNotificationRepo) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("recipient = ? AND read = false", recipient).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormNotificationRepo) UnreadCount(ctx context.Context, recipient string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("recipient = ? AND read = false", recipient).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return count, nil
}
