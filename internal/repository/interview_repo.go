package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"gorm.io/gorm"
)

type InterviewRepository interface {
	Create(ctx context.Context, interview *domain.Interview) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Interview, error)
	ListByApplication(ctx context.Context, applicationID string) ([]domain.Interview, error)
	// DueForReminder returns upcoming interviews whose reminder window has
	// opened and whose reminder has not been claimed yet.
	DueForReminder(ctx context.Context, now time.Time, limit int) ([]domain.Interview, error)
	// ClaimReminder flips reminder_sent_at exactly once; a second claim for
	// the same interview reports ErrNotFound.
	ClaimReminder(ctx context.Context, id string, at time.Time) error
}

type GormInterviewRepo struct {
	db *gorm.DB
}

func NewGormInterviewRepo(db *gorm.DB) *GormInterviewRepo {
	return &GormInterviewRepo{db: db}
}

func (r *GormInterviewRepo) Create(ctx context.Context, interview *domain.Interview) error {
	model := interviewModelFromDomain(interview)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if interview != nil {
		*interview = *interviewModelToDomain(model)
	}
	return nil
}

func (r *GormInterviewRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&InterviewModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (r *GormInterviewRepo) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	var model InterviewModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: interview %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return interviewModelToDomain(&model), nil
}

func (r *GormInterviewRepo) ListByApplication(ctx context.Context, applicationID string) ([]domain.Interview, error) {
	var models []InterviewModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	interviews := make([]domain.Interview, 0, len(models))
	for i := range models {
		interviews = append(interviews, *interviewModelToDomain(&models[i]))
	}
	return interviews, nil
}

func (r *GormInterviewRepo) DueForReminder(ctx context.Context, now time.Time, limit int) ([]domain.Interview, error) {
	var models []InterviewModel
	err := r.db.WithContext(ctx).
		Where(
			"reminder_sent_at IS NULL AND scheduled_at > ? AND scheduled_at - make_interval(hours => reminder_offset_hours) <= ?",
			now, now,
		).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	interviews := make([]domain.Interview, 0, len(models))
	for i := range models {
		interviews = append(interviews, *interviewModelToDomain(&models[i]))
	}
	return interviews, nil
}

func (r *GormInterviewRepo) ClaimReminder(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&InterviewModel{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		Update("reminder_sent_at", at)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: interview %s reminder already claimed or missing", domain.ErrNotFound, id)
	}
	return nil
}
