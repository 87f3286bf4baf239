package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentwire/pipeline-tracker/internal/domain"
	"gorm.io/gorm"
)

type ApplicationListParams struct {
	Status      *domain.Status
	CandidateID *string
	JobID       *string
	Page        int
	PageSize    int
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	// UpdateStatus performs the conditional write of the optimistic-concurrency
	// protocol: the row must still carry the status and version read by the
	// caller, otherwise ErrConcurrentModification is returned.
	UpdateStatus(ctx context.Context, id string, change domain.StatusChange, version int64) (*domain.Application, error)
	List(ctx context.Context, params ApplicationListParams) ([]domain.Application, int64, error)
}

type GormApplicationRepo struct {
	db *gorm.DB
}

func NewGormApplicationRepo(db *gorm.DB) *GormApplicationRepo {
	return &GormApplicationRepo{db: db}
}

func (r *GormApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	model := applicationModelFromDomain(app)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if app != nil {
		*app = *applicationModelToDomain(model)
	}
	return nil
}

func (r *GormApplicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	var model ApplicationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: application %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return applicationModelToDomain(&model), nil
}

func (r *GormApplicationRepo) UpdateStatus(ctx context.Context, id string, change domain.StatusChange, version int64) (*domain.Application, error) {
	result := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Where("id = ? AND status = ? AND version = ?", id, change.From, version).
		Updates(map[string]any{
			"status":  change.To,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, result.Error)
	}

	if result.RowsAffected == 0 {
		// Row exists but status/version moved on, or the row is gone.
		var count int64
		if err := r.db.WithContext(ctx).Model(&ApplicationModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: application %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: application %s changed since read", domain.ErrConcurrentModification, id)
	}

	return r.GetByID(ctx, id)
}

func (r *GormApplicationRepo) List(ctx context.Context, params ApplicationListParams) ([]domain.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&ApplicationModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CandidateID != nil {
		query = query.Where("candidate_id = ?", *params.CandidateID)
	}
	if params.JobID != nil {
		query = query.Where("job_id = ?", *params.JobID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []ApplicationModel
	err := query.
		Order("applied_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	applications := make([]domain.Application, 0, len(models))
	for i := range models {
		applications = append(applications, *applicationModelToDomain(&models[i]))
	}

	return applications, total, nil
}
