package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devhours/backend/services/subscription-service/models"
)

type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	FindByName(ctx context.Context, name string) (*models.Plan, error)
	FindAll(ctx context.Context) ([]models.Plan, error)
	FirstOrCreate(ctx context.Context, plan *models.Plan) error
}

type gormPlanRepo struct {
	db *gorm.DB
}

func NewGormPlanRepo(db *gorm.DB) PlanRepository {
	return &gormPlanRepo{db: db}
}

func (r *gormPlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormPlanRepo) FindByName(ctx context.Context, name string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormPlanRepo) FindAll(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := r.db.WithContext(ctx).Order("price_per_man_hour asc").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *gormPlanRepo) FirstOrCreate(ctx context.Context, plan *models.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Where("name = ?", plan.Name).
		FirstOrCreate(plan).Error
}
