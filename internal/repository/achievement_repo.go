package repository

import (
	"context"
	"errors"

	"github.com/studyduel/studyduel-backend/internal/model"
	"gorm.io/gorm"
)

type AchievementRepository interface {
	Create(ctx context.Context, achievement *model.Achievement) error
	FindByID(ctx context.Context, id uint) (*model.Achievement, error)
	FindByName(ctx context.Context, name string) (*model.Achievement, error)
	FindAll(ctx context.Context) ([]model.Achievement, error)
	Update(ctx context.Context, achievement *model.Achievement) error
	Delete(ctx context.Context, id uint) error
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, achievement *model.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *achievementRepository) FindByID(ctx context.Context, id uint) (*model.Achievement, error) {
	var achievement model.Achievement
	err := r.db.WithContext(ctx).First(&achievement, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) FindByName(ctx context.Context, name string) (*model.Achievement, error) {
	var achievement model.Achievement
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&achievement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &achievement, nil
}

// FindAll orders by id ascending for stable pagination.
func (r *achievementRepository) FindAll(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).Order("id ASC").Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) Update(ctx context.Context, achievement *model.Achievement) error {
	return r.db.WithContext(ctx).Save(achievement).Error
}

// Delete is a hard delete. Historical awards are facts and are not
// cascaded.
func (r *achievementRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Achievement{}, id).Error
}
