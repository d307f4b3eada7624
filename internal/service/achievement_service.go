package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
	"github.com/studyduel/studyduel-backend/internal/rule"
	"github.com/studyduel/studyduel-backend/pkg/apperror"
)

// AchievementService owns the achievement catalog: read-mostly CRUD
// over definitions. Requirement expressions are validated here, at
// write time, so malformed trees never reach the evaluator.
type AchievementService interface {
	CreateAchievement(ctx context.Context, req dto.CreateAchievementRequest) (*dto.AchievementResponse, error)
	GetAchievement(ctx context.Context, id uint) (*dto.AchievementResponse, error)
	ListAchievements(ctx context.Context) ([]dto.AchievementResponse, error)
	UpdateAchievement(ctx context.Context, id uint, req dto.UpdateAchievementRequest) (*dto.AchievementResponse, error)
	DeleteAchievement(ctx context.Context, id uint) error
}

type achievementService struct {
	repo repository.AchievementRepository
}

func NewAchievementService(repo repository.AchievementRepository) AchievementService {
	return &achievementService{repo: repo}
}

func (s *achievementService) CreateAchievement(ctx context.Context, req dto.CreateAchievementRequest) (*dto.AchievementResponse, error) {
	expr, err := rule.Parse(req.Requirement)
	if err != nil {
		return nil, apperror.New(400, fmt.Sprintf("invalid requirement: %v", err), apperror.ErrInvalidInput)
	}

	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.New(409, fmt.Sprintf("achievement with name %q already exists", req.Name), apperror.ErrAlreadyExists)
	}

	// Store the normalized form, not the client's raw bytes.
	raw, err := json.Marshal(expr)
	if err != nil {
		return nil, err
	}

	achievement := &model.Achievement{
		Name:        req.Name,
		Description: req.Description,
		Requirement: string(raw),
	}
	if err := s.repo.Create(ctx, achievement); err != nil {
		return nil, err
	}

	return toAchievementResponse(achievement), nil
}

func (s *achievementService) GetAchievement(ctx context.Context, id uint) (*dto.AchievementResponse, error) {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if achievement == nil {
		return nil, apperror.New(404, "achievement not found", apperror.ErrNotFound)
	}
	return toAchievementResponse(achievement), nil
}

func (s *achievementService) ListAchievements(ctx context.Context) ([]dto.AchievementResponse, error) {
	achievements, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AchievementResponse, 0, len(achievements))
	for i := range achievements {
		responses = append(responses, *toAchievementResponse(&achievements[i]))
	}
	return responses, nil
}

func (s *achievementService) UpdateAchievement(ctx context.Context, id uint, req dto.UpdateAchievementRequest) (*dto.AchievementResponse, error) {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if achievement == nil {
		return nil, apperror.New(404, "achievement not found", apperror.ErrNotFound)
	}

	if req.Name != nil {
		existing, err := s.repo.FindByName(ctx, *req.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperror.New(409, fmt.Sprintf("achievement with name %q already exists", *req.Name), apperror.ErrAlreadyExists)
		}
		achievement.Name = *req.Name
	}
	if req.Description != nil {
		achievement.Description = *req.Description
	}
	if len(req.Requirement) > 0 {
		expr, err := rule.Parse(req.Requirement)
		if err != nil {
			return nil, apperror.New(400, fmt.Sprintf("invalid requirement: %v", err), apperror.ErrInvalidInput)
		}
		raw, err := json.Marshal(expr)
		if err != nil {
			return nil, err
		}
		achievement.Requirement = string(raw)
	}

	if err := s.repo.Update(ctx, achievement); err != nil {
		return nil, err
	}
	return toAchievementResponse(achievement), nil
}

// DeleteAchievement hard-deletes the definition. Existing awards are
// historical facts and stay untouched.
func (s *achievementService) DeleteAchievement(ctx context.Context, id uint) error {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if achievement == nil {
		return apperror.New(404, "achievement not found", apperror.ErrNotFound)
	}
	return s.repo.Delete(ctx, id)
}

func toAchievementResponse(achievement *model.Achievement) *dto.AchievementResponse {
	resp := &dto.AchievementResponse{
		ID:          achievement.ID,
		Name:        achievement.Name,
		Description: achievement.Description,
		CreatedAt:   achievement.CreatedAt,
	}
	if expr, err := rule.Decode([]byte(achievement.Requirement)); err == nil {
		resp.Requirement = expr
	}
	return resp
}
