package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/metrics"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
)

// AwardService is the award ledger: the single write path for
// user-achievement records. Awarding is idempotent — a duplicate
// attempt resolves to the existing award, never an error — because the
// storage layer enforces uniqueness of (user_id, achievement_id) and
// this service treats the conflict as success.
type AwardService interface {
	// Award records that the user earned the achievement. The returned
	// bool is true only when this call created the award; concurrent or
	// repeated calls for the same pair observe the same stored row and
	// the same date_earned.
	Award(ctx context.Context, userID uuid.UUID, achievement *model.Achievement) (*model.UserAchievement, bool, error)
}

type awardService struct {
	awardRepo           repository.AwardRepository
	leaderboardService  LeaderboardService
	notificationService NotificationService
}

func NewAwardService(awardRepo repository.AwardRepository, leaderboardService LeaderboardService, notificationService NotificationService) AwardService {
	return &awardService{
		awardRepo:           awardRepo,
		leaderboardService:  leaderboardService,
		notificationService: notificationService,
	}
}

func (s *awardService) Award(ctx context.Context, userID uuid.UUID, achievement *model.Achievement) (*model.UserAchievement, bool, error) {
	award := &model.UserAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
	}

	created, err := s.awardRepo.Create(ctx, award)
	if err != nil {
		return nil, false, err
	}

	if !created {
		existing, err := s.awardRepo.FindByUserAndAchievement(ctx, userID, achievement.ID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			// Conflict reported but no row found: only possible if an
			// out-of-band admin deletion raced this call.
			return nil, false, fmt.Errorf("award for user %s achievement %d vanished after conflict", userID, achievement.ID)
		}
		return existing, false, nil
	}

	award.Achievement = *achievement
	metrics.AwardsGrantedTotal.Inc()

	// Everything past the insert is best-effort: a failed summary update
	// or notification must not roll back the award.
	s.leaderboardService.RecordAward(ctx, userID, award.DateEarned)
	s.notify(ctx, userID, achievement)

	return award, true, nil
}

func (s *awardService) notify(ctx context.Context, userID uuid.UUID, achievement *model.Achievement) {
	notification := &model.Notification{
		UserID:     userID,
		EntityID:   strconv.FormatUint(uint64(achievement.ID), 10),
		EntityType: "achievement",
		Type:       "achievement_earned",
		Message:    fmt.Sprintf("You earned the achievement %q!", achievement.Name),
	}
	if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
		log.Printf("award: failed to notify user %s about achievement %d: %v", userID, achievement.ID, err)
	}
}
