package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/metrics"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
	"github.com/studyduel/studyduel-backend/internal/rule"
	"github.com/studyduel/studyduel-backend/pkg/apperror"
)

// CheckerService orchestrates one user's evaluation: snapshot once,
// evaluate every unearned achievement against it, award what is newly
// satisfied. Both the synchronous event hooks and the batch sweeps go
// through CheckUser, so calling it twice with no intervening activity
// returns an empty list the second time.
type CheckerService interface {
	// CheckUser returns the achievements newly awarded by this call.
	CheckUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error)
	// TriggerCheck is the event-hook entry point; actionType names the
	// activity that fired it and is only used for observability.
	TriggerCheck(ctx context.Context, userID uuid.UUID, actionType string) ([]dto.AchievementResponse, error)
	GetUserAchievements(ctx context.Context, userID uuid.UUID) ([]dto.UserAchievementResponse, error)
	GetUserProgress(ctx context.Context, userID uuid.UUID) (*dto.UserProgressResponse, error)
}

type checkerService struct {
	userRepo        repository.UserRepository
	achievementRepo repository.AchievementRepository
	awardRepo       repository.AwardRepository
	statsService    StatsService
	awardService    AwardService
}

func NewCheckerService(
	userRepo repository.UserRepository,
	achievementRepo repository.AchievementRepository,
	awardRepo repository.AwardRepository,
	statsService StatsService,
	awardService AwardService,
) CheckerService {
	return &checkerService{
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		awardRepo:       awardRepo,
		statsService:    statsService,
		awardService:    awardService,
	}
}

func (s *checkerService) CheckUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error) {
	newlyAwarded, err := s.checkUser(ctx, userID)
	if err != nil {
		metrics.ChecksTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ChecksTotal.WithLabelValues("success").Inc()
	return newlyAwarded, nil
}

func (s *checkerService) checkUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.New(404, "user not found", apperror.ErrNotFound)
	}

	achievements, err := s.achievementRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	earned, err := s.earnedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	// One snapshot, reused across all achievements: N achievements must
	// not cost N rounds of activity reads.
	snapshot, err := s.statsService.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	newlyAwarded := []dto.AchievementResponse{}
	for i := range achievements {
		achievement := &achievements[i]
		if _, ok := earned[achievement.ID]; ok {
			continue
		}

		outcome, ok := s.evaluate(achievement, snapshot)
		if !ok || !outcome.Satisfied {
			continue
		}

		_, created, err := s.awardService.Award(ctx, userID, achievement)
		if err != nil {
			return nil, err
		}
		if created {
			newlyAwarded = append(newlyAwarded, *toAchievementResponse(achievement))
		}
	}

	return newlyAwarded, nil
}

func (s *checkerService) TriggerCheck(ctx context.Context, userID uuid.UUID, actionType string) ([]dto.AchievementResponse, error) {
	log.Printf("checker: achievement check for user %s triggered by %s", userID, actionType)
	return s.CheckUser(ctx, userID)
}

func (s *checkerService) GetUserAchievements(ctx context.Context, userID uuid.UUID) ([]dto.UserAchievementResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.New(404, "user not found", apperror.ErrNotFound)
	}

	awards, err := s.awardRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserAchievementResponse, 0, len(awards))
	for i := range awards {
		responses = append(responses, dto.UserAchievementResponse{
			Achievement: *toAchievementResponse(&awards[i].Achievement),
			DateEarned:  awards[i].DateEarned,
		})
	}
	return responses, nil
}

// GetUserProgress is the read-only progress view over unearned
// achievements. It never awards.
func (s *checkerService) GetUserProgress(ctx context.Context, userID uuid.UUID) (*dto.UserProgressResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.New(404, "user not found", apperror.ErrNotFound)
	}

	achievements, err := s.achievementRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	earned, err := s.earnedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.statsService.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := &dto.UserProgressResponse{
		Entries:     []dto.AchievementProgressResponse{},
		PartialData: snapshot.Partial(),
	}
	for i := range achievements {
		achievement := &achievements[i]
		if _, ok := earned[achievement.ID]; ok {
			continue
		}

		outcome, ok := s.evaluate(achievement, snapshot)
		if !ok {
			continue
		}

		met := outcome.SatisfiedKinds
		if met == nil {
			met = []string{}
		}
		progress.Entries = append(progress.Entries, dto.AchievementProgressResponse{
			AchievementID:   achievement.ID,
			Name:            achievement.Name,
			Description:     achievement.Description,
			Satisfied:       outcome.Satisfied,
			Progress:        outcome.Progress,
			MetRequirements: met,
		})
	}
	return progress, nil
}

func (s *checkerService) earnedSet(ctx context.Context, userID uuid.UUID) (map[uint]struct{}, error) {
	awards, err := s.awardRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[uint]struct{}, len(awards))
	for _, award := range awards {
		earned[award.AchievementID] = struct{}{}
	}
	return earned, nil
}

// evaluate decodes and evaluates one achievement's requirement. A
// malformed or unknown-kind requirement must never fail evaluation for
// the whole user; it is logged and skipped.
func (s *checkerService) evaluate(achievement *model.Achievement, snapshot *dto.StatsSnapshot) (rule.Outcome, bool) {
	expr, err := rule.Decode([]byte(achievement.Requirement))
	if err != nil {
		log.Printf("checker: achievement %d (%s) has malformed requirement: %v", achievement.ID, achievement.Name, err)
		return rule.Outcome{}, false
	}

	outcome := rule.Evaluate(expr, snapshot.Values)
	for _, kind := range outcome.UnknownKinds {
		log.Printf("checker: achievement %d (%s) references unknown kind %q", achievement.ID, achievement.Name, kind)
	}
	return outcome, true
}
