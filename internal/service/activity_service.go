package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
)

// ActivityService records the raw activity the stats aggregator reads,
// then runs the synchronous achievement check hook. A failed check
// never fails the recording: the write is the source of truth and the
// next sweep will catch up.
type ActivityService interface {
	RecordDuelResult(ctx context.Context, userID uuid.UUID, req dto.RecordDuelResultRequest) (*dto.ActivityRecordedResponse, error)
	RecordStudySession(ctx context.Context, userID uuid.UUID, req dto.RecordStudySessionRequest) (*dto.ActivityRecordedResponse, error)
	CompleteCourse(ctx context.Context, userID uuid.UUID, req dto.CompleteCourseRequest) (*dto.ActivityRecordedResponse, error)
	AddFriend(ctx context.Context, userID uuid.UUID, req dto.AddFriendRequest) (*dto.ActivityRecordedResponse, error)
	FileReport(ctx context.Context, userID uuid.UUID, req dto.FileReportRequest) (*dto.ActivityRecordedResponse, error)
}

type activityService struct {
	activityRepo   repository.ActivityRepository
	checkerService CheckerService
}

func NewActivityService(activityRepo repository.ActivityRepository, checkerService CheckerService) ActivityService {
	return &activityService{
		activityRepo:   activityRepo,
		checkerService: checkerService,
	}
}

func (s *activityService) RecordDuelResult(ctx context.Context, userID uuid.UUID, req dto.RecordDuelResultRequest) (*dto.ActivityRecordedResponse, error) {
	result := &model.DuelResult{
		UserID:     userID,
		OpponentID: req.OpponentID,
		Outcome:    req.Outcome,
	}
	if err := s.activityRepo.RecordDuelResult(ctx, result); err != nil {
		return nil, err
	}
	return s.recorded(ctx, userID, "duel_completed", "duel result recorded"), nil
}

func (s *activityService) RecordStudySession(ctx context.Context, userID uuid.UUID, req dto.RecordStudySessionRequest) (*dto.ActivityRecordedResponse, error) {
	startedAt := time.Now()
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	session := &model.StudySession{
		UserID:          userID,
		DurationMinutes: req.DurationMinutes,
		StartedAt:       startedAt,
	}
	if err := s.activityRepo.RecordStudySession(ctx, session); err != nil {
		return nil, err
	}
	return s.recorded(ctx, userID, "study_logged", "study session recorded"), nil
}

func (s *activityService) CompleteCourse(ctx context.Context, userID uuid.UUID, req dto.CompleteCourseRequest) (*dto.ActivityRecordedResponse, error) {
	completion := &model.CourseCompletion{
		UserID:   userID,
		CourseID: req.CourseID,
	}
	if err := s.activityRepo.RecordCourseCompletion(ctx, completion); err != nil {
		return nil, err
	}
	return s.recorded(ctx, userID, "course_completed", "course completion recorded"), nil
}

func (s *activityService) AddFriend(ctx context.Context, userID uuid.UUID, req dto.AddFriendRequest) (*dto.ActivityRecordedResponse, error) {
	friendship := &model.Friendship{
		UserID:   userID,
		FriendID: req.FriendID,
		Status:   model.FriendshipAccepted,
	}
	if err := s.activityRepo.CreateFriendship(ctx, friendship); err != nil {
		return nil, err
	}
	return s.recorded(ctx, userID, "friend_added", "friendship recorded"), nil
}

func (s *activityService) FileReport(ctx context.Context, userID uuid.UUID, req dto.FileReportRequest) (*dto.ActivityRecordedResponse, error) {
	report := &model.Report{
		ReporterID: userID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
	}
	if err := s.activityRepo.RecordReport(ctx, report); err != nil {
		return nil, err
	}
	return s.recorded(ctx, userID, "report_filed", "report recorded"), nil
}

func (s *activityService) recorded(ctx context.Context, userID uuid.UUID, actionType, message string) *dto.ActivityRecordedResponse {
	response := &dto.ActivityRecordedResponse{
		Message:         message,
		NewAchievements: []dto.AchievementResponse{},
	}

	newlyAwarded, err := s.checkerService.TriggerCheck(ctx, userID, actionType)
	if err != nil {
		log.Printf("activity: achievement check after %s failed for user %s: %v", actionType, userID, err)
		return response
	}
	response.NewAchievements = newlyAwarded
	return response
}
