package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository reads and writes the raw activity sources the
// stats aggregator consumes: duel outcomes, study sessions, course
// completions, friendships and moderation reports.
type ActivityRepository interface {
	RecordDuelResult(ctx context.Context, result *model.DuelResult) error
	CountDuelsByOutcome(ctx context.Context, userID uuid.UUID, outcome string) (int64, error)
	CountDuels(ctx context.Context, userID uuid.UUID) (int64, error)

	RecordStudySession(ctx context.Context, session *model.StudySession) error
	SumStudyMinutes(ctx context.Context, userID uuid.UUID) (int64, error)
	CountStudySessions(ctx context.Context, userID uuid.UUID) (int64, error)
	// StudyDays returns the distinct days (UTC, truncated to midnight)
	// with at least one study session since the given time, newest first.
	StudyDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error)

	RecordCourseCompletion(ctx context.Context, completion *model.CourseCompletion) error
	CountCourseCompletions(ctx context.Context, userID uuid.UUID) (int64, error)

	CreateFriendship(ctx context.Context, friendship *model.Friendship) error
	CountFriends(ctx context.Context, userID uuid.UUID) (int64, error)

	RecordReport(ctx context.Context, report *model.Report) error
	CountReportsFiled(ctx context.Context, userID uuid.UUID) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) RecordDuelResult(ctx context.Context, result *model.DuelResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *activityRepository) CountDuelsByOutcome(ctx context.Context, userID uuid.UUID, outcome string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DuelResult{}).
		Where("user_id = ? AND outcome = ?", userID, outcome).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) CountDuels(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DuelResult{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) RecordStudySession(ctx context.Context, session *model.StudySession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *activityRepository) SumStudyMinutes(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Scan(&total).Error
	return total, err
}

func (r *activityRepository) CountStudySessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) StudyDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	var days []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Where("user_id = ? AND started_at >= ?", userID, since).
		Distinct("date_trunc('day', started_at)").
		Order("date_trunc('day', started_at) DESC").
		Pluck("date_trunc('day', started_at)", &days).Error
	return days, err
}

// RecordCourseCompletion tolerates repeats: completing the same course
// twice keeps the first completion.
func (r *activityRepository) RecordCourseCompletion(ctx context.Context, completion *model.CourseCompletion) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(completion).Error
}

func (r *activityRepository) CountCourseCompletions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CourseCompletion{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) CreateFriendship(ctx context.Context, friendship *model.Friendship) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
		DoNothing: true,
	}).Create(friendship).Error
}

func (r *activityRepository) CountFriends(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, model.FriendshipAccepted).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) RecordReport(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *activityRepository) CountReportsFiled(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("reporter_id = ?", userID).
		Count(&count).Error
	return count, err
}
