package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/metrics"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
	"github.com/studyduel/studyduel-backend/internal/rule"
)

// streakLookback bounds the study-day streak query; a streak longer
// than a year is reported as a year.
const streakLookback = 365 * 24 * time.Hour

// StatsService builds the normalized activity snapshot one evaluation
// consumes. Reads are degrade-gracefully: an unreachable source leaves
// its kinds at 0 and flags the snapshot as partial instead of failing
// the whole evaluation.
type StatsService interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (*dto.StatsSnapshot, error)
}

type statsService struct {
	activityRepo repository.ActivityRepository
	now          func() time.Time
}

func NewStatsService(activityRepo repository.ActivityRepository) StatsService {
	return &statsService{
		activityRepo: activityRepo,
		now:          time.Now,
	}
}

func (s *statsService) Snapshot(ctx context.Context, userID uuid.UUID) (*dto.StatsSnapshot, error) {
	snapshot := &dto.StatsSnapshot{
		Values: make(map[string]float64, len(rule.KnownKinds)),
	}
	// Every known kind must be present so the evaluator never
	// special-cases missing keys.
	for _, kind := range rule.KnownKinds {
		snapshot.Values[kind] = 0
	}

	s.collectDuels(ctx, userID, snapshot)
	s.collectStudy(ctx, userID, snapshot)
	s.collectCourses(ctx, userID, snapshot)
	s.collectSocial(ctx, userID, snapshot)
	s.collectReports(ctx, userID, snapshot)

	if snapshot.Partial() {
		metrics.PartialSnapshotsTotal.Inc()
	}
	return snapshot, nil
}

func (s *statsService) collectDuels(ctx context.Context, userID uuid.UUID, snapshot *dto.StatsSnapshot) {
	won, err := s.activityRepo.CountDuelsByOutcome(ctx, userID, model.DuelOutcomeWon)
	if err != nil {
		s.failSource(snapshot, "duels", err)
		return
	}
	lost, err := s.activityRepo.CountDuelsByOutcome(ctx, userID, model.DuelOutcomeLost)
	if err != nil {
		s.failSource(snapshot, "duels", err)
		return
	}
	played, err := s.activityRepo.CountDuels(ctx, userID)
	if err != nil {
		s.failSource(snapshot, "duels", err)
		return
	}
	snapshot.Values[rule.KindDuelsWon] = float64(won)
	snapshot.Values[rule.KindDuelsLost] = float64(lost)
	snapshot.Values[rule.KindDuelsPlayed] = float64(played)
}

func (s *statsService) collectStudy(ctx context.Context, userID uuid.UUID, snapshot *dto.StatsSnapshot) {
	minutes, err := s.activityRepo.SumStudyMinutes(ctx, userID)
	if err != nil {
		s.failSource(snapshot, "study", err)
		return
	}
	sessions, err := s.activityRepo.CountStudySessions(ctx, userID)
	if err != nil {
		s.failSource(snapshot, "study", err)
		return
	}
	days, err := s.activityRepo.StudyDays(ctx, userID, s.now().Add(-streakLookback))
	if err != nil {
		s.failSource(snapshot, "study", err)
		return
	}
	snapshot.Values[rule.KindStudyMinutes] = float64(minutes)
	snapshot.Values[rule.KindStudySessions] = float64(sessions)
	snapshot.Values[rule.KindStudyDayStreak] = float64(s.dayStreak(days))
}

func (s *statsService) collectCourses(ctx context.Context, userID uuid.UUID, snapshot *dto.StatsSnapshot) {
	completed, err := s.activityRepo.CountCourseCompletions(ctx, userID)
	if err != nil {
		s.failSource(snapshot, "courses", err)
		return
	}
	snapshot.Values[rule.KindCoursesCompleted] = float64(completed)
}

func (s *statsService) collectSocial(ctx context.Context, userID uuid.UUID, snapshot *dto.StatsSnapshot) {
	friends, err := s.activityRepo.CountFriends(ctx, userID)
	if err != nil {
		s.failSource(snapshot, "social", err)
		return
	}
	snapshot.Values[rule.KindFriendsCount] = float64(friends)
}

func (s *statsService) collectReports(ctx context.Context, userID uuid.UUID, snapshot *dto.StatsSnapshot) {
	filed, err := s.activityRepo.CountReportsFiled(ctx, userID)
	if err != nil {
		s.failSource(snapshot, "reports", err)
		return
	}
	snapshot.Values[rule.KindReportsFiled] = float64(filed)
}

func (s *statsService) failSource(snapshot *dto.StatsSnapshot, source string, err error) {
	log.Printf("stats: source %s unreachable, defaulting its kinds to 0: %v", source, err)
	for _, existing := range snapshot.FailedSources {
		if existing == source {
			return
		}
	}
	snapshot.FailedSources = append(snapshot.FailedSources, source)
}

// dayStreak counts consecutive study days ending today or yesterday.
// days must be distinct day-truncated timestamps, newest first.
func (s *statsService) dayStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	latest := days[0].UTC().Truncate(24 * time.Hour)

	// A streak is still "current" if the last study day was yesterday.
	if latest.Before(today.Add(-24 * time.Hour)) {
		return 0
	}

	streak := 1
	prev := latest
	for _, day := range days[1:] {
		day = day.UTC().Truncate(24 * time.Hour)
		if day.Equal(prev.Add(-24 * time.Hour)) {
			streak++
			prev = day
			continue
		}
		break
	}
	return streak
}
