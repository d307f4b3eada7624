package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/model"
	"github.com/studyduel/studyduel-backend/internal/repository"
)

// In-memory fakes for the repository and service interfaces. Error
// fields, when set, make the corresponding call fail.

func newTestUser() *model.User {
	id := uuid.New()
	return &model.User{ID: id, Username: "user-" + id.String()[:8]}
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*model.User
	listErr error
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []model.User{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) ListIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []uuid.UUID{}
	for id := range r.users {
		if limit > 0 && len(ids) >= limit {
			break
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeAchievementRepo struct {
	mu           sync.Mutex
	achievements []model.Achievement
	nextID       uint
}

func newFakeAchievementRepo(achievements ...model.Achievement) *fakeAchievementRepo {
	repo := &fakeAchievementRepo{nextID: 1}
	for _, achievement := range achievements {
		if achievement.ID == 0 {
			achievement.ID = repo.nextID
		}
		if achievement.ID >= repo.nextID {
			repo.nextID = achievement.ID + 1
		}
		repo.achievements = append(repo.achievements, achievement)
	}
	return repo
}

func (r *fakeAchievementRepo) Create(ctx context.Context, achievement *model.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	achievement.ID = r.nextID
	r.nextID++
	achievement.CreatedAt = time.Now()
	r.achievements = append(r.achievements, *achievement)
	return nil
}

func (r *fakeAchievementRepo) FindByID(ctx context.Context, id uint) (*model.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.achievements {
		if r.achievements[i].ID == id {
			found := r.achievements[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAchievementRepo) FindByName(ctx context.Context, name string) (*model.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.achievements {
		if r.achievements[i].Name == name {
			found := r.achievements[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAchievementRepo) FindAll(ctx context.Context) ([]model.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Achievement{}, r.achievements...), nil
}

func (r *fakeAchievementRepo) Update(ctx context.Context, achievement *model.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.achievements {
		if r.achievements[i].ID == achievement.ID {
			r.achievements[i] = *achievement
			return nil
		}
	}
	return fmt.Errorf("achievement %d not found", achievement.ID)
}

func (r *fakeAchievementRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.achievements {
		if r.achievements[i].ID == id {
			r.achievements = append(r.achievements[:i], r.achievements[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeAwardRepo struct {
	mu     sync.Mutex
	awards map[string]*model.UserAchievement
	nextID uint

	statsRows  []repository.LeaderboardRow
	ledgerRows []repository.LeaderboardRow
	statsErr   error
	ledgerErr  error
	totalsErr  error
	upserts    int
}

func newFakeAwardRepo() *fakeAwardRepo {
	return &fakeAwardRepo{
		awards: make(map[string]*model.UserAchievement),
		nextID: 1,
	}
}

func awardKey(userID uuid.UUID, achievementID uint) string {
	return fmt.Sprintf("%s/%d", userID, achievementID)
}

func (r *fakeAwardRepo) Create(ctx context.Context, award *model.UserAchievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := awardKey(award.UserID, award.AchievementID)
	if _, exists := r.awards[key]; exists {
		return false, nil
	}
	award.ID = r.nextID
	r.nextID++
	award.DateEarned = time.Now()
	stored := *award
	r.awards[key] = &stored
	return true, nil
}

func (r *fakeAwardRepo) FindByUserAndAchievement(ctx context.Context, userID uuid.UUID, achievementID uint) (*model.UserAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if award, ok := r.awards[awardKey(userID, achievementID)]; ok {
		found := *award
		return &found, nil
	}
	return nil, nil
}

func (r *fakeAwardRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	awards := []model.UserAchievement{}
	for _, award := range r.awards {
		if award.UserID == userID {
			awards = append(awards, *award)
		}
	}
	return awards, nil
}

func (r *fakeAwardRepo) UpsertStats(ctx context.Context, userID uuid.UUID, earnedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	return nil
}

func (r *fakeAwardRepo) TopUsersFromStats(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	if r.statsErr != nil {
		return nil, r.statsErr
	}
	return r.statsRows, nil
}

func (r *fakeAwardRepo) TopUsersFromLedger(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	if r.ledgerErr != nil {
		return nil, r.ledgerErr
	}
	return r.ledgerRows, nil
}

func (r *fakeAwardRepo) TotalAwards(ctx context.Context) (int64, error) {
	if r.totalsErr != nil {
		return 0, r.totalsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.awards)), nil
}

func (r *fakeAwardRepo) AwardsSince(ctx context.Context, since time.Time) (int64, error) {
	if r.totalsErr != nil {
		return 0, r.totalsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, award := range r.awards {
		if award.DateEarned.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAwardRepo) CountPerAchievement(ctx context.Context) ([]repository.AchievementCountRow, error) {
	if r.totalsErr != nil {
		return nil, r.totalsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[uint]int64)
	for _, award := range r.awards {
		counts[award.AchievementID]++
	}
	rows := []repository.AchievementCountRow{}
	for id, count := range counts {
		rows = append(rows, repository.AchievementCountRow{AchievementID: id, Count: count})
	}
	return rows, nil
}

// fakeActivityRepo returns fixed counts; sourceErrs fails every call
// belonging to the named source ("duels", "study", ...).
type fakeActivityRepo struct {
	duelsWon      int64
	duelsLost     int64
	duelsPlayed   int64
	studyMinutes  int64
	studySessions int64
	studyDays     []time.Time
	courses       int64
	friends       int64
	reports       int64

	sourceErrs map[string]error
}

func (r *fakeActivityRepo) sourceErr(source string) error {
	if r.sourceErrs == nil {
		return nil
	}
	return r.sourceErrs[source]
}

func (r *fakeActivityRepo) RecordDuelResult(ctx context.Context, result *model.DuelResult) error {
	return r.sourceErr("duels")
}

func (r *fakeActivityRepo) CountDuelsByOutcome(ctx context.Context, userID uuid.UUID, outcome string) (int64, error) {
	if err := r.sourceErr("duels"); err != nil {
		return 0, err
	}
	switch outcome {
	case model.DuelOutcomeWon:
		return r.duelsWon, nil
	case model.DuelOutcomeLost:
		return r.duelsLost, nil
	}
	return 0, nil
}

func (r *fakeActivityRepo) CountDuels(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.sourceErr("duels"); err != nil {
		return 0, err
	}
	return r.duelsPlayed, nil
}

func (r *fakeActivityRepo) RecordStudySession(ctx context.Context, session *model.StudySession) error {
	return r.sourceErr("study")
}

func (r *fakeActivityRepo) SumStudyMinutes(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.sourceErr("study"); err != nil {
		return 0, err
	}
	return r.studyMinutes, nil
}

func (r *fakeActivityRepo) CountStudySessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.sourceErr("study"); err != nil {
		return 0, err
	}
	return r.studySessions, nil
}

func (r *fakeActivityRepo) StudyDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	if err := r.sourceErr("study"); err != nil {
		return nil, err
	}
	return r.studyDays, nil
}

func (r *fakeActivityRepo) RecordCourseCompletion(ctx context.Context, completion *model.CourseCompletion) error {
	return r.sourceErr("courses")
}

func (r *fakeActivityRepo) CountCourseCompletions(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.sourceErr("courses"); err != nil {
		return 0, err
	}
	return r.courses, nil
}

func (r *fakeActivityRepo) CreateFriendship(ctx context.Context, friendship *model.Friendship) error {
	return r.sourceErr("social")
}

func (r *fakeActivityRepo) CountFriends(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.sourceErr("social"); err != nil {
		return 0, err
	}
	return r.friends, nil
}

func (r *fakeActivityRepo) RecordReport(ctx context.Context, report *model.Report) error {
	return r.sourceErr("reports")
}

func (r *fakeActivityRepo) CountReportsFiled(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.sourceErr("reports"); err != nil {
		return 0, err
	}
	return r.reports, nil
}

type fakeNotificationService struct {
	mu      sync.Mutex
	created []*model.Notification
	err     error
}

func (s *fakeNotificationService) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, notification)
	return nil
}

func (s *fakeNotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return nil, nil
}

func (s *fakeNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *fakeNotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeLeaderboardService struct {
	mu       sync.Mutex
	recorded int
}

func (s *fakeLeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	return []dto.LeaderboardEntry{}, nil
}

func (s *fakeLeaderboardService) GetAchievementStats(ctx context.Context) (*dto.AchievementStats, error) {
	return &dto.AchievementStats{}, nil
}

func (s *fakeLeaderboardService) RecordAward(ctx context.Context, userID uuid.UUID, earnedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded++
}

// fakeCheckerService drives batch tests; check decides each user's fate.
type fakeCheckerService struct {
	check func(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error)
}

func (s *fakeCheckerService) CheckUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error) {
	return s.check(ctx, userID)
}

func (s *fakeCheckerService) TriggerCheck(ctx context.Context, userID uuid.UUID, actionType string) ([]dto.AchievementResponse, error) {
	return s.check(ctx, userID)
}

func (s *fakeCheckerService) GetUserAchievements(ctx context.Context, userID uuid.UUID) ([]dto.UserAchievementResponse, error) {
	return nil, nil
}

func (s *fakeCheckerService) GetUserProgress(ctx context.Context, userID uuid.UUID) (*dto.UserProgressResponse, error) {
	return nil, nil
}
