package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyduel/studyduel-backend/internal/model"
)

func TestAwardIsIdempotent(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	leaderboard := &fakeLeaderboardService{}
	notifications := &fakeNotificationService{}
	svc := NewAwardService(awardRepo, leaderboard, notifications)

	userID := uuid.New()
	achievement := &model.Achievement{ID: 1, Name: "Duelist"}

	first, created, err := svc.Award(context.Background(), userID, achievement)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first)

	second, created, err := svc.Award(context.Background(), userID, achievement)
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, second)

	// Same stored row both times, including the original earn date.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.DateEarned, second.DateEarned)

	// Side effects fired only for the creating call.
	assert.Equal(t, 1, leaderboard.recorded)
	assert.Len(t, notifications.created, 1)
}

func TestAwardConcurrentCallsCreateOneRow(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	svc := NewAwardService(awardRepo, &fakeLeaderboardService{}, &fakeNotificationService{})

	userID := uuid.New()
	achievement := &model.Achievement{ID: 1, Name: "Duelist"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := svc.Award(context.Background(), userID, achievement)
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	awards, err := awardRepo.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, awards, 1)
}

func TestAwardSurvivesNotificationFailure(t *testing.T) {
	awardRepo := newFakeAwardRepo()
	notifications := &fakeNotificationService{err: errors.New("redis down")}
	svc := NewAwardService(awardRepo, &fakeLeaderboardService{}, notifications)

	userID := uuid.New()
	_, created, err := svc.Award(context.Background(), userID, &model.Achievement{ID: 1, Name: "Duelist"})
	require.NoError(t, err)
	assert.True(t, created)

	award, err := awardRepo.FindByUserAndAchievement(context.Background(), userID, 1)
	require.NoError(t, err)
	assert.NotNil(t, award)
}

func TestAwardNotificationNamesTheAchievement(t *testing.T) {
	notifications := &fakeNotificationService{}
	svc := NewAwardService(newFakeAwardRepo(), &fakeLeaderboardService{}, notifications)

	userID := uuid.New()
	_, _, err := svc.Award(context.Background(), userID, &model.Achievement{ID: 7, Name: "Scholar"})
	require.NoError(t, err)

	require.Len(t, notifications.created, 1)
	notification := notifications.created[0]
	assert.Equal(t, userID, notification.UserID)
	assert.Equal(t, "achievement", notification.EntityType)
	assert.Equal(t, "achievement_earned", notification.Type)
	assert.Equal(t, "7", notification.EntityID)
	assert.Contains(t, notification.Message, "Scholar")
}
