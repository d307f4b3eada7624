package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/metrics"
	"github.com/studyduel/studyduel-backend/internal/repository"
)

const DefaultBatchConcurrency = 8

// BatchService fans the checker out across many users with bounded
// concurrency. Each user's evaluation is isolated: one user's error (or
// panic) is recorded in that user's outcome and never aborts the batch.
// Cancelling the context stops dispatching new users; already-dispatched
// evaluations run to completion and the partial summary is returned.
type BatchService interface {
	CheckMany(ctx context.Context, userIDs []uuid.UUID) *dto.BatchRunResult
	// CheckAll sweeps the first limit users in stable order
	// (created_at ascending). Intended for periodic maintenance, not
	// real-time triggers.
	CheckAll(ctx context.Context, limit int) (*dto.BatchRunResult, error)
}

type batchService struct {
	checkerService CheckerService
	userRepo       repository.UserRepository
	concurrency    int
}

func NewBatchService(checkerService CheckerService, userRepo repository.UserRepository, concurrency int) BatchService {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &batchService{
		checkerService: checkerService,
		userRepo:       userRepo,
		concurrency:    concurrency,
	}
}

func (s *batchService) CheckMany(ctx context.Context, userIDs []uuid.UUID) *dto.BatchRunResult {
	metrics.BatchRunsTotal.Inc()

	result := &dto.BatchRunResult{
		CorrelationID: uuid.New(),
		Outcomes:      []dto.UserCheckOutcome{},
	}
	if len(userIDs) == 0 {
		return result
	}

	workers := s.concurrency
	if workers > len(userIDs) {
		workers = len(userIDs)
	}

	jobs := make(chan uuid.UUID)
	outcomes := make(chan dto.UserCheckOutcome, len(userIDs))

	// Cancellation only stops dispatch. Workers get a detached context
	// so an already-dispatched user's evaluation runs to completion
	// instead of aborting mid-check with context.Canceled.
	workCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				outcomes <- s.checkOne(workCtx, userID)
			}
		}()
	}

dispatch:
	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			log.Printf("batch %s: cancelled after dispatching partial work: %v", result.CorrelationID, ctx.Err())
			break dispatch
		case jobs <- userID:
		}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	for outcome := range outcomes {
		result.Outcomes = append(result.Outcomes, outcome)
	}
	result.Summary = summarize(result.Outcomes)

	log.Printf("batch %s: %d users, %d ok, %d failed, %d new awards",
		result.CorrelationID, result.Summary.TotalUsers, result.Summary.SuccessfulChecks,
		result.Summary.FailedChecks, result.Summary.TotalNewAchievements)
	return result
}

func (s *batchService) CheckAll(ctx context.Context, limit int) (*dto.BatchRunResult, error) {
	userIDs, err := s.userRepo.ListIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.CheckMany(ctx, userIDs), nil
}

// checkOne is the per-user isolation boundary: errors and panics become
// a failed outcome for that user alone.
func (s *batchService) checkOne(ctx context.Context, userID uuid.UUID) (outcome dto.UserCheckOutcome) {
	outcome = dto.UserCheckOutcome{UserID: userID}

	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.NewAchievements = 0
			outcome.Error = fmt.Sprintf("panic: %v", r)
			metrics.BatchOutcomesTotal.WithLabelValues("failure").Inc()
			log.Printf("batch: check for user %s panicked: %v", userID, r)
		}
	}()

	newlyAwarded, err := s.checkerService.CheckUser(ctx, userID)
	if err != nil {
		outcome.Error = err.Error()
		metrics.BatchOutcomesTotal.WithLabelValues("failure").Inc()
		return outcome
	}

	outcome.Success = true
	outcome.NewAchievements = len(newlyAwarded)
	metrics.BatchOutcomesTotal.WithLabelValues("success").Inc()
	return outcome
}

func summarize(outcomes []dto.UserCheckOutcome) dto.BatchSummary {
	summary := dto.BatchSummary{TotalUsers: len(outcomes)}
	for _, outcome := range outcomes {
		if outcome.Success {
			summary.SuccessfulChecks++
			summary.TotalNewAchievements += outcome.NewAchievements
		} else {
			summary.FailedChecks++
		}
	}
	return summary
}
