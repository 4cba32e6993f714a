package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
)

// LoanMaturityJob marks loans whose end date has passed as matured, so
// active-debt queries only ever scan live loans.
type LoanMaturityJob struct {
	loanRepo loan.Repository
	logger   *slog.Logger
	now      func() time.Time
}

func NewLoanMaturityJob(loanRepo loan.Repository, logger *slog.Logger) *LoanMaturityJob {
	if loanRepo == nil || logger == nil {
		panic("LoanMaturityJob dependencies cannot be nil")
	}
	return &LoanMaturityJob{
		loanRepo: loanRepo,
		logger:   logger.With("job", "LoanMaturity"),
		now:      time.Now,
	}
}

func (j *LoanMaturityJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting loan maturity job.")

	maturedLoanIDs, err := j.loanRepo.GetMaturedActiveLoanIDs(ctx, startTime)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to get matured loan IDs, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to get matured loans: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched matured active loan IDs.", slog.Int("count", len(maturedLoanIDs)))

	if len(maturedLoanIDs) == 0 {
		j.logger.InfoContext(ctx, "No loans to mature.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var wg sync.WaitGroup
	var updatedCount, errorCount int32

	for _, loanID := range maturedLoanIDs {
		wg.Add(1)
		go func(currentLoanID int64) {
			defer wg.Done()

			logCtx := j.logger.With(slog.Int64("loanID", currentLoanID))
			if err := j.loanRepo.MarkLoanMatured(ctx, currentLoanID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					logCtx.WarnContext(ctx, "Loan disappeared before it could be matured.", slog.Any("error", err))
				} else {
					logCtx.ErrorContext(ctx, "Failed to mark loan matured", slog.Any("error", err))
					atomic.AddInt32(&errorCount, 1)
				}
				return
			}
			atomic.AddInt32(&updatedCount, 1)
		}(loanID)
	}

	wg.Wait()
	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("loans_found", len(maturedLoanIDs)),
		slog.Int("loans_matured", int(atomic.LoadInt32(&updatedCount))),
		slog.Int("errors_encountered", int(atomic.LoadInt32(&errorCount))),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Loan maturity job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}

	summaryLog.InfoContext(ctx, "Loan maturity job finished successfully.")
	return nil
}
