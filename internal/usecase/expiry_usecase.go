package usecase

import (
	"context"
	"time"

	"go-maids-backend/internal/domain"
	"go-maids-backend/pkg/logger"
)

// ExpiryUsecase closes open postings whose expiry window has passed.
// It is driven by the scheduled worker, not by user requests.
type ExpiryUsecase struct {
	jobRepo   domain.JobPostingRepository
	publisher domain.EventPublisher
}

func NewExpiryUsecase(jobRepo domain.JobPostingRepository, publisher domain.EventPublisher) *ExpiryUsecase {
	return &ExpiryUsecase{jobRepo: jobRepo, publisher: publisher}
}

// ExpireDueJobs sweeps all overdue open postings and closes them. One
// failed posting does not stop the sweep; it is logged and the rest
// proceed. Returns how many postings were expired.
func (u *ExpiryUsecase) ExpireDueJobs(ctx context.Context) (int, error) {
	jobs, err := u.jobRepo.FetchExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, job := range jobs {
		if !domain.ShouldAutoExpire(job) {
			continue
		}
		if err := job.Close("Posting expired"); err != nil {
			logger.Log.Error("failed to expire job posting", "job_id", job.ID(), "error", err)
			continue
		}
		if err := u.jobRepo.Update(ctx, job); err != nil {
			logger.Log.Error("failed to persist expired job posting", "job_id", job.ID(), "error", err)
			continue
		}

		events := job.PullEvents()
		events = append(events, domain.NewEvent(domain.EventJobPostingExpired, job.ID(), map[string]any{
			"jobId":     job.ID(),
			"sponsorId": job.SponsorID(),
			"title":     job.Title(),
		}))
		if err := u.publisher.Publish(ctx, events...); err != nil {
			logger.Log.Error("failed to publish expiry events", "job_id", job.ID(), "error", err)
		}
		expired++
	}

	if expired > 0 {
		logger.Log.Info("expiry sweep closed postings", "count", expired)
	}
	return expired, nil
}
