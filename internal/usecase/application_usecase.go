package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"go-maids-backend/internal/domain"
	"go-maids-backend/pkg/apperror"
	"go-maids-backend/pkg/logger"
)

type applicationUsecase struct {
	appRepo   domain.JobApplicationRepository
	jobRepo   domain.JobPostingRepository
	maidRepo  domain.MaidProfileRepository
	tx        domain.Transactor
	publisher domain.EventPublisher
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.JobApplicationRepository,
	jobRepo domain.JobPostingRepository,
	maidRepo domain.MaidProfileRepository,
	tx domain.Transactor,
	publisher domain.EventPublisher,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		appRepo:   appRepo,
		jobRepo:   jobRepo,
		maidRepo:  maidRepo,
		tx:        tx,
		publisher: publisher,
	}
}

// Apply lets an eligible maid apply to an open job. The match score is
// computed here, at application time, and frozen on the application.
// Both aggregates change in one request: the application is created and
// the posting's applicant counter moves (possibly auto-closing it), so
// both are saved and both event streams are published.
func (u *applicationUsecase) Apply(ctx context.Context, maidID, jobID string, params domain.ApplyParams) (*domain.JobApplication, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.NotFound("Job posting not found")
	}

	profile, err := u.maidRepo.GetByID(ctx, maidID)
	if err != nil || profile == nil {
		return nil, apperror.Forbidden("Complete your profile before applying")
	}

	exists, err := u.appRepo.Exists(ctx, jobID, maidID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.BadRequest("You have already applied to this job")
	}

	// Soft policy check: every failed rule is reported at once.
	eligibility := domain.CanMaidApplyToJob(*profile, job)
	if !eligibility.CanApply {
		return nil, apperror.BadRequest(strings.Join(eligibility.Errors, "; "))
	}

	app, err := domain.NewJobApplication(domain.NewJobApplicationParams{
		JobID:          jobID,
		MaidID:         maidID,
		SponsorID:      job.SponsorID(),
		CoverLetter:    params.CoverLetter,
		ProposedSalary: params.ProposedSalary,
		AvailableFrom:  params.AvailableFrom,
		MatchScore:     job.MatchScore(*profile),
	})
	if err != nil {
		return nil, toAppError(err)
	}

	if err := job.RecordApplication(); err != nil {
		return nil, toAppError(err)
	}

	// Both writes land or neither does. The version check on the posting
	// resolves the race of two maids applying for the last slot: the
	// loser's conflict rolls the new application row back out with it.
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.appRepo.Create(ctx, app); err != nil {
			return err
		}
		return u.jobRepo.Update(ctx, job)
	})
	if err != nil {
		return nil, toAppError(err)
	}

	u.dispatch(ctx, append(app.PullEvents(), job.PullEvents()...))
	return app, nil
}

// GetMyApplications returns all applications submitted by the maid.
func (u *applicationUsecase) GetMyApplications(ctx context.Context, maidID string) ([]domain.JobApplicationSnapshot, error) {
	return u.appRepo.GetByMaidID(ctx, maidID)
}

// WithdrawApplication lets the applicant pull out of the running.
func (u *applicationUsecase) WithdrawApplication(ctx context.Context, maidID, applicationID, reason string) error {
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return apperror.NotFound("Application not found")
	}
	if err := app.Withdraw(maidID, reason); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, app)
}

// ListByJob returns the job's applications ordered by priority score,
// best first. Ordering is deterministic: one clock reading ranks the
// whole batch, ties fall back to the application id.
func (u *applicationUsecase) ListByJob(ctx context.Context, sponsorID, jobID string) ([]domain.RankedApplication, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.NotFound("Job posting not found")
	}
	if job.SponsorID() != sponsorID {
		return nil, apperror.Forbidden("You do not own this job posting")
	}

	apps, err := u.appRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	ranked := make([]domain.RankedApplication, 0, len(apps))
	for _, app := range apps {
		var profile domain.MaidProfile
		if p, err := u.maidRepo.GetByID(ctx, app.MaidID()); err == nil && p != nil {
			profile = *p
		}
		ranked = append(ranked, domain.RankedApplication{
			Application:   app.Snapshot(),
			PriorityScore: domain.PriorityScore(app, profile, now),
		})
	}

	sort.SliceStable(ranked, func(i, k int) bool {
		if ranked[i].PriorityScore != ranked[k].PriorityScore {
			return ranked[i].PriorityScore > ranked[k].PriorityScore
		}
		return ranked[i].Application.ID < ranked[k].Application.ID
	})
	return ranked, nil
}

// ReviewApplication marks a pending application as reviewed.
func (u *applicationUsecase) ReviewApplication(ctx context.Context, sponsorID, applicationID string) error {
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return apperror.NotFound("Application not found")
	}
	if err := app.MarkAsReviewed(sponsorID); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, app)
}

// ScheduleInterview moves the application to interviewing.
func (u *applicationUsecase) ScheduleInterview(ctx context.Context, sponsorID, applicationID string, date time.Time) error {
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return apperror.NotFound("Application not found")
	}
	if err := app.ScheduleInterview(date, sponsorID); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, app)
}

// CompleteInterview records the interview outcome notes. The aggregate
// carries no ownership check for this one, so it happens here.
func (u *applicationUsecase) CompleteInterview(ctx context.Context, sponsorID, applicationID, notes string) error {
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return apperror.NotFound("Application not found")
	}
	if app.SponsorID() != sponsorID {
		return apperror.Forbidden("Only the job owner can manage this application")
	}
	if err := app.CompleteInterview(notes); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, app)
}

// AcceptApplication settles the application in the maid's favour.
func (u *applicationUsecase) AcceptApplication(ctx context.Context, sponsorID, applicationID, notes string) error {
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return apperror.NotFound("Application not found")
	}
	if err := app.Accept(sponsorID, notes); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, app)
}

// RejectApplication settles the application against the maid.
func (u *applicationUsecase) RejectApplication(ctx context.Context, sponsorID, applicationID, reason string) error {
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return apperror.NotFound("Application not found")
	}
	if err := app.Reject(sponsorID, reason); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, app)
}

func (u *applicationUsecase) saveAndDispatch(ctx context.Context, app *domain.JobApplication) error {
	if err := u.appRepo.Update(ctx, app); err != nil {
		return toAppError(err)
	}
	u.dispatch(ctx, app.PullEvents())
	return nil
}

func (u *applicationUsecase) dispatch(ctx context.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	if err := u.publisher.Publish(ctx, events...); err != nil {
		logger.Log.Error("failed to publish domain events", "error", err)
	}
}
