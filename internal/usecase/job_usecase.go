package usecase

import (
	"context"

	"go-maids-backend/internal/domain"
	"go-maids-backend/pkg/apperror"
	"go-maids-backend/pkg/logger"
)

type jobUsecase struct {
	jobRepo           domain.JobPostingRepository
	publisher         domain.EventPublisher
	defaultExpiryDays int
}

func NewJobUsecase(jobRepo domain.JobPostingRepository, publisher domain.EventPublisher, defaultExpiryDays int) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:           jobRepo,
		publisher:         publisher,
		defaultExpiryDays: defaultExpiryDays,
	}
}

// CreateJob creates a draft posting owned by the sponsor.
func (u *jobUsecase) CreateJob(ctx context.Context, sponsorID string, params domain.NewJobPostingParams) (*domain.JobPosting, error) {
	params.SponsorID = sponsorID

	job, err := domain.NewJobPosting(params)
	if err != nil {
		return nil, toAppError(err)
	}
	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, toAppError(err)
	}
	u.dispatch(ctx, job.PullEvents())
	return job, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id string) (*domain.JobPosting, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Job posting not found")
	}
	return job, nil
}

func (u *jobUsecase) ListOpenJobs(ctx context.Context, page, pageSize int) ([]domain.JobPostingSnapshot, int64, error) {
	limit, offset := paginate(page, pageSize)
	return u.jobRepo.FetchOpen(ctx, limit, offset)
}

func (u *jobUsecase) ListJobsBySponsor(ctx context.Context, sponsorID string, page, pageSize int) ([]domain.JobPostingSnapshot, int64, error) {
	limit, offset := paginate(page, pageSize)
	return u.jobRepo.FetchBySponsorID(ctx, sponsorID, limit, offset)
}

// UpdateJobDetails applies the provided fields to the sponsor's draft.
func (u *jobUsecase) UpdateJobDetails(ctx context.Context, sponsorID, jobID string, upd domain.JobPostingUpdate) (*domain.JobPosting, error) {
	job, err := u.loadOwnedJob(ctx, sponsorID, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.UpdateDetails(upd); err != nil {
		return nil, toAppError(err)
	}
	if err := u.saveAndDispatch(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (u *jobUsecase) UpdateJobCompensation(ctx context.Context, sponsorID, jobID string, salary *domain.Salary, benefits []string) (*domain.JobPosting, error) {
	job, err := u.loadOwnedJob(ctx, sponsorID, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.UpdateCompensation(salary, benefits); err != nil {
		return nil, toAppError(err)
	}
	if err := u.saveAndDispatch(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// PublishJob takes a complete draft live. The salary floor policy runs
// before the aggregate transition so a sponsor gets the soft diagnostic
// instead of a published underpaying job.
func (u *jobUsecase) PublishJob(ctx context.Context, sponsorID, jobID string, expiryDays int) (*domain.JobPosting, error) {
	job, err := u.loadOwnedJob(ctx, sponsorID, jobID)
	if err != nil {
		return nil, err
	}

	if check := domain.ValidateSalary(job.Salary(), job.Location().Country); !check.Valid {
		return nil, apperror.BadRequest(check.Error)
	}

	if expiryDays <= 0 {
		expiryDays = u.defaultExpiryDays
	}
	if err := job.Publish(expiryDays); err != nil {
		return nil, toAppError(err)
	}
	if err := u.saveAndDispatch(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (u *jobUsecase) CloseJob(ctx context.Context, sponsorID, jobID, reason string) error {
	job, err := u.loadOwnedJob(ctx, sponsorID, jobID)
	if err != nil {
		return err
	}
	if err := job.Close(reason); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, job)
}

func (u *jobUsecase) CancelJob(ctx context.Context, sponsorID, jobID, reason string) error {
	job, err := u.loadOwnedJob(ctx, sponsorID, jobID)
	if err != nil {
		return err
	}
	if err := job.Cancel(reason); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, job)
}

func (u *jobUsecase) MarkJobFilled(ctx context.Context, sponsorID, jobID, maidID, contractID string) error {
	job, err := u.loadOwnedJob(ctx, sponsorID, jobID)
	if err != nil {
		return err
	}
	if err := job.MarkAsFilled(maidID, contractID); err != nil {
		return toAppError(err)
	}
	return u.saveAndDispatch(ctx, job)
}

// RecordJobView bumps the view counter. Views carry no ownership check
// and emit no events.
func (u *jobUsecase) RecordJobView(ctx context.Context, jobID string) error {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return apperror.NotFound("Job posting not found")
	}
	job.RecordView()
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return toAppError(err)
	}
	return nil
}

// loadOwnedJob fetches the posting and verifies the sponsor owns it.
func (u *jobUsecase) loadOwnedJob(ctx context.Context, sponsorID, jobID string) (*domain.JobPosting, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.NotFound("Job posting not found")
	}
	if job.SponsorID() != sponsorID {
		return nil, apperror.Forbidden("You do not own this job posting")
	}
	return job, nil
}

// saveAndDispatch persists the aggregate and then hands its drained
// events to the publisher. State is committed before any event goes
// out; a publish failure is logged, not surfaced, since the state
// change already happened.
func (u *jobUsecase) saveAndDispatch(ctx context.Context, job *domain.JobPosting) error {
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return toAppError(err)
	}
	u.dispatch(ctx, job.PullEvents())
	return nil
}

func (u *jobUsecase) dispatch(ctx context.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	if err := u.publisher.Publish(ctx, events...); err != nil {
		logger.Log.Error("failed to publish domain events", "error", err)
	}
}

func paginate(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return pageSize, (page - 1) * pageSize
}
