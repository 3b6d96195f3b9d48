package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"go-maids-backend/internal/domain"
	"go-maids-backend/internal/usecase"
	"go-maids-backend/pkg/apperror"
	"go-maids-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

// Mock Repositories

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.JobPosting) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id string) (*domain.JobPosting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPosting), args.Error(1)
}

func (m *MockJobRepo) Update(ctx context.Context, job *domain.JobPosting) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) FetchOpen(ctx context.Context, limit, offset int) ([]domain.JobPostingSnapshot, int64, error) {
	args := m.Called(ctx, limit, offset)
	var snaps []domain.JobPostingSnapshot
	if args.Get(0) != nil {
		snaps = args.Get(0).([]domain.JobPostingSnapshot)
	}
	return snaps, args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) FetchBySponsorID(ctx context.Context, sponsorID string, limit, offset int) ([]domain.JobPostingSnapshot, int64, error) {
	args := m.Called(ctx, sponsorID, limit, offset)
	var snaps []domain.JobPostingSnapshot
	if args.Get(0) != nil {
		snaps = args.Get(0).([]domain.JobPostingSnapshot)
	}
	return snaps, args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) FetchExpired(ctx context.Context, now time.Time) ([]*domain.JobPosting, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JobPosting), args.Error(1)
}

type MockAppRepo struct {
	mock.Mock
}

func (m *MockAppRepo) Create(ctx context.Context, app *domain.JobApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockAppRepo) GetByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobApplication), args.Error(1)
}

func (m *MockAppRepo) Update(ctx context.Context, app *domain.JobApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockAppRepo) GetByJobID(ctx context.Context, jobID string) ([]*domain.JobApplication, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JobApplication), args.Error(1)
}

func (m *MockAppRepo) GetByMaidID(ctx context.Context, maidID string) ([]domain.JobApplicationSnapshot, error) {
	args := m.Called(ctx, maidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobApplicationSnapshot), args.Error(1)
}

func (m *MockAppRepo) Exists(ctx context.Context, jobID, maidID string) (bool, error) {
	args := m.Called(ctx, jobID, maidID)
	return args.Bool(0), args.Error(1)
}

type MockMaidRepo struct {
	mock.Mock
}

func (m *MockMaidRepo) GetByID(ctx context.Context, id string) (*domain.MaidProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaidProfile), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	return m.Called(ctx, events).Error(0)
}

// stubTx runs the callback directly, which is what a committed
// transaction looks like to the usecase.
type stubTx struct{}

func (stubTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// recordingTx remembers what the callback returned so tests can check
// that a failing write aborts the whole batch.
type recordingTx struct {
	runs    int
	lastErr error
}

func (r *recordingTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	r.runs++
	r.lastErr = fn(ctx)
	return r.lastErr
}

// Builders

func openTestJob(t *testing.T) *domain.JobPosting {
	t.Helper()
	salary, err := domain.NewSalary(decimal.NewFromInt(2000), domain.CurrencyAED, domain.PeriodMonthly)
	require.NoError(t, err)
	job, err := domain.NewJobPosting(domain.NewJobPostingParams{
		SponsorID:         "sponsor-1",
		Title:             "Housekeeper",
		Description:       "Housekeeping for a family in Dubai.",
		RequiredSkills:    []string{"Cleaning"},
		RequiredLanguages: []string{"English"},
		Location:          domain.Location{Country: "UAE", City: "Dubai"},
		Salary:            &salary,
		AccommodationType: "private",
	})
	require.NoError(t, err)
	require.NoError(t, job.Publish(0))
	job.PullEvents()
	return job
}

func draftTestJob(t *testing.T) *domain.JobPosting {
	t.Helper()
	job, err := domain.NewJobPosting(domain.NewJobPostingParams{SponsorID: "sponsor-1"})
	require.NoError(t, err)
	job.PullEvents()
	return job
}

func eligibleProfile() *domain.MaidProfile {
	return &domain.MaidProfile{
		ID:                   "maid-1",
		FullName:             "Amina Hassan",
		Nationality:          "Filipino",
		Skills:               []string{"Cleaning"},
		Languages:            []string{"English"},
		CompletionPercentage: 100,
		Verified:             true,
		Active:               true,
	}
}

func appErrorCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create the application and record it on the job", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		appRepo := new(MockAppRepo)
		maidRepo := new(MockMaidRepo)
		pub := new(MockPublisher)

		job := openTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)
		maidRepo.On("GetByID", ctx, "maid-1").Return(eligibleProfile(), nil)
		appRepo.On("Exists", ctx, job.ID(), "maid-1").Return(false, nil)
		appRepo.On("Create", ctx, mock.AnythingOfType("*domain.JobApplication")).Return(nil)
		jobRepo.On("Update", ctx, job).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		uc := usecase.NewApplicationUsecase(appRepo, jobRepo, maidRepo, stubTx{}, pub)
		app, err := uc.Apply(ctx, "maid-1", job.ID(), domain.ApplyParams{CoverLetter: "Hello"})
		require.NoError(t, err)

		assert.True(t, app.Status().IsPending())
		assert.Equal(t, 100, app.MatchScore(), "profile fully matches the job")
		assert.Equal(t, 1, job.ApplicationCount())
		appRepo.AssertExpectations(t)
		jobRepo.AssertExpectations(t)
	})

	t.Run("Should refuse a second application to the same job", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		appRepo := new(MockAppRepo)
		maidRepo := new(MockMaidRepo)

		job := openTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)
		maidRepo.On("GetByID", ctx, "maid-1").Return(eligibleProfile(), nil)
		appRepo.On("Exists", ctx, job.ID(), "maid-1").Return(true, nil)

		uc := usecase.NewApplicationUsecase(appRepo, jobRepo, maidRepo, stubTx{}, new(MockPublisher))
		_, err := uc.Apply(ctx, "maid-1", job.ID(), domain.ApplyParams{})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))
		assert.Contains(t, err.Error(), "already applied")
	})

	t.Run("Should require a maid profile", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		maidRepo := new(MockMaidRepo)

		job := openTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)
		maidRepo.On("GetByID", ctx, "maid-1").Return(nil, fmt.Errorf("%w: maid profile", domain.ErrNotFound))

		uc := usecase.NewApplicationUsecase(new(MockAppRepo), jobRepo, maidRepo, stubTx{}, new(MockPublisher))
		_, err := uc.Apply(ctx, "maid-1", job.ID(), domain.ApplyParams{})
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, appErrorCode(t, err))
		assert.Contains(t, err.Error(), "Complete your profile")
	})

	t.Run("Should report every eligibility failure at once", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		appRepo := new(MockAppRepo)
		maidRepo := new(MockMaidRepo)

		job := openTestJob(t)
		profile := eligibleProfile()
		profile.CompletionPercentage = 30
		profile.Verified = false

		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)
		maidRepo.On("GetByID", ctx, "maid-1").Return(profile, nil)
		appRepo.On("Exists", ctx, job.ID(), "maid-1").Return(false, nil)

		uc := usecase.NewApplicationUsecase(appRepo, jobRepo, maidRepo, stubTx{}, new(MockPublisher))
		_, err := uc.Apply(ctx, "maid-1", job.ID(), domain.ApplyParams{})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))
		assert.Contains(t, err.Error(), "complete before applying")
		assert.Contains(t, err.Error(), "verified before applying")
	})

	t.Run("Should abort the whole apply when the posting update loses the race", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		appRepo := new(MockAppRepo)
		maidRepo := new(MockMaidRepo)
		pub := new(MockPublisher)
		tx := new(recordingTx)

		job := openTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)
		maidRepo.On("GetByID", ctx, "maid-1").Return(eligibleProfile(), nil)
		appRepo.On("Exists", ctx, job.ID(), "maid-1").Return(false, nil)
		appRepo.On("Create", ctx, mock.Anything).Return(nil)
		jobRepo.On("Update", ctx, job).Return(fmt.Errorf("%w: job posting", domain.ErrVersionConflict))

		uc := usecase.NewApplicationUsecase(appRepo, jobRepo, maidRepo, tx, pub)
		_, err := uc.Apply(ctx, "maid-1", job.ID(), domain.ApplyParams{})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, appErrorCode(t, err))

		// The insert and the counter update share one transaction, so the
		// conflict rolls the application row back and a retry can succeed.
		assert.Equal(t, 1, tx.runs)
		assert.ErrorIs(t, tx.lastErr, domain.ErrVersionConflict)
		appRepo.AssertCalled(t, "Create", ctx, mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestListByJob(t *testing.T) {
	ctx := context.Background()

	t.Run("Should refuse another sponsor's posting", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		job := openTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)

		uc := usecase.NewApplicationUsecase(new(MockAppRepo), jobRepo, new(MockMaidRepo), stubTx{}, new(MockPublisher))
		_, err := uc.ListByJob(ctx, "someone-else", job.ID())
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, appErrorCode(t, err))
	})

	t.Run("Should rank better matches first", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		appRepo := new(MockAppRepo)
		maidRepo := new(MockMaidRepo)

		job := openTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)

		newApp := func(maidID string, score int) *domain.JobApplication {
			app, err := domain.NewJobApplication(domain.NewJobApplicationParams{
				JobID: job.ID(), MaidID: maidID, SponsorID: "sponsor-1", MatchScore: score,
			})
			require.NoError(t, err)
			return app
		}
		weak := newApp("maid-weak", 20)
		strong := newApp("maid-strong", 95)

		appRepo.On("GetByJobID", ctx, job.ID()).Return([]*domain.JobApplication{weak, strong}, nil)
		maidRepo.On("GetByID", ctx, "maid-weak").Return(&domain.MaidProfile{ID: "maid-weak"}, nil)
		maidRepo.On("GetByID", ctx, "maid-strong").Return(eligibleProfile(), nil)

		uc := usecase.NewApplicationUsecase(appRepo, jobRepo, maidRepo, stubTx{}, new(MockPublisher))
		ranked, err := uc.ListByJob(ctx, "sponsor-1", job.ID())
		require.NoError(t, err)

		require.Len(t, ranked, 2)
		assert.Equal(t, "maid-strong", ranked[0].Application.MaidID)
		assert.Greater(t, ranked[0].PriorityScore, ranked[1].PriorityScore)
	})
}

func TestPublishJob(t *testing.T) {
	ctx := context.Background()

	t.Run("Should block salaries under the country floor", func(t *testing.T) {
		jobRepo := new(MockJobRepo)

		salary, err := domain.NewSalary(decimal.NewFromInt(900), domain.CurrencyAED, domain.PeriodMonthly)
		require.NoError(t, err)
		job, err := domain.NewJobPosting(domain.NewJobPostingParams{
			SponsorID:         "sponsor-1",
			Title:             "Housekeeper",
			Description:       "Housekeeping.",
			RequiredSkills:    []string{"Cleaning"},
			RequiredLanguages: []string{"English"},
			Location:          domain.Location{Country: "UAE", City: "Dubai"},
			Salary:            &salary,
			AccommodationType: "private",
		})
		require.NoError(t, err)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)

		uc := usecase.NewJobUsecase(jobRepo, new(MockPublisher), 30)
		_, err = uc.PublishJob(ctx, "sponsor-1", job.ID(), 0)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))
		assert.Contains(t, err.Error(), "below the minimum")
		assert.True(t, job.Status().IsDraft(), "posting must stay a draft")
	})

	t.Run("Should enforce ownership before anything else", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		job := draftTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)

		uc := usecase.NewJobUsecase(jobRepo, new(MockPublisher), 30)
		_, err := uc.PublishJob(ctx, "intruder", job.ID(), 0)
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, appErrorCode(t, err))
	})

	t.Run("Should publish, persist and dispatch", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		pub := new(MockPublisher)

		salary, err := domain.NewSalary(decimal.NewFromInt(2000), domain.CurrencyAED, domain.PeriodMonthly)
		require.NoError(t, err)
		job, err := domain.NewJobPosting(domain.NewJobPostingParams{
			SponsorID:         "sponsor-1",
			Title:             "Housekeeper",
			Description:       "Housekeeping.",
			RequiredSkills:    []string{"Cleaning"},
			RequiredLanguages: []string{"English"},
			Location:          domain.Location{Country: "UAE", City: "Dubai"},
			Salary:            &salary,
			AccommodationType: "private",
		})
		require.NoError(t, err)
		job.PullEvents()

		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)
		jobRepo.On("Update", ctx, job).Return(nil)
		pub.On("Publish", ctx, mock.MatchedBy(func(events []domain.Event) bool {
			return len(events) == 1 && events[0].Type == domain.EventJobPostingPublished
		})).Return(nil)

		uc := usecase.NewJobUsecase(jobRepo, pub, 30)
		published, err := uc.PublishJob(ctx, "sponsor-1", job.ID(), 0)
		require.NoError(t, err)
		assert.True(t, published.Status().IsOpen())
		pub.AssertExpectations(t)
	})

	t.Run("Should not fail the request when publishing events fails", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		pub := new(MockPublisher)

		job := openTestJob(t)
		jobRepo.On("GetByID", ctx, job.ID()).Return(job, nil)
		jobRepo.On("Update", ctx, job).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(errors.New("redis down"))

		uc := usecase.NewJobUsecase(jobRepo, pub, 30)
		err := uc.CloseJob(ctx, "sponsor-1", job.ID(), "done")
		assert.NoError(t, err, "state change already committed")
	})
}

func TestCreateJob(t *testing.T) {
	ctx := context.Background()

	jobRepo := new(MockJobRepo)
	pub := new(MockPublisher)
	jobRepo.On("Create", ctx, mock.AnythingOfType("*domain.JobPosting")).Return(nil)
	pub.On("Publish", ctx, mock.Anything).Return(nil)

	uc := usecase.NewJobUsecase(jobRepo, pub, 30)
	job, err := uc.CreateJob(ctx, "sponsor-1", domain.NewJobPostingParams{Title: "Nanny"})
	require.NoError(t, err)

	assert.Equal(t, "sponsor-1", job.SponsorID(), "sponsor comes from the caller identity")
	assert.True(t, job.Status().IsDraft())
	jobRepo.AssertExpectations(t)
}

func TestExpireDueJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("Should close overdue postings and emit the expired event", func(t *testing.T) {
		jobRepo := new(MockJobRepo)
		pub := new(MockPublisher)

		job := openTestJob(t)
		snap := job.Snapshot()
		past := time.Now().Add(-time.Hour)
		snap.ExpiresAt = &past
		overdue, err := domain.RehydrateJobPosting(snap)
		require.NoError(t, err)

		jobRepo.On("FetchExpired", ctx, mock.AnythingOfType("time.Time")).Return([]*domain.JobPosting{overdue}, nil)
		jobRepo.On("Update", ctx, overdue).Return(nil)
		pub.On("Publish", ctx, mock.MatchedBy(func(events []domain.Event) bool {
			if len(events) != 2 {
				return false
			}
			return events[0].Type == domain.EventJobPostingClosed &&
				events[1].Type == domain.EventJobPostingExpired
		})).Return(nil)

		uc := usecase.NewExpiryUsecase(jobRepo, pub)
		expired, err := uc.ExpireDueJobs(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.True(t, overdue.Status().IsClosed())
		pub.AssertExpectations(t)
	})

	t.Run("Should skip postings that are no longer due", func(t *testing.T) {
		jobRepo := new(MockJobRepo)

		job := openTestJob(t) // expires well in the future
		jobRepo.On("FetchExpired", ctx, mock.AnythingOfType("time.Time")).Return([]*domain.JobPosting{job}, nil)

		uc := usecase.NewExpiryUsecase(jobRepo, new(MockPublisher))
		expired, err := uc.ExpireDueJobs(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, expired)
		jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestWithdrawApplication(t *testing.T) {
	ctx := context.Background()

	appRepo := new(MockAppRepo)
	pub := new(MockPublisher)

	app, err := domain.NewJobApplication(domain.NewJobApplicationParams{
		JobID: "job-1", MaidID: "maid-1", SponsorID: "sponsor-1", MatchScore: 50,
	})
	require.NoError(t, err)
	app.PullEvents()

	appRepo.On("GetByID", ctx, app.ID()).Return(app, nil)
	appRepo.On("Update", ctx, app).Return(nil)
	pub.On("Publish", ctx, mock.Anything).Return(nil)

	uc := usecase.NewApplicationUsecase(appRepo, new(MockJobRepo), new(MockMaidRepo), stubTx{}, pub)

	t.Run("Should refuse a stranger", func(t *testing.T) {
		err := uc.WithdrawApplication(ctx, "stranger", app.ID(), "")
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, appErrorCode(t, err))
	})

	t.Run("Should let the applicant withdraw", func(t *testing.T) {
		require.NoError(t, uc.WithdrawApplication(ctx, "maid-1", app.ID(), "Found another job"))
		assert.True(t, app.Status().IsWithdrawn())
	})
}
