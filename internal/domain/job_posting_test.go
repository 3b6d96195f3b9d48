package domain_test

import (
	"testing"
	"time"

	"go-maids-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeJobParams(t *testing.T) domain.NewJobPostingParams {
	t.Helper()
	salary := mustSalary(t, 2000, domain.CurrencyAED, domain.PeriodMonthly)
	return domain.NewJobPostingParams{
		SponsorID:         "sponsor-1",
		Title:             "Live-in housekeeper",
		Description:       "Full-time housekeeping for a family of four in Dubai Marina.",
		RequiredSkills:    []string{"Cooking", "Cleaning"},
		RequiredLanguages: []string{"English"},
		ExperienceYears:   2,
		Location:          domain.Location{Country: "UAE", City: "Dubai"},
		Salary:            &salary,
		AccommodationType: "private",
	}
}

func openJob(t *testing.T, maxApps int) *domain.JobPosting {
	t.Helper()
	params := completeJobParams(t)
	params.MaxApplications = maxApps
	job, err := domain.NewJobPosting(params)
	require.NoError(t, err)
	require.NoError(t, job.Publish(0))
	job.PullEvents()
	return job
}

func strongProfile() domain.MaidProfile {
	return domain.MaidProfile{
		ID:          "maid-1",
		FullName:    "Amina Hassan",
		Nationality: "Filipino",
		Skills:      []string{"Cooking", "Cleaning", "Childcare"},
		Languages:   []string{"English", "Arabic"},
		Experiences: []domain.WorkExperience{
			{Employer: "Family A", Country: "UAE", Months: 24},
		},
		CompletionPercentage: 100,
		Verified:             true,
		Active:               true,
	}
}

func TestNewJobPosting(t *testing.T) {
	t.Run("Should create a draft and emit a created event", func(t *testing.T) {
		job, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)

		assert.True(t, job.Status().IsDraft())
		assert.NotEmpty(t, job.ID())
		assert.Equal(t, domain.DefaultMaxApplications, job.MaxApplications())

		events := job.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventJobPostingCreated, events[0].Type)
		assert.Equal(t, "jobs", events[0].ContextName)

		// Drained exactly once
		assert.Empty(t, job.PullEvents())
	})

	t.Run("Should allow incomplete drafts", func(t *testing.T) {
		job, err := domain.NewJobPosting(domain.NewJobPostingParams{SponsorID: "sponsor-1"})
		require.NoError(t, err)
		assert.False(t, job.IsComplete())
	})

	t.Run("Should require a sponsor", func(t *testing.T) {
		_, err := domain.NewJobPosting(domain.NewJobPostingParams{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should reject negative experience", func(t *testing.T) {
		params := completeJobParams(t)
		params.ExperienceYears = -1
		_, err := domain.NewJobPosting(params)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestJobPostingPublish(t *testing.T) {
	t.Run("Should refuse incomplete drafts", func(t *testing.T) {
		params := completeJobParams(t)
		params.Salary = nil
		job, err := domain.NewJobPosting(params)
		require.NoError(t, err)

		err = job.Publish(0)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.True(t, job.Status().IsDraft())
	})

	t.Run("Should open a complete draft and stamp the posting window", func(t *testing.T) {
		job, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)
		job.PullEvents()

		require.NoError(t, job.Publish(0))

		assert.True(t, job.Status().IsOpen())
		require.NotNil(t, job.PostedAt())
		require.NotNil(t, job.ExpiresAt())
		wantExpiry := job.PostedAt().AddDate(0, 0, domain.DefaultExpiryDays)
		assert.WithinDuration(t, wantExpiry, *job.ExpiresAt(), time.Second)

		events := job.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventJobPostingPublished, events[0].Type)
	})

	t.Run("Should honor a custom expiry window", func(t *testing.T) {
		job, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)

		require.NoError(t, job.Publish(7))
		wantExpiry := job.PostedAt().AddDate(0, 0, 7)
		assert.WithinDuration(t, wantExpiry, *job.ExpiresAt(), time.Second)
	})

	t.Run("Should not publish twice", func(t *testing.T) {
		job := openJob(t, 0)
		assert.ErrorIs(t, job.Publish(0), domain.ErrInvalidTransition)
	})
}

func TestJobPostingUpdateDetails(t *testing.T) {
	t.Run("Should apply only the provided fields", func(t *testing.T) {
		job, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)

		title := "Housekeeper and cook"
		empty := ""
		require.NoError(t, job.UpdateDetails(domain.JobPostingUpdate{
			Title:                &title,
			PreferredNationality: &empty,
		}))

		assert.Equal(t, title, job.Title())
		assert.Empty(t, job.PreferredNationality())
		// Untouched field survives
		assert.Equal(t, []string{"Cooking", "Cleaning"}, job.RequiredSkills())
	})

	t.Run("Should refuse edits after publishing", func(t *testing.T) {
		job := openJob(t, 0)
		title := "New title"
		err := job.UpdateDetails(domain.JobPostingUpdate{Title: &title})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestJobPostingUpdateCompensation(t *testing.T) {
	job, err := domain.NewJobPosting(completeJobParams(t))
	require.NoError(t, err)
	job.PullEvents()

	salary := mustSalary(t, 2500, domain.CurrencyAED, domain.PeriodMonthly)
	require.NoError(t, job.UpdateCompensation(&salary, []string{"Flights home"}))

	assert.True(t, job.Salary().Equal(salary))

	events := job.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventJobCompensationUpdated, events[0].Type)
}

func TestJobPostingRecordApplication(t *testing.T) {
	t.Run("Should auto-close when the cap is reached", func(t *testing.T) {
		job := openJob(t, 2)

		require.NoError(t, job.RecordApplication())
		assert.True(t, job.Status().IsOpen())

		require.NoError(t, job.RecordApplication())
		assert.True(t, job.Status().IsClosed())
		assert.Equal(t, 2, job.ApplicationCount())

		events := job.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventJobPostingClosed, events[0].Type)
		assert.Equal(t, "Maximum applications reached", events[0].Payload["reason"])
	})

	t.Run("Should refuse once closed", func(t *testing.T) {
		job := openJob(t, 1)
		require.NoError(t, job.RecordApplication())
		assert.ErrorIs(t, job.RecordApplication(), domain.ErrInvalidTransition)
	})

	t.Run("Should refuse on drafts", func(t *testing.T) {
		job, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)
		assert.ErrorIs(t, job.RecordApplication(), domain.ErrInvalidTransition)
	})
}

func TestJobPostingRecordView(t *testing.T) {
	job, err := domain.NewJobPosting(completeJobParams(t))
	require.NoError(t, err)
	job.PullEvents()

	job.RecordView()
	job.RecordView()

	assert.Equal(t, 2, job.ViewCount())
	assert.Empty(t, job.PullEvents(), "views emit no events")
}

func TestJobPostingLifecycleTransitions(t *testing.T) {
	t.Run("Should not close twice", func(t *testing.T) {
		job := openJob(t, 0)
		require.NoError(t, job.Close("Found someone elsewhere"))
		assert.ErrorIs(t, job.Close("again"), domain.ErrInvalidTransition)
	})

	t.Run("Should fill only open postings", func(t *testing.T) {
		job := openJob(t, 0)
		require.NoError(t, job.MarkAsFilled("maid-1", "contract-9"))
		assert.True(t, job.Status().IsFilled())

		events := job.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventJobPostingFilled, events[0].Type)
		assert.Equal(t, "contract-9", events[0].Payload["contractId"])

		draft, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)
		assert.ErrorIs(t, draft.MarkAsFilled("maid-1", ""), domain.ErrInvalidTransition)
	})

	t.Run("Should cancel anything except filled postings", func(t *testing.T) {
		draft, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)
		require.NoError(t, draft.Cancel("Changed plans"))
		assert.True(t, draft.Status().IsCancelled())

		filled := openJob(t, 0)
		require.NoError(t, filled.MarkAsFilled("maid-1", ""))
		assert.ErrorIs(t, filled.Cancel("too late"), domain.ErrInvalidTransition)
	})
}

func TestJobPostingMatchScore(t *testing.T) {
	t.Run("Should weight the five dimensions", func(t *testing.T) {
		params := completeJobParams(t)
		params.PreferredNationality = ""
		job, err := domain.NewJobPosting(params)
		require.NoError(t, err)

		// skills 1/2 of 30, languages 1/1 of 25, experience 24mo vs 2y
		// full 20, no nationality preference full 15, completeness 10.
		profile := strongProfile()
		profile.Skills = []string{"Cooking"}
		profile.Languages = []string{"English"}

		assert.Equal(t, 85, job.MatchScore(profile))
	})

	t.Run("Should match case-insensitively", func(t *testing.T) {
		job, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)

		profile := strongProfile()
		profile.Skills = []string{"cooking", "CLEANING"}
		profile.Languages = []string{"english"}

		assert.Equal(t, 100, job.MatchScore(profile))
	})

	t.Run("Should give full credit for empty requirement lists", func(t *testing.T) {
		job, err := domain.NewJobPosting(domain.NewJobPostingParams{SponsorID: "sponsor-1"})
		require.NoError(t, err)

		profile := strongProfile()
		assert.Equal(t, 100, job.MatchScore(profile))
	})

	t.Run("Should penalize a missed nationality preference", func(t *testing.T) {
		params := completeJobParams(t)
		params.PreferredNationality = "Indonesian"
		job, err := domain.NewJobPosting(params)
		require.NoError(t, err)

		profile := strongProfile() // Filipino
		assert.Equal(t, 85, job.MatchScore(profile))
	})
}

func TestJobPostingSnapshotRoundTrip(t *testing.T) {
	job := openJob(t, 10)
	require.NoError(t, job.RecordApplication())
	job.RecordView()

	snap := job.Snapshot()
	restored, err := domain.RehydrateJobPosting(snap)
	require.NoError(t, err)

	assert.Equal(t, job.ID(), restored.ID())
	assert.Equal(t, job.Status(), restored.Status())
	assert.Equal(t, job.ApplicationCount(), restored.ApplicationCount())
	assert.Equal(t, job.ViewCount(), restored.ViewCount())
	assert.Equal(t, job.Version(), restored.Version())
	require.NotNil(t, restored.Salary())
	assert.True(t, job.Salary().Equal(*restored.Salary()))
	assert.Empty(t, restored.PullEvents(), "rehydration emits no events")
}

func TestRehydrateJobPostingValidation(t *testing.T) {
	base := openJob(t, 10).Snapshot()

	t.Run("Should reject missing identity", func(t *testing.T) {
		snap := base
		snap.ID = ""
		_, err := domain.RehydrateJobPosting(snap)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should reject unknown status", func(t *testing.T) {
		snap := base
		snap.Status = "archived"
		_, err := domain.RehydrateJobPosting(snap)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should reject application count above the cap", func(t *testing.T) {
		snap := base
		snap.ApplicationCount = snap.MaxApplications + 1
		_, err := domain.RehydrateJobPosting(snap)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestJobPostingIsComplete(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.NewJobPostingParams)
	}{
		{"missing title", func(p *domain.NewJobPostingParams) { p.Title = "" }},
		{"missing description", func(p *domain.NewJobPostingParams) { p.Description = "" }},
		{"no skills", func(p *domain.NewJobPostingParams) { p.RequiredSkills = nil }},
		{"no languages", func(p *domain.NewJobPostingParams) { p.RequiredLanguages = nil }},
		{"missing city", func(p *domain.NewJobPostingParams) { p.Location.City = "" }},
		{"missing salary", func(p *domain.NewJobPostingParams) { p.Salary = nil }},
		{"missing accommodation", func(p *domain.NewJobPostingParams) { p.AccommodationType = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := completeJobParams(t)
			tc.mutate(&params)
			job, err := domain.NewJobPosting(params)
			require.NoError(t, err)
			assert.False(t, job.IsComplete())
		})
	}

	t.Run("complete", func(t *testing.T) {
		job, err := domain.NewJobPosting(completeJobParams(t))
		require.NoError(t, err)
		assert.True(t, job.IsComplete())
	})
}
