package domain_test

import (
	"testing"
	"time"

	"go-maids-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingApplication(t *testing.T) *domain.JobApplication {
	t.Helper()
	app, err := domain.NewJobApplication(domain.NewJobApplicationParams{
		JobID:       "job-1",
		MaidID:      "maid-1",
		SponsorID:   "sponsor-1",
		CoverLetter: "I have five years of experience with families in Dubai.",
		MatchScore:  72,
	})
	require.NoError(t, err)
	app.PullEvents()
	return app
}

func TestNewJobApplication(t *testing.T) {
	t.Run("Should start pending and emit a submitted event", func(t *testing.T) {
		app, err := domain.NewJobApplication(domain.NewJobApplicationParams{
			JobID:      "job-1",
			MaidID:     "maid-1",
			SponsorID:  "sponsor-1",
			MatchScore: 90,
		})
		require.NoError(t, err)

		assert.True(t, app.Status().IsPending())
		assert.True(t, app.IsActive())

		events := app.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventApplicationSubmitted, events[0].Type)
		assert.Equal(t, 90, events[0].Payload["matchScore"])
		assert.Empty(t, app.PullEvents())
	})

	t.Run("Should require all three identities", func(t *testing.T) {
		_, err := domain.NewJobApplication(domain.NewJobApplicationParams{JobID: "job-1", MaidID: "maid-1"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should bound the match score", func(t *testing.T) {
		_, err := domain.NewJobApplication(domain.NewJobApplicationParams{
			JobID: "job-1", MaidID: "maid-1", SponsorID: "sponsor-1", MatchScore: 101,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = domain.NewJobApplication(domain.NewJobApplicationParams{
			JobID: "job-1", MaidID: "maid-1", SponsorID: "sponsor-1", MatchScore: -1,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should reject a non-positive proposed salary", func(t *testing.T) {
		zero := decimal.Zero
		_, err := domain.NewJobApplication(domain.NewJobApplicationParams{
			JobID: "job-1", MaidID: "maid-1", SponsorID: "sponsor-1", ProposedSalary: &zero,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestApplicationAuthorizationBeforeStatus(t *testing.T) {
	// A wrong caller gets the authorization error even when the status
	// transition would also be illegal.
	app := pendingApplication(t)
	require.NoError(t, app.MarkAsReviewed("sponsor-1"))

	err := app.MarkAsReviewed("intruder")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	err = app.Accept("intruder", "")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	err = app.Reject("intruder", "no")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestApplicationReviewAndInterview(t *testing.T) {
	t.Run("Should review only pending applications", func(t *testing.T) {
		app := pendingApplication(t)
		require.NoError(t, app.MarkAsReviewed("sponsor-1"))
		assert.True(t, app.Status().IsReviewed())

		assert.ErrorIs(t, app.MarkAsReviewed("sponsor-1"), domain.ErrInvalidTransition)
	})

	t.Run("Should schedule from pending or reviewed", func(t *testing.T) {
		slot := time.Now().Add(48 * time.Hour)

		fromPending := pendingApplication(t)
		require.NoError(t, fromPending.ScheduleInterview(slot, "sponsor-1"))
		assert.True(t, fromPending.Status().IsInterviewing())

		fromReviewed := pendingApplication(t)
		require.NoError(t, fromReviewed.MarkAsReviewed("sponsor-1"))
		require.NoError(t, fromReviewed.ScheduleInterview(slot, "sponsor-1"))
		assert.True(t, fromReviewed.Status().IsInterviewing())

		// Not from interviewing again
		assert.ErrorIs(t, fromReviewed.ScheduleInterview(slot, "sponsor-1"), domain.ErrInvalidTransition)
	})

	t.Run("Should complete only a scheduled interview", func(t *testing.T) {
		app := pendingApplication(t)
		assert.ErrorIs(t, app.CompleteInterview("great fit"), domain.ErrInvalidTransition)

		require.NoError(t, app.ScheduleInterview(time.Now().Add(time.Hour), "sponsor-1"))
		app.PullEvents()

		require.NoError(t, app.CompleteInterview("great fit"))
		// Completion keeps the status; accept or reject settle it.
		assert.True(t, app.Status().IsInterviewing())

		snap := app.Snapshot()
		require.NotNil(t, snap.InterviewCompletedAt)
		require.NotNil(t, snap.SponsorNotes)
		assert.Equal(t, "great fit", *snap.SponsorNotes)

		events := app.PullEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventInterviewCompleted, events[0].Type)
	})
}

func TestApplicationSettlement(t *testing.T) {
	t.Run("Should accept from any active status", func(t *testing.T) {
		app := pendingApplication(t)
		require.NoError(t, app.Accept("sponsor-1", "Start next month"))
		assert.True(t, app.Status().IsAccepted())
		assert.False(t, app.IsActive())
	})

	t.Run("Should not reject after accepting", func(t *testing.T) {
		app := pendingApplication(t)
		require.NoError(t, app.Accept("sponsor-1", ""))
		assert.ErrorIs(t, app.Reject("sponsor-1", "changed my mind"), domain.ErrInvalidTransition)
	})

	t.Run("Should not accept after a withdrawal", func(t *testing.T) {
		app := pendingApplication(t)
		require.NoError(t, app.Withdraw("maid-1", "Found another job"))
		assert.ErrorIs(t, app.Accept("sponsor-1", ""), domain.ErrInvalidTransition)
	})

	t.Run("Should keep rejection and withdrawal reasons apart", func(t *testing.T) {
		app := pendingApplication(t)
		require.NoError(t, app.Reject("sponsor-1", "Not enough experience"))
		// A rejected application can still be withdrawn by the maid.
		require.NoError(t, app.Withdraw("maid-1", "Moving on"))

		snap := app.Snapshot()
		require.NotNil(t, snap.RejectionReason)
		require.NotNil(t, snap.WithdrawalReason)
		assert.Equal(t, "Not enough experience", *snap.RejectionReason)
		assert.Equal(t, "Moving on", *snap.WithdrawalReason)
	})
}

func TestApplicationWithdraw(t *testing.T) {
	t.Run("Should only allow the applicant", func(t *testing.T) {
		app := pendingApplication(t)
		err := app.Withdraw("sponsor-1", "nope")
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Should block withdrawal once accepted", func(t *testing.T) {
		app := pendingApplication(t)
		require.NoError(t, app.Accept("sponsor-1", ""))
		assert.ErrorIs(t, app.Withdraw("maid-1", "changed my mind"), domain.ErrInvalidTransition)
	})

	t.Run("Should not withdraw twice", func(t *testing.T) {
		app := pendingApplication(t)
		require.NoError(t, app.Withdraw("maid-1", ""))
		assert.ErrorIs(t, app.Withdraw("maid-1", "again"), domain.ErrInvalidTransition)
	})
}

func TestApplicationUpdateCoverLetter(t *testing.T) {
	app := pendingApplication(t)
	require.NoError(t, app.UpdateCoverLetter("Revised letter"))

	require.NoError(t, app.MarkAsReviewed("sponsor-1"))
	assert.ErrorIs(t, app.UpdateCoverLetter("too late"), domain.ErrInvalidTransition)
}

func TestApplicationSnapshotRoundTrip(t *testing.T) {
	proposed := decimal.NewFromInt(2200)
	from := time.Now().Add(14 * 24 * time.Hour).Truncate(time.Second)
	app, err := domain.NewJobApplication(domain.NewJobApplicationParams{
		JobID:          "job-1",
		MaidID:         "maid-1",
		SponsorID:      "sponsor-1",
		CoverLetter:    "Hello",
		ProposedSalary: &proposed,
		AvailableFrom:  &from,
		MatchScore:     64,
	})
	require.NoError(t, err)
	require.NoError(t, app.ScheduleInterview(time.Now().Add(time.Hour), "sponsor-1"))

	snap := app.Snapshot()
	restored, err := domain.RehydrateJobApplication(snap)
	require.NoError(t, err)

	assert.Equal(t, app.ID(), restored.ID())
	assert.Equal(t, app.Status(), restored.Status())
	assert.Equal(t, app.MatchScore(), restored.MatchScore())
	assert.Equal(t, app.Version(), restored.Version())

	restoredSnap := restored.Snapshot()
	require.NotNil(t, restoredSnap.ProposedSalary)
	assert.True(t, proposed.Equal(*restoredSnap.ProposedSalary))
	require.NotNil(t, restoredSnap.AvailableFrom)
	assert.True(t, from.Equal(*restoredSnap.AvailableFrom))

	assert.Empty(t, restored.PullEvents(), "rehydration emits no events")
}

func TestRehydrateJobApplicationValidation(t *testing.T) {
	base := pendingApplication(t).Snapshot()

	t.Run("Should reject missing identity", func(t *testing.T) {
		snap := base
		snap.MaidID = ""
		_, err := domain.RehydrateJobApplication(snap)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should reject unknown status", func(t *testing.T) {
		snap := base
		snap.Status = "ghosted"
		_, err := domain.RehydrateJobApplication(snap)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should reject an out-of-range match score", func(t *testing.T) {
		snap := base
		snap.MatchScore = 150
		_, err := domain.RehydrateJobApplication(snap)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
