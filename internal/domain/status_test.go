package domain_test

import (
	"testing"

	"go-maids-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	for _, raw := range []string{"draft", "open", "closed", "filled", "cancelled"} {
		st, err := domain.ParseJobStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, st.String())
	}

	_, err := domain.ParseJobStatus("archived")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.ParseJobStatus("")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestJobStatusPredicates(t *testing.T) {
	assert.True(t, domain.JobStatusDraft.CanEdit())
	assert.False(t, domain.JobStatusOpen.CanEdit())

	assert.True(t, domain.JobStatusOpen.IsAcceptingApplications())
	assert.False(t, domain.JobStatusDraft.IsAcceptingApplications())
	assert.False(t, domain.JobStatusClosed.IsAcceptingApplications())

	assert.True(t, domain.JobStatusOpen.IsActive())
	assert.False(t, domain.JobStatusFilled.IsActive())
}

func TestParseApplicationStatus(t *testing.T) {
	for _, raw := range []string{"pending", "reviewed", "interviewing", "accepted", "rejected", "withdrawn"} {
		st, err := domain.ParseApplicationStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, st.String())
	}

	_, err := domain.ParseApplicationStatus("shortlisted")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApplicationStatusFinality(t *testing.T) {
	final := []domain.ApplicationStatus{
		domain.ApplicationStatusAccepted,
		domain.ApplicationStatusRejected,
		domain.ApplicationStatusWithdrawn,
	}
	for _, st := range final {
		assert.True(t, st.IsFinal(), "%s should be final", st)
		assert.False(t, st.IsActive(), "%s should not be active", st)
	}

	active := []domain.ApplicationStatus{
		domain.ApplicationStatusPending,
		domain.ApplicationStatusReviewed,
		domain.ApplicationStatusInterviewing,
	}
	for _, st := range active {
		assert.False(t, st.IsFinal(), "%s should not be final", st)
		assert.True(t, st.IsActive(), "%s should be active", st)
	}
}
