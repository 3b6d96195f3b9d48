package domain

import "fmt"

// JobStatus is the lifecycle state of a job posting.
// Valid status graph:
//
//	draft ──publish──► open ──close/fill/cancel──► {closed, filled, cancelled}
//
// Reaching the application cap closes an open posting automatically.
type JobStatus string

const (
	JobStatusDraft     JobStatus = "draft"
	JobStatusOpen      JobStatus = "open"
	JobStatusClosed    JobStatus = "closed"
	JobStatusFilled    JobStatus = "filled"
	JobStatusCancelled JobStatus = "cancelled"
)

// ParseJobStatus converts a raw string to a JobStatus, failing for
// anything outside the enumeration.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobStatusDraft, JobStatusOpen, JobStatusClosed, JobStatusFilled, JobStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: invalid job status %q", ErrValidation, s)
}

func (s JobStatus) IsDraft() bool     { return s == JobStatusDraft }
func (s JobStatus) IsOpen() bool      { return s == JobStatusOpen }
func (s JobStatus) IsClosed() bool    { return s == JobStatusClosed }
func (s JobStatus) IsFilled() bool    { return s == JobStatusFilled }
func (s JobStatus) IsCancelled() bool { return s == JobStatusCancelled }

// CanEdit reports whether posting details may still change. Only drafts
// are editable.
func (s JobStatus) CanEdit() bool { return s == JobStatusDraft }

// IsAcceptingApplications reports whether new applications are allowed.
func (s JobStatus) IsAcceptingApplications() bool { return s == JobStatusOpen }

// IsActive reports whether the posting is live on the marketplace.
func (s JobStatus) IsActive() bool { return s == JobStatusOpen }

func (s JobStatus) String() string { return string(s) }

// ApplicationStatus is the lifecycle state of a job application.
// Valid status graph:
//
//	pending ──review──► reviewed ──schedule──► interviewing
//	    │                   │                       │
//	    └───────────────────┴───────────────────────┴──► {accepted, rejected, withdrawn}
//
// scheduleInterview is also legal directly from pending.
type ApplicationStatus string

const (
	ApplicationStatusPending      ApplicationStatus = "pending"
	ApplicationStatusReviewed     ApplicationStatus = "reviewed"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusAccepted     ApplicationStatus = "accepted"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"
)

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// failing for anything outside the enumeration.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusInterviewing,
		ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("%w: invalid application status %q", ErrValidation, s)
}

func (s ApplicationStatus) IsPending() bool      { return s == ApplicationStatusPending }
func (s ApplicationStatus) IsReviewed() bool     { return s == ApplicationStatusReviewed }
func (s ApplicationStatus) IsInterviewing() bool { return s == ApplicationStatusInterviewing }
func (s ApplicationStatus) IsAccepted() bool     { return s == ApplicationStatusAccepted }
func (s ApplicationStatus) IsRejected() bool     { return s == ApplicationStatusRejected }
func (s ApplicationStatus) IsWithdrawn() bool    { return s == ApplicationStatusWithdrawn }

// IsFinal reports whether the application reached a terminal state.
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected || s == ApplicationStatusWithdrawn
}

// IsActive is the inverse of IsFinal. Note that accepted applications
// are not active even though acceptance is the successful outcome.
func (s ApplicationStatus) IsActive() bool { return !s.IsFinal() }

func (s ApplicationStatus) String() string { return string(s) }
