package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobApplication is the aggregate root for one maid's application to
// one posting. It holds only the posting's foreign key, never a back
// reference. Every mutating method checks caller identity before it
// checks status, so authorization failures win over transition errors.
type JobApplication struct {
	id                   string
	jobID                string
	maidID               string
	sponsorID            string
	coverLetter          string
	proposedSalary       *decimal.Decimal
	availableFrom        *time.Time
	status               ApplicationStatus
	matchScore           int
	sponsorNotes         string
	rejectionReason      string
	withdrawalReason     string
	interviewScheduledAt *time.Time
	interviewCompletedAt *time.Time
	appliedAt            time.Time
	updatedAt            time.Time
	version              int
	events               []Event
}

// NewJobApplicationParams carries the fields for a fresh application.
// MatchScore is computed by the caller at application time.
type NewJobApplicationParams struct {
	JobID          string
	MaidID         string
	SponsorID      string
	CoverLetter    string
	ProposedSalary *decimal.Decimal
	AvailableFrom  *time.Time
	MatchScore     int
}

// NewJobApplication creates a pending application.
func NewJobApplication(p NewJobApplicationParams) (*JobApplication, error) {
	if p.JobID == "" || p.MaidID == "" || p.SponsorID == "" {
		return nil, fmt.Errorf("%w: job, maid and sponsor ids are required", ErrValidation)
	}
	if p.MatchScore < 0 || p.MatchScore > 100 {
		return nil, fmt.Errorf("%w: match score %d outside [0, 100]", ErrValidation, p.MatchScore)
	}
	if p.ProposedSalary != nil && !p.ProposedSalary.IsPositive() {
		return nil, fmt.Errorf("%w: proposed salary must be positive", ErrValidation)
	}

	now := time.Now()
	app := &JobApplication{
		id:             uuid.NewString(),
		jobID:          p.JobID,
		maidID:         p.MaidID,
		sponsorID:      p.SponsorID,
		coverLetter:    p.CoverLetter,
		proposedSalary: cloneDecimalPtr(p.ProposedSalary),
		availableFrom:  cloneTimePtr(p.AvailableFrom),
		status:         ApplicationStatusPending,
		matchScore:     p.MatchScore,
		appliedAt:      now,
		updatedAt:      now,
	}
	app.record(NewEvent(EventApplicationSubmitted, app.id, map[string]any{
		"jobId":      app.jobID,
		"maidId":     app.maidID,
		"sponsorId":  app.sponsorID,
		"matchScore": app.matchScore,
	}))
	return app, nil
}

// Accessors

func (a *JobApplication) ID() string                { return a.id }
func (a *JobApplication) JobID() string             { return a.jobID }
func (a *JobApplication) MaidID() string            { return a.maidID }
func (a *JobApplication) SponsorID() string         { return a.sponsorID }
func (a *JobApplication) Status() ApplicationStatus { return a.status }
func (a *JobApplication) MatchScore() int           { return a.matchScore }
func (a *JobApplication) AppliedAt() time.Time      { return a.appliedAt }
func (a *JobApplication) UpdatedAt() time.Time      { return a.updatedAt }
func (a *JobApplication) Version() int              { return a.version }

// IsActive reports whether the application is still in play. Accepted
// applications are final and therefore not active.
func (a *JobApplication) IsActive() bool { return a.status.IsActive() }

// UpdateCoverLetter replaces the cover letter while the application is
// still pending.
func (a *JobApplication) UpdateCoverLetter(text string) error {
	if !a.status.IsPending() {
		return fmt.Errorf("%w: cover letter can only change while pending, status is %s", ErrInvalidTransition, a.status)
	}
	a.coverLetter = text
	a.touch()
	a.record(NewEvent(EventApplicationUpdated, a.id, map[string]any{
		"jobId":  a.jobID,
		"maidId": a.maidID,
	}))
	return nil
}

// MarkAsReviewed moves a pending application to reviewed. Sponsor only.
func (a *JobApplication) MarkAsReviewed(sponsorID string) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if !a.status.IsPending() {
		return fmt.Errorf("%w: only pending applications can be reviewed, status is %s", ErrInvalidTransition, a.status)
	}
	a.status = ApplicationStatusReviewed
	a.touch()
	a.record(NewEvent(EventApplicationReviewed, a.id, map[string]any{
		"jobId":  a.jobID,
		"maidId": a.maidID,
	}))
	return nil
}

// ScheduleInterview moves the application to interviewing, legal from
// pending or reviewed. Sponsor only.
func (a *JobApplication) ScheduleInterview(date time.Time, sponsorID string) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if !a.status.IsPending() && !a.status.IsReviewed() {
		return fmt.Errorf("%w: cannot schedule an interview from status %s", ErrInvalidTransition, a.status)
	}
	a.status = ApplicationStatusInterviewing
	a.interviewScheduledAt = &date
	a.touch()
	a.record(NewEvent(EventInterviewScheduled, a.id, map[string]any{
		"jobId":       a.jobID,
		"maidId":      a.maidID,
		"scheduledAt": date,
	}))
	return nil
}

// CompleteInterview records the outcome notes. The status stays
// interviewing; accept or reject settle it.
func (a *JobApplication) CompleteInterview(notes string) error {
	if !a.status.IsInterviewing() {
		return fmt.Errorf("%w: no interview in progress, status is %s", ErrInvalidTransition, a.status)
	}
	now := time.Now()
	a.interviewCompletedAt = &now
	a.sponsorNotes = notes
	a.touch()
	a.record(NewEvent(EventInterviewCompleted, a.id, map[string]any{
		"jobId":  a.jobID,
		"maidId": a.maidID,
	}))
	return nil
}

// Accept settles the application in the maid's favour. Terminal.
func (a *JobApplication) Accept(sponsorID, notes string) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if a.status.IsFinal() {
		return fmt.Errorf("%w: application already processed, status is %s", ErrInvalidTransition, a.status)
	}
	a.status = ApplicationStatusAccepted
	if notes != "" {
		a.sponsorNotes = notes
	}
	a.touch()
	a.record(NewEvent(EventApplicationAccepted, a.id, map[string]any{
		"jobId":  a.jobID,
		"maidId": a.maidID,
	}))
	return nil
}

// Reject settles the application against the maid. Terminal.
func (a *JobApplication) Reject(sponsorID, reason string) error {
	if err := a.authorizeSponsor(sponsorID); err != nil {
		return err
	}
	if a.status.IsFinal() {
		return fmt.Errorf("%w: application already processed, status is %s", ErrInvalidTransition, a.status)
	}
	a.status = ApplicationStatusRejected
	a.rejectionReason = reason
	a.touch()
	a.record(NewEvent(EventApplicationRejected, a.id, map[string]any{
		"jobId":  a.jobID,
		"maidId": a.maidID,
		"reason": reason,
	}))
	return nil
}

// Withdraw lets the applicant pull out. Blocked once accepted.
func (a *JobApplication) Withdraw(maidID, reason string) error {
	if maidID != a.maidID {
		return fmt.Errorf("%w: only the applicant can withdraw this application", ErrNotAuthorized)
	}
	if a.status.IsAccepted() {
		return fmt.Errorf("%w: an accepted application cannot be withdrawn", ErrInvalidTransition)
	}
	if a.status.IsWithdrawn() {
		return fmt.Errorf("%w: application is already withdrawn", ErrInvalidTransition)
	}
	a.status = ApplicationStatusWithdrawn
	a.withdrawalReason = reason
	a.touch()
	a.record(NewEvent(EventApplicationWithdrawn, a.id, map[string]any{
		"jobId":  a.jobID,
		"maidId": a.maidID,
		"reason": reason,
	}))
	return nil
}

// PullEvents drains the event buffer: the accumulated events are
// returned exactly once and the buffer is empty afterwards.
func (a *JobApplication) PullEvents() []Event {
	events := a.events
	a.events = nil
	return events
}

func (a *JobApplication) authorizeSponsor(sponsorID string) error {
	if sponsorID != a.sponsorID {
		return fmt.Errorf("%w: only the job owner can manage this application", ErrNotAuthorized)
	}
	return nil
}

func (a *JobApplication) touch()         { a.updatedAt = time.Now() }
func (a *JobApplication) record(e Event) { a.events = append(a.events, e) }

func cloneDecimalPtr(in *decimal.Decimal) *decimal.Decimal {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

// JobApplicationSnapshot is the persistence and API shape of an
// application. Optional fields marshal as explicit nulls; timestamps
// are RFC 3339.
type JobApplicationSnapshot struct {
	ID                   string           `json:"id"`
	JobID                string           `json:"jobId"`
	MaidID               string           `json:"maidId"`
	SponsorID            string           `json:"sponsorId"`
	CoverLetter          string           `json:"coverLetter"`
	ProposedSalary       *decimal.Decimal `json:"proposedSalary"`
	AvailableFrom        *time.Time       `json:"availableFrom"`
	Status               string           `json:"status"`
	MatchScore           int              `json:"matchScore"`
	SponsorNotes         *string          `json:"sponsorNotes"`
	RejectionReason      *string          `json:"rejectionReason"`
	WithdrawalReason     *string          `json:"withdrawalReason"`
	InterviewScheduledAt *time.Time       `json:"interviewScheduledAt"`
	InterviewCompletedAt *time.Time       `json:"interviewCompletedAt"`
	AppliedAt            time.Time        `json:"appliedAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
	Version              int              `json:"version"`
}

// Snapshot captures the full observable state of the application.
func (a *JobApplication) Snapshot() JobApplicationSnapshot {
	return JobApplicationSnapshot{
		ID:                   a.id,
		JobID:                a.jobID,
		MaidID:               a.maidID,
		SponsorID:            a.sponsorID,
		CoverLetter:          a.coverLetter,
		ProposedSalary:       cloneDecimalPtr(a.proposedSalary),
		AvailableFrom:        cloneTimePtr(a.availableFrom),
		Status:               a.status.String(),
		MatchScore:           a.matchScore,
		SponsorNotes:         optionalString(a.sponsorNotes),
		RejectionReason:      optionalString(a.rejectionReason),
		WithdrawalReason:     optionalString(a.withdrawalReason),
		InterviewScheduledAt: cloneTimePtr(a.interviewScheduledAt),
		InterviewCompletedAt: cloneTimePtr(a.interviewCompletedAt),
		AppliedAt:            a.appliedAt,
		UpdatedAt:            a.updatedAt,
		Version:              a.version,
	}
}

// RehydrateJobApplication rebuilds an application from persisted state.
// Raw values go through the same validation as fresh construction; no
// events are emitted.
func RehydrateJobApplication(s JobApplicationSnapshot) (*JobApplication, error) {
	if s.ID == "" || s.JobID == "" || s.MaidID == "" || s.SponsorID == "" {
		return nil, fmt.Errorf("%w: job application snapshot is missing identity", ErrValidation)
	}
	status, err := ParseApplicationStatus(s.Status)
	if err != nil {
		return nil, err
	}
	if s.MatchScore < 0 || s.MatchScore > 100 {
		return nil, fmt.Errorf("%w: match score %d outside [0, 100]", ErrValidation, s.MatchScore)
	}

	return &JobApplication{
		id:                   s.ID,
		jobID:                s.JobID,
		maidID:               s.MaidID,
		sponsorID:            s.SponsorID,
		coverLetter:          s.CoverLetter,
		proposedSalary:       cloneDecimalPtr(s.ProposedSalary),
		availableFrom:        cloneTimePtr(s.AvailableFrom),
		status:               status,
		matchScore:           s.MatchScore,
		sponsorNotes:         stringValue(s.SponsorNotes),
		rejectionReason:      stringValue(s.RejectionReason),
		withdrawalReason:     stringValue(s.WithdrawalReason),
		interviewScheduledAt: cloneTimePtr(s.InterviewScheduledAt),
		interviewCompletedAt: cloneTimePtr(s.InterviewCompletedAt),
		appliedAt:            s.AppliedAt,
		updatedAt:            s.UpdatedAt,
		version:              s.Version,
	}, nil
}

// JobApplicationRepository persists application aggregates. Update must
// apply an optimistic version check and return ErrVersionConflict when
// a concurrent writer won.
type JobApplicationRepository interface {
	Create(ctx context.Context, app *JobApplication) error
	GetByID(ctx context.Context, id string) (*JobApplication, error)
	Update(ctx context.Context, app *JobApplication) error
	GetByJobID(ctx context.Context, jobID string) ([]*JobApplication, error)
	GetByMaidID(ctx context.Context, maidID string) ([]JobApplicationSnapshot, error)
	Exists(ctx context.Context, jobID, maidID string) (bool, error)
}

// RankedApplication pairs an application with its sponsor-side sort
// score for list responses.
type RankedApplication struct {
	Application   JobApplicationSnapshot `json:"application"`
	PriorityScore float64                `json:"priorityScore"`
}

// ApplicationUsecase is the application service over application
// aggregates.
type ApplicationUsecase interface {
	Apply(ctx context.Context, maidID, jobID string, params ApplyParams) (*JobApplication, error)
	GetMyApplications(ctx context.Context, maidID string) ([]JobApplicationSnapshot, error)
	WithdrawApplication(ctx context.Context, maidID, applicationID, reason string) error

	ListByJob(ctx context.Context, sponsorID, jobID string) ([]RankedApplication, error)
	ReviewApplication(ctx context.Context, sponsorID, applicationID string) error
	ScheduleInterview(ctx context.Context, sponsorID, applicationID string, date time.Time) error
	CompleteInterview(ctx context.Context, sponsorID, applicationID, notes string) error
	AcceptApplication(ctx context.Context, sponsorID, applicationID, notes string) error
	RejectApplication(ctx context.Context, sponsorID, applicationID, reason string) error
}

// ApplyParams carries the optional fields of a new application.
type ApplyParams struct {
	CoverLetter    string
	ProposedSalary *decimal.Decimal
	AvailableFrom  *time.Time
}
