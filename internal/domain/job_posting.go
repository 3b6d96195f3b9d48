package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxApplications caps how many applications a posting accepts
// before it closes itself.
const DefaultMaxApplications = 50

// DefaultExpiryDays is how long a published posting stays open when the
// sponsor does not choose an expiry window.
const DefaultExpiryDays = 30

// Location is where the job is based. Country and city are both
// required before a posting can go live.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// JobPosting is the aggregate root for a sponsor's job listing. All
// state changes go through its methods; each successful mutation
// appends a domain event to the internal buffer in the same call, so an
// event is never recorded without the matching state change.
type JobPosting struct {
	id                     string
	sponsorID              string
	title                  string
	description            string
	requiredSkills         []string
	requiredLanguages      []string
	experienceYears        int
	preferredNationality   string
	location               Location
	contractDurationMonths *int
	startDate              *time.Time
	salary                 *Salary
	benefits               []string
	workingHours           string
	daysOff                string
	accommodationType      string
	status                 JobStatus
	applicationCount       int
	maxApplications        int
	viewCount              int
	postedAt               *time.Time
	expiresAt              *time.Time
	createdAt              time.Time
	updatedAt              time.Time
	version                int
	events                 []Event
}

// NewJobPostingParams carries the fields for a fresh draft posting.
type NewJobPostingParams struct {
	SponsorID              string
	Title                  string
	Description            string
	RequiredSkills         []string
	RequiredLanguages      []string
	ExperienceYears        int
	PreferredNationality   string
	Location               Location
	ContractDurationMonths *int
	StartDate              *time.Time
	Salary                 *Salary
	Benefits               []string
	WorkingHours           string
	DaysOff                string
	AccommodationType      string
	MaxApplications        int
}

// NewJobPosting creates a draft posting owned by the sponsor. Drafts
// may be incomplete; completeness is only enforced at publish time.
func NewJobPosting(p NewJobPostingParams) (*JobPosting, error) {
	if p.SponsorID == "" {
		return nil, fmt.Errorf("%w: sponsor id is required", ErrValidation)
	}
	if p.ExperienceYears < 0 {
		return nil, fmt.Errorf("%w: experience years cannot be negative", ErrValidation)
	}
	maxApps := p.MaxApplications
	if maxApps <= 0 {
		maxApps = DefaultMaxApplications
	}

	now := time.Now()
	job := &JobPosting{
		id:                     uuid.NewString(),
		sponsorID:              p.SponsorID,
		title:                  p.Title,
		description:            p.Description,
		requiredSkills:         cloneStrings(p.RequiredSkills),
		requiredLanguages:      cloneStrings(p.RequiredLanguages),
		experienceYears:        p.ExperienceYears,
		preferredNationality:   p.PreferredNationality,
		location:               p.Location,
		contractDurationMonths: cloneIntPtr(p.ContractDurationMonths),
		startDate:              cloneTimePtr(p.StartDate),
		salary:                 p.Salary,
		benefits:               cloneStrings(p.Benefits),
		workingHours:           p.WorkingHours,
		daysOff:                p.DaysOff,
		accommodationType:      p.AccommodationType,
		status:                 JobStatusDraft,
		maxApplications:        maxApps,
		createdAt:              now,
		updatedAt:              now,
	}
	job.record(NewEvent(EventJobPostingCreated, job.id, map[string]any{
		"sponsorId": job.sponsorID,
		"title":     job.title,
	}))
	return job, nil
}

// Accessors

func (j *JobPosting) ID() string                   { return j.id }
func (j *JobPosting) SponsorID() string            { return j.sponsorID }
func (j *JobPosting) Title() string                { return j.title }
func (j *JobPosting) Description() string          { return j.description }
func (j *JobPosting) RequiredSkills() []string     { return cloneStrings(j.requiredSkills) }
func (j *JobPosting) RequiredLanguages() []string  { return cloneStrings(j.requiredLanguages) }
func (j *JobPosting) ExperienceYears() int         { return j.experienceYears }
func (j *JobPosting) PreferredNationality() string { return j.preferredNationality }
func (j *JobPosting) Location() Location           { return j.location }
func (j *JobPosting) Salary() *Salary              { return j.salary }
func (j *JobPosting) Status() JobStatus            { return j.status }
func (j *JobPosting) ApplicationCount() int        { return j.applicationCount }
func (j *JobPosting) MaxApplications() int         { return j.maxApplications }
func (j *JobPosting) ViewCount() int               { return j.viewCount }
func (j *JobPosting) PostedAt() *time.Time         { return cloneTimePtr(j.postedAt) }
func (j *JobPosting) ExpiresAt() *time.Time        { return cloneTimePtr(j.expiresAt) }
func (j *JobPosting) UpdatedAt() time.Time         { return j.updatedAt }
func (j *JobPosting) Version() int                 { return j.version }

// JobPostingUpdate lists the editable detail fields. Nil means "leave
// unchanged"; a pointer to the zero value is still applied, so an
// explicitly empty description overwrites the old one.
type JobPostingUpdate struct {
	Title                  *string
	Description            *string
	RequiredSkills         []string
	RequiredLanguages      []string
	ExperienceYears        *int
	PreferredNationality   *string
	Location               *Location
	ContractDurationMonths *int
	StartDate              *time.Time
	WorkingHours           *string
	DaysOff                *string
	AccommodationType      *string
}

// UpdateDetails applies the provided fields to a draft posting.
func (j *JobPosting) UpdateDetails(upd JobPostingUpdate) error {
	if !j.status.CanEdit() {
		return fmt.Errorf("%w: cannot edit a %s job posting", ErrInvalidTransition, j.status)
	}
	if upd.Title != nil {
		j.title = *upd.Title
	}
	if upd.Description != nil {
		j.description = *upd.Description
	}
	if upd.RequiredSkills != nil {
		j.requiredSkills = cloneStrings(upd.RequiredSkills)
	}
	if upd.RequiredLanguages != nil {
		j.requiredLanguages = cloneStrings(upd.RequiredLanguages)
	}
	if upd.ExperienceYears != nil {
		if *upd.ExperienceYears < 0 {
			return fmt.Errorf("%w: experience years cannot be negative", ErrValidation)
		}
		j.experienceYears = *upd.ExperienceYears
	}
	if upd.PreferredNationality != nil {
		j.preferredNationality = *upd.PreferredNationality
	}
	if upd.Location != nil {
		j.location = *upd.Location
	}
	if upd.ContractDurationMonths != nil {
		j.contractDurationMonths = cloneIntPtr(upd.ContractDurationMonths)
	}
	if upd.StartDate != nil {
		j.startDate = cloneTimePtr(upd.StartDate)
	}
	if upd.WorkingHours != nil {
		j.workingHours = *upd.WorkingHours
	}
	if upd.DaysOff != nil {
		j.daysOff = *upd.DaysOff
	}
	if upd.AccommodationType != nil {
		j.accommodationType = *upd.AccommodationType
	}
	j.touch()
	j.record(NewEvent(EventJobPostingUpdated, j.id, map[string]any{
		"sponsorId": j.sponsorID,
	}))
	return nil
}

// UpdateCompensation replaces salary and/or benefits on a draft.
func (j *JobPosting) UpdateCompensation(salary *Salary, benefits []string) error {
	if !j.status.CanEdit() {
		return fmt.Errorf("%w: cannot edit a %s job posting", ErrInvalidTransition, j.status)
	}
	if salary != nil {
		j.salary = salary
	}
	if benefits != nil {
		j.benefits = cloneStrings(benefits)
	}
	j.touch()
	j.record(NewEvent(EventJobCompensationUpdated, j.id, map[string]any{
		"sponsorId": j.sponsorID,
	}))
	return nil
}

// IsComplete is the single completeness predicate shared by Publish and
// the posting policies. A posting can go live once the title,
// description, at least one skill and one language, a full location, a
// salary and the accommodation type are all present.
func (j *JobPosting) IsComplete() bool {
	return j.title != "" &&
		j.description != "" &&
		len(j.requiredSkills) > 0 &&
		len(j.requiredLanguages) > 0 &&
		j.location.Country != "" &&
		j.location.City != "" &&
		j.salary != nil &&
		j.accommodationType != ""
}

// Publish moves a complete draft to open and stamps the posting window.
// expiryDays <= 0 falls back to the default of 30 days.
func (j *JobPosting) Publish(expiryDays int) error {
	if !j.status.IsDraft() {
		return fmt.Errorf("%w: only draft postings can be published, status is %s", ErrInvalidTransition, j.status)
	}
	if !j.IsComplete() {
		return fmt.Errorf("%w: job posting is incomplete", ErrValidation)
	}
	if expiryDays <= 0 {
		expiryDays = DefaultExpiryDays
	}

	now := time.Now()
	expires := now.AddDate(0, 0, expiryDays)
	j.status = JobStatusOpen
	j.postedAt = &now
	j.expiresAt = &expires
	j.touch()
	j.record(NewEvent(EventJobPostingPublished, j.id, map[string]any{
		"sponsorId": j.sponsorID,
		"postedAt":  now,
		"expiresAt": expires,
	}))
	return nil
}

// RecordApplication increments the applicant counter. When the counter
// reaches the cap, the posting closes itself in the same call, which
// emits a JobPostingClosed event as a side effect.
func (j *JobPosting) RecordApplication() error {
	if !j.status.IsOpen() {
		return fmt.Errorf("%w: job posting is not accepting applications, status is %s", ErrInvalidTransition, j.status)
	}
	if j.applicationCount >= j.maxApplications {
		return fmt.Errorf("%w: maximum applications reached", ErrValidation)
	}
	j.applicationCount++
	j.touch()
	if j.applicationCount >= j.maxApplications {
		return j.Close("Maximum applications reached")
	}
	return nil
}

// RecordView bumps the view counter. Views are recorded regardless of
// status and emit no event.
func (j *JobPosting) RecordView() {
	j.viewCount++
	j.touch()
}

// Close ends an active posting. Already closed or filled postings stay
// as they are.
func (j *JobPosting) Close(reason string) error {
	if j.status.IsClosed() || j.status.IsFilled() {
		return fmt.Errorf("%w: job posting is already %s", ErrInvalidTransition, j.status)
	}
	j.status = JobStatusClosed
	j.touch()
	j.record(NewEvent(EventJobPostingClosed, j.id, map[string]any{
		"sponsorId": j.sponsorID,
		"reason":    reason,
	}))
	return nil
}

// MarkAsFilled records a successful hire on an open posting.
func (j *JobPosting) MarkAsFilled(maidID, contractID string) error {
	if !j.status.IsOpen() {
		return fmt.Errorf("%w: only open postings can be filled, status is %s", ErrInvalidTransition, j.status)
	}
	j.status = JobStatusFilled
	j.touch()
	j.record(NewEvent(EventJobPostingFilled, j.id, map[string]any{
		"sponsorId":  j.sponsorID,
		"maidId":     maidID,
		"contractId": contractID,
	}))
	return nil
}

// Cancel withdraws the posting. Legal from any status except filled,
// including drafts and already closed postings.
func (j *JobPosting) Cancel(reason string) error {
	if j.status.IsFilled() {
		return fmt.Errorf("%w: a filled job posting cannot be cancelled", ErrInvalidTransition)
	}
	j.status = JobStatusCancelled
	j.touch()
	j.record(NewEvent(EventJobPostingCancelled, j.id, map[string]any{
		"sponsorId": j.sponsorID,
		"reason":    reason,
	}))
	return nil
}

// IsExpired reports whether the posting window has passed. Pure query.
func (j *JobPosting) IsExpired() bool {
	return j.expiresAt != nil && j.expiresAt.Before(time.Now())
}

// Match scoring weights. They sum to 100, which is also the maximum
// score a profile can reach.
const (
	matchWeightSkills       = 30
	matchWeightLanguages    = 25
	matchWeightExperience   = 20
	matchWeightNationality  = 15
	matchWeightCompleteness = 10
)

// MatchScore rates how well a maid profile fits this posting, 0-100.
// A requirement dimension left empty (no skills or no languages asked
// for) counts as full credit; published postings always require at
// least one of each, so only drafts can take that path.
func (j *JobPosting) MatchScore(profile MaidProfile) int {
	score := 0.0
	maxScore := 0.0

	// Skills
	maxScore += matchWeightSkills
	if len(j.requiredSkills) == 0 {
		score += matchWeightSkills
	} else {
		matched := countMatches(j.requiredSkills, profile.Skills)
		score += float64(matched) / float64(len(j.requiredSkills)) * matchWeightSkills
	}

	// Languages
	maxScore += matchWeightLanguages
	if len(j.requiredLanguages) == 0 {
		score += matchWeightLanguages
	} else {
		matched := countMatches(j.requiredLanguages, profile.Languages)
		score += float64(matched) / float64(len(j.requiredLanguages)) * matchWeightLanguages
	}

	// Experience: full credit at or above the requirement, linear
	// partial credit below it.
	maxScore += matchWeightExperience
	years := profile.TotalExperienceYears()
	if j.experienceYears <= 0 || years >= float64(j.experienceYears) {
		score += matchWeightExperience
	} else {
		score += years / float64(j.experienceYears) * matchWeightExperience
	}

	// Nationality: full credit when no preference is set or it matches.
	maxScore += matchWeightNationality
	if j.preferredNationality == "" || strings.EqualFold(j.preferredNationality, profile.Nationality) {
		score += matchWeightNationality
	}

	// Profile completeness
	maxScore += matchWeightCompleteness
	score += float64(profile.CompletionPercentage) / 100 * matchWeightCompleteness

	return int(math.Round(score / maxScore * 100))
}

// PullEvents drains the event buffer: the accumulated events are
// returned exactly once and the buffer is empty afterwards.
func (j *JobPosting) PullEvents() []Event {
	events := j.events
	j.events = nil
	return events
}

func (j *JobPosting) touch()         { j.updatedAt = time.Now() }
func (j *JobPosting) record(e Event) { j.events = append(j.events, e) }

func countMatches(required, offered []string) int {
	have := make(map[string]bool, len(offered))
	for _, o := range offered {
		have[strings.ToLower(strings.TrimSpace(o))] = true
	}
	matched := 0
	for _, r := range required {
		if have[strings.ToLower(strings.TrimSpace(r))] {
			matched++
		}
	}
	return matched
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneIntPtr(in *int) *int {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

// JobPostingSnapshot is the persistence and API shape of a posting.
// Optional fields marshal as explicit nulls; timestamps are RFC 3339.
type JobPostingSnapshot struct {
	ID                     string     `json:"id"`
	SponsorID              string     `json:"sponsorId"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	RequiredSkills         []string   `json:"requiredSkills"`
	RequiredLanguages      []string   `json:"requiredLanguages"`
	ExperienceYears        int        `json:"experienceYears"`
	PreferredNationality   *string    `json:"preferredNationality"`
	Location               Location   `json:"location"`
	ContractDurationMonths *int       `json:"contractDurationMonths"`
	StartDate              *time.Time `json:"startDate"`
	Salary                 *Salary    `json:"salary"`
	Benefits               []string   `json:"benefits"`
	WorkingHours           *string    `json:"workingHours"`
	DaysOff                *string    `json:"daysOff"`
	AccommodationType      *string    `json:"accommodationType"`
	Status                 string     `json:"status"`
	ApplicationCount       int        `json:"applicationCount"`
	MaxApplications        int        `json:"maxApplications"`
	ViewCount              int        `json:"viewCount"`
	PostedAt               *time.Time `json:"postedAt"`
	ExpiresAt              *time.Time `json:"expiresAt"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
	Version                int        `json:"version"`
}

// Snapshot captures the full observable state of the posting.
func (j *JobPosting) Snapshot() JobPostingSnapshot {
	return JobPostingSnapshot{
		ID:                     j.id,
		SponsorID:              j.sponsorID,
		Title:                  j.title,
		Description:            j.description,
		RequiredSkills:         cloneStrings(j.requiredSkills),
		RequiredLanguages:      cloneStrings(j.requiredLanguages),
		ExperienceYears:        j.experienceYears,
		PreferredNationality:   optionalString(j.preferredNationality),
		Location:               j.location,
		ContractDurationMonths: cloneIntPtr(j.contractDurationMonths),
		StartDate:              cloneTimePtr(j.startDate),
		Salary:                 j.salary,
		Benefits:               cloneStrings(j.benefits),
		WorkingHours:           optionalString(j.workingHours),
		DaysOff:                optionalString(j.daysOff),
		AccommodationType:      optionalString(j.accommodationType),
		Status:                 j.status.String(),
		ApplicationCount:       j.applicationCount,
		MaxApplications:        j.maxApplications,
		ViewCount:              j.viewCount,
		PostedAt:               cloneTimePtr(j.postedAt),
		ExpiresAt:              cloneTimePtr(j.expiresAt),
		CreatedAt:              j.createdAt,
		UpdatedAt:              j.updatedAt,
		Version:                j.version,
	}
}

// RehydrateJobPosting rebuilds a posting from persisted state. Raw
// values go through the same validation as fresh construction; no
// events are emitted.
func RehydrateJobPosting(s JobPostingSnapshot) (*JobPosting, error) {
	if s.ID == "" || s.SponsorID == "" {
		return nil, fmt.Errorf("%w: job posting snapshot is missing identity", ErrValidation)
	}
	status, err := ParseJobStatus(s.Status)
	if err != nil {
		return nil, err
	}
	maxApps := s.MaxApplications
	if maxApps <= 0 {
		maxApps = DefaultMaxApplications
	}
	if s.ApplicationCount < 0 || s.ApplicationCount > maxApps {
		return nil, fmt.Errorf("%w: application count %d outside [0, %d]", ErrValidation, s.ApplicationCount, maxApps)
	}

	return &JobPosting{
		id:                     s.ID,
		sponsorID:              s.SponsorID,
		title:                  s.Title,
		description:            s.Description,
		requiredSkills:         cloneStrings(s.RequiredSkills),
		requiredLanguages:      cloneStrings(s.RequiredLanguages),
		experienceYears:        s.ExperienceYears,
		preferredNationality:   stringValue(s.PreferredNationality),
		location:               s.Location,
		contractDurationMonths: cloneIntPtr(s.ContractDurationMonths),
		startDate:              cloneTimePtr(s.StartDate),
		salary:                 s.Salary,
		benefits:               cloneStrings(s.Benefits),
		workingHours:           stringValue(s.WorkingHours),
		daysOff:                stringValue(s.DaysOff),
		accommodationType:      stringValue(s.AccommodationType),
		status:                 status,
		applicationCount:       s.ApplicationCount,
		maxApplications:        maxApps,
		viewCount:              s.ViewCount,
		postedAt:               cloneTimePtr(s.PostedAt),
		expiresAt:              cloneTimePtr(s.ExpiresAt),
		createdAt:              s.CreatedAt,
		updatedAt:              s.UpdatedAt,
		version:                s.Version,
	}, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// JobPostingRepository persists posting aggregates. Update must apply
// an optimistic version check and return ErrVersionConflict when a
// concurrent writer won.
type JobPostingRepository interface {
	Create(ctx context.Context, job *JobPosting) error
	GetByID(ctx context.Context, id string) (*JobPosting, error)
	Update(ctx context.Context, job *JobPosting) error
	FetchOpen(ctx context.Context, limit, offset int) ([]JobPostingSnapshot, int64, error)
	FetchBySponsorID(ctx context.Context, sponsorID string, limit, offset int) ([]JobPostingSnapshot, int64, error)
	FetchExpired(ctx context.Context, now time.Time) ([]*JobPosting, error)
}

// JobUsecase is the application service over posting aggregates.
type JobUsecase interface {
	CreateJob(ctx context.Context, sponsorID string, params NewJobPostingParams) (*JobPosting, error)
	GetJob(ctx context.Context, id string) (*JobPosting, error)
	ListOpenJobs(ctx context.Context, page, pageSize int) ([]JobPostingSnapshot, int64, error)
	ListJobsBySponsor(ctx context.Context, sponsorID string, page, pageSize int) ([]JobPostingSnapshot, int64, error)
	UpdateJobDetails(ctx context.Context, sponsorID, jobID string, upd JobPostingUpdate) (*JobPosting, error)
	UpdateJobCompensation(ctx context.Context, sponsorID, jobID string, salary *Salary, benefits []string) (*JobPosting, error)
	PublishJob(ctx context.Context, sponsorID, jobID string, expiryDays int) (*JobPosting, error)
	CloseJob(ctx context.Context, sponsorID, jobID, reason string) error
	CancelJob(ctx context.Context, sponsorID, jobID, reason string) error
	MarkJobFilled(ctx context.Context, sponsorID, jobID, maidID, contractID string) error
	RecordJobView(ctx context.Context, jobID string) error
}
