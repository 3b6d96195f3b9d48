package domain

import "context"

// WorkExperience is one past engagement on a maid's profile. Durations
// are tracked in whole months.
type WorkExperience struct {
	Employer string `json:"employer"`
	Country  string `json:"country"`
	Months   int    `json:"months"`
}

// MaidProfile is the read model the jobs context consumes for matching
// and eligibility. The profile itself is owned by another context; we
// only read it here.
type MaidProfile struct {
	ID                   string           `json:"id"`
	FullName             string           `json:"fullName"`
	Nationality          string           `json:"nationality"`
	Skills               []string         `json:"skills"`
	Languages            []string         `json:"languages"`
	Experiences          []WorkExperience `json:"experiences"`
	CompletionPercentage int              `json:"completionPercentage"`
	Verified             bool             `json:"verified"`
	Active               bool             `json:"active"`
}

// TotalExperienceYears sums all experience durations in months and
// converts to years.
func (p MaidProfile) TotalExperienceYears() float64 {
	months := 0
	for _, e := range p.Experiences {
		months += e.Months
	}
	return float64(months) / 12.0
}

type MaidProfileRepository interface {
	GetByID(ctx context.Context, id string) (*MaidProfile, error)
}
