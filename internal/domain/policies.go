package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Matching weight constants consumed by the search/ranking layer. They
// mirror the match scoring dimensions and sum to 1.0.
const (
	MatchWeightSkills       = 0.30
	MatchWeightLanguages    = 0.25
	MatchWeightExperience   = 0.20
	MatchWeightNationality  = 0.15
	MatchWeightCompleteness = 0.10

	// RecommendationThreshold is the minimum match score for a job to
	// be recommended to a maid.
	RecommendationThreshold = 60

	// AutoSuggestionThreshold is the minimum match score for a maid to
	// be auto-suggested to a sponsor.
	AutoSuggestionThreshold = 75
)

// minimumWage is one row of the statutory minimum table for domestic
// workers. Amounts are monthly, in the local currency.
type minimumWage struct {
	Currency string
	Monthly  decimal.Decimal
}

// Minimum monthly wages for domestic workers in the six GCC states.
// Countries without an entry have no floor and always validate.
var minimumWages = map[string]minimumWage{
	"AE": {CurrencyAED, decimal.NewFromInt(1500)},
	"SA": {CurrencySAR, decimal.NewFromInt(1500)},
	"KW": {CurrencyKWD, decimal.NewFromInt(120)},
	"QA": {CurrencyQAR, decimal.NewFromInt(1800)},
	"BH": {CurrencyBHD, decimal.NewFromInt(200)},
	"OM": {CurrencyOMR, decimal.NewFromInt(325)},
}

var countryCodes = map[string]string{
	"UAE":                  "AE",
	"UNITED ARAB EMIRATES": "AE",
	"SAUDI ARABIA":         "SA",
	"KSA":                  "SA",
	"KUWAIT":               "KW",
	"QATAR":                "QA",
	"BAHRAIN":              "BH",
	"OMAN":                 "OM",
}

// countryCode normalizes a country name or ISO code to a 2-letter code.
// Unknown countries come back as-is (uppercased) and simply miss the
// minimum-wage table.
func countryCode(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	if code, ok := countryCodes[c]; ok {
		return code
	}
	return c
}

// SalaryValidation is the soft result of a salary policy check. Policy
// checks report diagnostics instead of failing hard; the UI renders
// them.
type SalaryValidation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateSalary checks an offer against the minimum-wage table for the
// job's country. Countries without an entry always validate. With an
// entry, the offer must be quoted in the local currency and its monthly
// equivalent must reach the floor.
func ValidateSalary(salary *Salary, country string) SalaryValidation {
	if salary == nil {
		return SalaryValidation{Valid: false, Error: "salary is required"}
	}
	floor, ok := minimumWages[countryCode(country)]
	if !ok {
		return SalaryValidation{Valid: true}
	}
	if salary.Currency() != floor.Currency {
		return SalaryValidation{
			Valid: false,
			Error: fmt.Sprintf("salary must be quoted in %s for %s", floor.Currency, country),
		}
	}
	if salary.MonthlyAmount().LessThan(floor.Monthly) {
		return SalaryValidation{
			Valid: false,
			Error: fmt.Sprintf("salary is below the minimum of %s %s per month", floor.Monthly, floor.Currency),
		}
	}
	return SalaryValidation{Valid: true}
}

// IsJobComplete reports whether a posting could be published. It defers
// to the aggregate's own predicate so the two call sites cannot drift.
func IsJobComplete(job *JobPosting) bool {
	return job.IsComplete()
}

// ShouldAutoExpire reports whether the scheduled sweep should close the
// posting: the expiry window has passed and the posting is still open.
func ShouldAutoExpire(job *JobPosting) bool {
	return job.IsExpired() && job.Status().IsOpen()
}

// SalaryRange is a recommended monthly salary band for a country.
type SalaryRange struct {
	Currency string          `json:"currency"`
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"`
}

// RecommendedSalaryRange suggests a band from the country's minimum
// wage, adding 10% headroom per year of required experience. Countries
// without a minimum-wage entry get no recommendation.
func RecommendedSalaryRange(experienceYears int, country string) *SalaryRange {
	floor, ok := minimumWages[countryCode(country)]
	if !ok {
		return nil
	}
	if experienceYears < 0 {
		experienceYears = 0
	}
	factor := decimal.NewFromInt(1).Add(
		decimal.NewFromInt(int64(experienceYears)).Mul(decimal.RequireFromString("0.10")))
	return &SalaryRange{
		Currency: floor.Currency,
		Min:      floor.Monthly,
		Max:      floor.Monthly.Mul(factor).Round(0),
	}
}

// ApplicationEligibility is the soft result of the apply policy check.
type ApplicationEligibility struct {
	CanApply bool     `json:"canApply"`
	Errors   []string `json:"errors"`
}

// MinProfileCompletion is the completion percentage a maid needs before
// applying.
const MinProfileCompletion = 80

// CanMaidApplyToJob runs every eligibility check and accumulates the
// failures; it never short-circuits and never returns an error, so the
// UI can show the full list at once.
func CanMaidApplyToJob(profile MaidProfile, job *JobPosting) ApplicationEligibility {
	var errs []string

	if profile.CompletionPercentage < MinProfileCompletion {
		errs = append(errs, fmt.Sprintf("Profile must be at least %d%% complete before applying", MinProfileCompletion))
	}
	if !profile.Verified {
		errs = append(errs, "Profile must be verified before applying")
	}
	if !profile.Active {
		errs = append(errs, "Profile is not active")
	}
	if !job.Status().IsAcceptingApplications() {
		errs = append(errs, "Job is not accepting applications")
	}
	if job.IsExpired() {
		errs = append(errs, "Job posting has expired")
	}
	if job.ApplicationCount() >= job.MaxApplications() {
		errs = append(errs, "Job has reached its application limit")
	}

	return ApplicationEligibility{CanApply: len(errs) == 0, Errors: errs}
}

// Priority scoring weights for sponsor-side ordering of applications.
const (
	priorityWeightMatch        = 50.0
	priorityWeightCompleteness = 20.0
	priorityWeightVerified     = 10.0
	priorityWeightExperience   = 15.0
	priorityWeightRecency      = 5.0

	// Experience beyond this many months earns no extra credit.
	priorityExperienceCapMonths = 24
)

// PriorityScore orders applications for the sponsor: better matches,
// stronger profiles and fresher applications sort first. Deterministic
// for equal inputs; pass the same now for stable ordering of a batch.
// It is a sort key, not a correctness invariant.
func PriorityScore(app *JobApplication, profile MaidProfile, now time.Time) float64 {
	score := float64(app.MatchScore()) / 100 * priorityWeightMatch
	score += float64(profile.CompletionPercentage) / 100 * priorityWeightCompleteness
	if profile.Verified {
		score += priorityWeightVerified
	}

	months := 0
	for _, e := range profile.Experiences {
		months += e.Months
	}
	if months > priorityExperienceCapMonths {
		months = priorityExperienceCapMonths
	}
	score += float64(months) / priorityExperienceCapMonths * priorityWeightExperience

	// Recency bonus decays linearly to zero over 24 hours.
	age := now.Sub(app.AppliedAt())
	if age < 0 {
		age = 0
	}
	if age < 24*time.Hour {
		score += (1 - age.Hours()/24) * priorityWeightRecency
	}

	return score
}
