package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currencies accepted for job offers on the marketplace.
const (
	CurrencyAED = "AED"
	CurrencySAR = "SAR"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyKWD = "KWD"
	CurrencyQAR = "QAR"
	CurrencyBHD = "BHD"
	CurrencyOMR = "OMR"
)

// Pay periods a salary can be quoted in.
const (
	PeriodMonthly = "monthly"
	PeriodWeekly  = "weekly"
	PeriodHourly  = "hourly"
	PeriodYearly  = "yearly"
)

var validCurrencies = map[string]bool{
	CurrencyAED: true, CurrencySAR: true, CurrencyUSD: true,
	CurrencyEUR: true, CurrencyGBP: true, CurrencyKWD: true,
	CurrencyQAR: true, CurrencyBHD: true, CurrencyOMR: true,
}

var validPeriods = map[string]bool{
	PeriodMonthly: true, PeriodWeekly: true, PeriodHourly: true, PeriodYearly: true,
}

// Fixed conversion factors to a monthly equivalent. These are a
// deliberate business rule, not a calendar calculation: weekly pay is
// worth 4.33 weeks a month, hourly pay 160 hours a month, yearly pay
// one twelfth. Every cross-salary comparison uses this normalization.
var (
	weeksPerMonth = decimal.RequireFromString("4.33")
	hoursPerMonth = decimal.NewFromInt(160)
	monthsPerYear = decimal.NewFromInt(12)
)

// Salary is an immutable amount/currency/period triple. No method
// mutates the receiver; replacing a salary always builds a new value.
type Salary struct {
	amount   decimal.Decimal
	currency string
	period   string
}

// NewSalary validates and builds a Salary. Empty currency defaults to
// AED, empty period to monthly. The amount must be strictly positive.
func NewSalary(amount decimal.Decimal, currency, period string) (Salary, error) {
	if !amount.IsPositive() {
		return Salary{}, fmt.Errorf("%w: salary amount must be positive, got %s", ErrValidation, amount)
	}
	if currency == "" {
		currency = CurrencyAED
	}
	if period == "" {
		period = PeriodMonthly
	}
	if !validCurrencies[currency] {
		return Salary{}, fmt.Errorf("%w: unsupported currency %q", ErrValidation, currency)
	}
	if !validPeriods[period] {
		return Salary{}, fmt.Errorf("%w: unsupported salary period %q", ErrValidation, period)
	}
	return Salary{amount: amount, currency: currency, period: period}, nil
}

func (s Salary) Amount() decimal.Decimal { return s.amount }
func (s Salary) Currency() string        { return s.currency }
func (s Salary) Period() string          { return s.period }

// MonthlyAmount normalizes the salary to its monthly equivalent using
// the fixed conversion factors above.
func (s Salary) MonthlyAmount() decimal.Decimal {
	switch s.period {
	case PeriodWeekly:
		return s.amount.Mul(weeksPerMonth)
	case PeriodHourly:
		return s.amount.Mul(hoursPerMonth)
	case PeriodYearly:
		return s.amount.Div(monthsPerYear)
	default:
		return s.amount
	}
}

// Compare orders two salaries by monthly equivalent: -1, 0 or 1.
func (s Salary) Compare(other Salary) int {
	return s.MonthlyAmount().Cmp(other.MonthlyAmount())
}

// InRange reports whether the monthly equivalent lies in [min, max].
func (s Salary) InRange(min, max decimal.Decimal) bool {
	monthly := s.MonthlyAmount()
	return monthly.GreaterThanOrEqual(min) && monthly.LessThanOrEqual(max)
}

// Equal is structural: amount, currency and period must all match.
// Two salaries with equal monthly equivalents but different raw
// period/amount are NOT equal; only Compare/InRange normalize.
func (s Salary) Equal(other Salary) bool {
	return s.amount.Equal(other.amount) && s.currency == other.currency && s.period == other.period
}

func (s Salary) String() string {
	return fmt.Sprintf("%s %s/%s", s.amount, s.currency, s.period)
}

type salaryJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Period   string          `json:"period"`
}

func (s Salary) MarshalJSON() ([]byte, error) {
	return json.Marshal(salaryJSON{Amount: s.amount, Currency: s.currency, Period: s.period})
}

// UnmarshalJSON rehydrates a salary from stored raw values, running the
// same validation as NewSalary.
func (s *Salary) UnmarshalJSON(data []byte) error {
	var raw salaryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewSalary(raw.Amount, raw.Currency, raw.Period)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
