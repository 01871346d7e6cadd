// Package calc holds the pure derivations behind every page: spend totals,
// remaining budget, expiry windows, sorting and display formatting.
package calc

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"unimeal-backend-go/internal/models"
)

// Thresholds are the tunable limits used by the derivations.
type Thresholds struct {
	ExpiringSoonDays int     `mapstructure:"EXPIRING_SOON_DAYS"`
	LowBudgetRatio   float64 `mapstructure:"LOW_BUDGET_RATIO"`
}

// DefaultThresholds returns a three-day expiry window and a 20% low-budget ratio.
func DefaultThresholds() Thresholds {
	return Thresholds{ExpiringSoonDays: 3, LowBudgetRatio: 0.2}
}

// ErrInvalidLimit is returned by ParseLimit for anything but a finite number above zero.
var ErrInvalidLimit = errors.New("monthly limit must be a number greater than 0")

// TotalSpent sums ingredient prices. Negative, NaN and infinite prices count as zero.
func TotalSpent(ingredients []models.Ingredient) float64 {
	total := decimal.Zero
	for _, ing := range ingredients {
		p := ing.Price
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(p))
	}
	return total.InexactFloat64()
}

// RemainingBudget returns limit minus spent, or nil when no limit is set.
func RemainingBudget(limit *float64, spent float64) *float64 {
	if limit == nil {
		return nil
	}
	remaining := decimal.NewFromFloat(*limit).Sub(decimal.NewFromFloat(spent)).InexactFloat64()
	return &remaining
}

// ParseLimit validates a monthly limit typed by the user.
func ParseLimit(input string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidLimit
	}
	return v, nil
}

// Tone is the severity used to colour the budget summary.
type Tone string

const (
	ToneOK      Tone = "ok"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Reason explains why a tone was chosen.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonOverBudget Reason = "over_budget"
	ReasonExhausted  Reason = "exhausted"
	ReasonLow        Reason = "low"
)

// BudgetStatus is the tone and reason for a remaining amount.
type BudgetStatus struct {
	Tone   Tone   `json:"tone"`
	Reason Reason `json:"reason,omitempty"`
}

// BudgetStatusFor classifies remaining against limit.
func BudgetStatusFor(remaining, limit, lowRatio float64) BudgetStatus {
	switch {
	case remaining < 0:
		return BudgetStatus{Tone: ToneDanger, Reason: ReasonOverBudget}
	case remaining == 0:
		return BudgetStatus{Tone: ToneWarning, Reason: ReasonExhausted}
	case limit > 0 && remaining <= lowRatio*limit:
		return BudgetStatus{Tone: ToneWarning, Reason: ReasonLow}
	default:
		return BudgetStatus{Tone: ToneOK}
	}
}

// Message renders the sentence shown under the budget summary.
func (s BudgetStatus) Message(remaining float64) string {
	switch s.Reason {
	case ReasonOverBudget:
		return "You are over budget by " + FormatCurrency(ptr(math.Abs(remaining))) + " this month."
	case ReasonExhausted:
		return "You have exactly used your monthly budget."
	case ReasonLow:
		return "Your remaining budget is getting low: " + FormatCurrency(&remaining) + " left."
	default:
		return "You still have " + FormatCurrency(&remaining) + " left in your budget."
	}
}

// Warning is the shorter dashboard variant; it is empty when the tone is ok.
func (s BudgetStatus) Warning(remaining float64) string {
	switch s.Reason {
	case ReasonOverBudget:
		return "You are over your monthly budget by " + FormatCurrency(ptr(math.Abs(remaining))) + "."
	case ReasonExhausted:
		return "You have used your entire monthly budget."
	case ReasonLow:
		return "Heads up: only " + FormatCurrency(&remaining) + " left this month."
	default:
		return ""
	}
}

func ptr(v float64) *float64 { return &v }
