package calc

import (
	"sort"
	"strings"
	"time"

	"unimeal-backend-go/internal/models"
)

// DateLayout is the stored expiry date format.
const DateLayout = "2006-01-02"

// IsExpiringSoon reports whether expiryDate falls within [reference, reference+window]
// counted in whole calendar days. Empty or unparseable dates are never expiring.
func IsExpiringSoon(expiryDate string, reference time.Time, window int) bool {
	days, ok := DaysUntil(expiryDate, reference)
	return ok && days >= 0 && days <= window
}

// IsExpiringSoon applies the configured window.
func (t Thresholds) IsExpiringSoon(expiryDate string, reference time.Time) bool {
	return IsExpiringSoon(expiryDate, reference, t.ExpiringSoonDays)
}

// DaysUntil returns the number of calendar days from reference's date to expiryDate.
func DaysUntil(expiryDate string, reference time.Time) (int, bool) {
	expiry, err := time.Parse(DateLayout, strings.TrimSpace(expiryDate))
	if err != nil {
		return 0, false
	}
	y, m, d := reference.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(today).Hours() / 24), true
}

// ExpiringSoon filters ingredients inside the window, keeping input order.
func (t Thresholds) ExpiringSoon(ingredients []models.Ingredient, reference time.Time) []models.Ingredient {
	out := make([]models.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if t.IsExpiringSoon(ing.ExpiryDate, reference) {
			out = append(out, ing)
		}
	}
	return out
}

// SortByExpiryThenName returns a copy ordered by ascending expiry date, with
// undated ingredients last and equal dates broken by name.
func SortByExpiryThenName(ingredients []models.Ingredient) []models.Ingredient {
	out := append([]models.Ingredient(nil), ingredients...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ExpiryDate != "" && b.ExpiryDate != "" && a.ExpiryDate != b.ExpiryDate:
			return a.ExpiryDate < b.ExpiryDate
		case a.ExpiryDate != "" && b.ExpiryDate == "":
			return true
		case a.ExpiryDate == "" && b.ExpiryDate != "":
			return false
		default:
			return a.Name < b.Name
		}
	})
	return out
}
