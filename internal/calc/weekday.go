package calc

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"unimeal-backend-go/internal/models"
)

var titleCaser = cases.Title(language.English)

// SortByWeekday returns a copy ordered Monday to Sunday. Unrecognized weekdays
// take index -1 and so come first; equal days keep their input order.
func SortByWeekday(meals []models.Meal) []models.Meal {
	out := append([]models.Meal(nil), meals...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weekday.Index() < out[j].Weekday.Index()
	})
	return out
}

// WeekdayLabel is the display label for w; unknown values are shown verbatim.
func WeekdayLabel(w models.Weekday) string {
	if !w.Valid() {
		return string(w)
	}
	return titleCaser.String(string(w))
}
