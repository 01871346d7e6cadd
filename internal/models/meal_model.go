package models

import "time"

// Weekday is the lowercase English day name a meal is planned for.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays is the canonical Monday-first week order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the Monday-based position of w, or -1 for unrecognized values.
func (w Weekday) Index() int {
	for i, d := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// Valid reports whether w is one of the seven weekday values.
func (w Weekday) Valid() bool {
	return w.Index() >= 0
}

// MaxMealNameLength bounds meal and template names, counted in characters.
const MaxMealNameLength = 100

// Meal is a planned dish stored under users/{uid}/meals.
type Meal struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Weekday   Weekday   `json:"weekday" firestore:"weekday"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// MealTemplate is a reusable meal stored under users/{uid}/mealTemplates.
// DefaultWeekday is empty when the template was saved without a day.
type MealTemplate struct {
	ID             string    `json:"id" firestore:"-"`
	Name           string    `json:"name" firestore:"name"`
	DefaultWeekday Weekday   `json:"defaultWeekday,omitempty" firestore:"defaultWeekday"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
