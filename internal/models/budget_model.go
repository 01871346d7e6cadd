package models

import "time"

// Budget is the single document at users/{uid}/budget/current.
type Budget struct {
	MonthlyLimit float64   `json:"monthlyLimit" firestore:"monthlyLimit"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// OnboardingState is stored at users/{uid}/preferences/onboarding.
type OnboardingState struct {
	Completed bool `json:"completed" firestore:"completed"`
}
