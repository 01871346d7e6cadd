package api

import "unimeal-backend-go/internal/viewmodel"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // Message safe to show to the user
	Details string `json:"details,omitempty"` // Offending field or extra context
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CreatedResponse returns the id of a new document.
type CreatedResponse struct {
	ID string `json:"id"`
}

// MealsResponse is the meals page state plus the week grid in week view.
type MealsResponse struct {
	viewmodel.MealsState
	Week []viewmodel.WeekColumn `json:"week,omitempty"`
}

// ExportResponse carries the meal-plan export.
type ExportResponse struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}
