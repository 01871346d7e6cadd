package models

import (
	"bytes"
	"encoding/json"
)

// FormValue is a raw form input. It decodes from a JSON string or number so
// that parse failures surface as field errors instead of binding errors.
type FormValue string

// UnmarshalJSON accepts strings, numbers and null.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	default:
		*v = FormValue(data)
		return nil
	}
}

// IngredientForm carries the inputs of the add-ingredient form.
type IngredientForm struct {
	Name       string    `json:"name"`
	Quantity   FormValue `json:"quantity"`
	Unit       string    `json:"unit"`
	Price      FormValue `json:"price,omitempty"`
	ExpiryDate string    `json:"expiryDate"`
}

// MealForm carries the add-meal and save-template form inputs.
type MealForm struct {
	Name    string `json:"name"`
	Weekday string `json:"weekday"`
}

// BudgetRequest is the body of PUT /budget and PUT /dashboard/budget.
type BudgetRequest struct {
	MonthlyLimit FormValue `json:"monthlyLimit"`
}

// ViewModeRequest is the body of PUT /meals/view-mode.
type ViewModeRequest struct {
	ViewMode string `json:"viewMode" binding:"required"`
}
