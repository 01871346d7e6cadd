package models

import (
	"encoding/json"
	"testing"
)

func TestFormValueDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want FormValue
	}{
		{"string", `{"quantity":"2.5","price":"1"}`, "2.5"},
		{"number", `{"quantity":2.5}`, "2.5"},
		{"null", `{"quantity":null}`, ""},
		{"missing", `{}`, ""},
		{"garbage string", `{"quantity":"abc"}`, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var form IngredientForm
			if err := json.Unmarshal([]byte(tt.body), &form); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if form.Quantity != tt.want {
				t.Errorf("Quantity = %q, want %q", form.Quantity, tt.want)
			}
		})
	}
}

func TestBudgetRequestNumber(t *testing.T) {
	var req BudgetRequest
	if err := json.Unmarshal([]byte(`{"monthlyLimit": 150}`), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if req.MonthlyLimit != "150" {
		t.Errorf("MonthlyLimit = %q", req.MonthlyLimit)
	}
}

func TestWeekdayIndex(t *testing.T) {
	if Monday.Index() != 0 || Sunday.Index() != 6 {
		t.Errorf("unexpected indexes %d %d", Monday.Index(), Sunday.Index())
	}
	if Weekday("someday").Valid() {
		t.Error("someday should not be valid")
	}
	if !UnitPack.Valid() || Unit("cups").Valid() {
		t.Error("unit validation mismatch")
	}
}
