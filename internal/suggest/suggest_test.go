package suggest

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "capped at five in first-seen order",
			input: []string{"Whole Milk", "Cheddar Cheese"},
			want:  []string{"French toast", "Oatmeal", "Hot chocolate", "Smoothie", "Grilled cheese"},
		},
		{
			name:  "overlapping keywords de-duplicated",
			input: []string{"  ", "Free-range EGGS "},
			want:  []string{"Scrambled eggs", "Omelette", "French toast"},
		},
		{
			name:  "singular and plural keys both match",
			input: []string{"Cherry tomatoes"},
			want:  []string{"Pasta sauce", "Bruschetta", "Salad", "Soup"},
		},
		{
			name:  "no match",
			input: []string{"Quinoa"},
			want:  []string{},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEngineCustomTable(t *testing.T) {
	e := NewEngine([]Rule{
		{Keyword: "oat", Dishes: []string{"Porridge", "Flapjacks"}},
		{Keyword: "jam", Dishes: []string{"Flapjacks", "Jam tarts"}},
	}, 2)
	got := e.Suggest([]string{"Jumbo oats", "Strawberry jam"})
	want := []string{"Porridge", "Flapjacks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggest = %q, want %q", got, want)
	}
}

func TestDefaultRulesAreLowercase(t *testing.T) {
	for _, r := range DefaultRules {
		for _, c := range r.Keyword {
			if c >= 'A' && c <= 'Z' {
				t.Errorf("keyword %q must be lowercase", r.Keyword)
			}
		}
		if len(r.Dishes) == 0 {
			t.Errorf("keyword %q has no dishes", r.Keyword)
		}
	}
}
