package viewmodel

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type ingredientInput struct {
	Name       string  `json:"name" validate:"required"`
	Quantity   float64 `json:"quantity" validate:"gt=0"`
	Unit       string  `json:"unit" validate:"oneof=kg g L mL pieces pack"`
	Price      float64 `json:"price" validate:"gte=0"`
	ExpiryDate string  `json:"expiryDate" validate:"required,datetime=2006-01-02"`
}

var ingredientMessages = map[string]string{
	"name":                "Ingredient name is required.",
	"quantity":            "Quantity must be greater than 0.",
	"unit":                "Please select a unit.",
	"price":               "Price must be 0 or greater.",
	"expiryDate.required": "Expiry date is required.",
	"expiryDate.datetime": "Expiry date must be a valid date (YYYY-MM-DD).",
}

type mealInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Weekday string `json:"weekday" validate:"oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

var mealMessages = map[string]string{
	"name.required": "Meal name is required.",
	"name.max":      "Meal name must be 100 characters or fewer.",
	"weekday":       "Please select a weekday.",
}

type templateInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Weekday string `json:"weekday" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

// parseNumber returns NaN for input that is not a finite number so that
// range rules reject it. ParseFloat accepts "Inf" and "infinity", which
// would otherwise pass gt=0 and gte=0.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// validateIngredient checks the add-ingredient form and returns the
// ingredient to store. An empty price means unknown and is stored as 0.
func validateIngredient(form models.IngredientForm) (models.Ingredient, error) {
	in := ingredientInput{
		Name:       strings.TrimSpace(form.Name),
		Quantity:   parseNumber(string(form.Quantity)),
		Unit:       strings.TrimSpace(form.Unit),
		ExpiryDate: strings.TrimSpace(form.ExpiryDate),
	}
	if price := strings.TrimSpace(string(form.Price)); price != "" {
		in.Price = parseNumber(price)
	}
	if err := check(in, ingredientMessages); err != nil {
		return models.Ingredient{}, err
	}
	return models.Ingredient{
		Name:       in.Name,
		Quantity:   in.Quantity,
		Unit:       models.Unit(in.Unit),
		Price:      in.Price,
		ExpiryDate: in.ExpiryDate,
	}, nil
}

func validateMeal(form models.MealForm) (models.Meal, error) {
	in := mealInput{
		Name:    strings.TrimSpace(form.Name),
		Weekday: strings.ToLower(strings.TrimSpace(form.Weekday)),
	}
	if err := check(in, mealMessages); err != nil {
		return models.Meal{}, err
	}
	return models.Meal{Name: in.Name, Weekday: models.Weekday(in.Weekday)}, nil
}

func validateTemplate(form models.MealForm) (models.MealTemplate, error) {
	in := templateInput{
		Name:    strings.TrimSpace(form.Name),
		Weekday: strings.ToLower(strings.TrimSpace(form.Weekday)),
	}
	if err := check(in, mealMessages); err != nil {
		return models.MealTemplate{}, err
	}
	return models.MealTemplate{Name: in.Name, DefaultWeekday: models.Weekday(in.Weekday)}, nil
}

func validateLimit(input, message string) (float64, error) {
	v, err := calc.ParseLimit(input)
	if err != nil {
		return 0, apperrors.Validation("monthlyLimit", message)
	}
	return v, nil
}

// check runs the struct rules and converts the first failure into a
// field-specific validation error. messages is keyed by "field.tag" or
// by "field" alone.
func check(in interface{}, messages map[string]string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.New(apperrors.KindValidation, err)
	}
	fe := verrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg, ok = messages[fe.Field()]
	}
	if !ok {
		msg = fe.Error()
	}
	return apperrors.Validation(fe.Field(), msg)
}
