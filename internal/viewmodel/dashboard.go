package viewmodel

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/onboarding"
	"unimeal-backend-go/internal/suggest"
)

const (
	msgDashboardSignedOut     = "Sign in to set your budget."
	msgDashboardInvalidLimit  = "Enter a number greater than 0."
	msgDashboardSaveFailed    = "Could not save. Try again."
	dashboardExpiringPreview  = 4
	dashboardUpcomingMealsMax = 5
)

// DashboardState is the overview shown after sign-in.
type DashboardState struct {
	Status            Status             `json:"status"`
	Limit             *float64           `json:"monthlyLimit"`
	Spent             float64            `json:"spent"`
	Remaining         *float64           `json:"remaining"`
	BudgetStatus      *calc.BudgetStatus `json:"budgetStatus,omitempty"`
	BudgetWarning     string             `json:"budgetWarning,omitempty"`
	LimitLabel        string             `json:"limitLabel"`
	SpentLabel        string             `json:"spentLabel"`
	RemainingLabel    string             `json:"remainingLabel"`
	IngredientCount   int                `json:"ingredientCount"`
	MealCount         int                `json:"mealCount"`
	ExpiringSoonCount int                `json:"expiringSoonCount"`
	ExpiringSoon      []IngredientView   `json:"expiringSoon"`
	ExpiringPreview   []IngredientView   `json:"expiringPreview"`
	Suggestions       []string           `json:"suggestions"`
	UpcomingMeals     []MealView         `json:"upcomingMeals"`
	Onboarding        onboarding.State   `json:"onboarding"`
	SavingBudget      bool               `json:"savingBudget"`
	BudgetError       string             `json:"budgetError,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// Dashboard combines budget, ingredients and meals and drives onboarding.
type Dashboard struct {
	lifecycle[DashboardState]

	deps    Deps
	uid     string
	logger  *zap.Logger
	tracker *onboarding.Tracker

	mu          sync.Mutex
	ctx         context.Context
	status      Status
	budget      *models.Budget
	ingredients []models.Ingredient
	meals       []models.Meal
	saving      bool
	budgetErr   string
	err         string
}

// NewDashboard creates the dashboard for uid. Call Start to begin listening.
func NewDashboard(deps Deps, uid string) *Dashboard {
	logger := deps.logger()
	return &Dashboard{
		deps:    deps,
		uid:     uid,
		logger:  logger.Named("dashboard").With(zap.String("uid", uid)),
		tracker: onboarding.NewTracker(deps.Repos.Onboarding, uid, logger),
		ctx:     context.Background(),
		status:  StatusUninitialized,
	}
}

// Start subscribes to the budget, ingredients, meals and onboarding documents.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()

	if d.uid == "" {
		d.set(func() { d.status = StatusLoaded })
		return
	}
	d.set(func() { d.status = StatusLoading })

	d.track(d.tracker.OnChange(func(onboarding.State) { d.publish(d.State) }))
	d.tracker.Start(ctx)
	d.await(sourceBudget, sourceIngredients, sourceMeals)

	budget := d.deps.Repos.Budget.Subscribe(ctx, d.uid, func(b *models.Budget) {
		d.heard(sourceBudget)
		d.set(func() { d.budget = b })
		d.evaluateOnboarding()
	}, d.listenError(apperrors.ResourceBudget))
	ingredients := d.deps.Repos.Ingredients.Subscribe(ctx, d.uid, func(list []models.Ingredient) {
		d.heard(sourceIngredients)
		d.set(func() { d.ingredients = list })
		d.evaluateOnboarding()
	}, d.listenError(apperrors.ResourceIngredients))
	meals := d.deps.Repos.Meals.Subscribe(ctx, d.uid, func(list []models.Meal) {
		d.heard(sourceMeals)
		d.set(func() {
			d.meals = list
			d.status = StatusLoaded
		})
		d.evaluateOnboarding()
	}, d.listenError(apperrors.ResourceMeals))
	d.track(budget, ingredients, meals, d.tracker.Close)
}

// Close stops every listener, including onboarding.
func (d *Dashboard) Close() { d.release() }

func (d *Dashboard) listenError(resource apperrors.Resource) func(error) {
	return func(err error) {
		d.logger.Warn("Dashboard listener error", zap.String("resource", string(resource)), zap.Error(err))
		msg := apperrors.ListenMessage(err, resource)
		d.heard(string(resource))
		d.set(func() {
			d.err = msg
			if resource == apperrors.ResourceMeals {
				d.status = StatusError
			}
		})
	}
}

// evaluateOnboarding feeds the tracker the steps derived from the latest data.
func (d *Dashboard) evaluateOnboarding() {
	if d.isClosed() {
		return
	}
	d.mu.Lock()
	ctx := d.ctx
	steps := onboarding.StepsFor(d.budget, len(d.meals), len(d.ingredients))
	d.mu.Unlock()

	go func() {
		if _, err := d.tracker.Evaluate(ctx, steps); err != nil {
			d.logger.Warn("Failed to mark onboarding completed", zap.Error(err))
		}
	}()
}

// SkipOnboarding hides the onboarding overlay and stores completion.
func (d *Dashboard) SkipOnboarding(ctx context.Context) error {
	return d.tracker.Skip(ctx)
}

// SaveBudget is the dashboard's quick budget form.
func (d *Dashboard) SaveBudget(ctx context.Context, input string) error {
	d.set(func() { d.budgetErr = "" })
	if d.uid == "" {
		d.set(func() { d.budgetErr = msgDashboardSignedOut })
		return apperrors.WithMessage(apperrors.KindNotSignedIn, msgDashboardSignedOut, nil)
	}
	limit, err := validateLimit(input, msgDashboardInvalidLimit)
	if err != nil {
		d.set(func() { d.budgetErr = msgDashboardInvalidLimit })
		return err
	}

	d.set(func() { d.saving = true })
	now := d.deps.now()
	if err := d.deps.Repos.Budget.SetMonthlyLimit(ctx, d.uid, limit, now); err != nil {
		d.logger.Error("Failed to save monthly limit", zap.Error(err))
		d.set(func() { d.saving, d.budgetErr = false, msgDashboardSaveFailed })
		return apperrors.WithMessage(apperrors.KindWriteFailed, msgDashboardSaveFailed, err)
	}
	d.set(func() {
		d.saving = false
		d.budget = &models.Budget{MonthlyLimit: limit, UpdatedAt: now}
	})
	d.evaluateOnboarding()
	return nil
}

// Tracker exposes the embedded onboarding tracker.
func (d *Dashboard) Tracker() *onboarding.Tracker { return d.tracker }

// State returns the current derived state.
func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	status, budget, ingredients, meals := d.status, d.budget, d.ingredients, d.meals
	saving, budgetErr, errMsg := d.saving, d.budgetErr, d.err
	d.mu.Unlock()

	th := d.deps.thresholds()
	now := d.deps.now()

	var limit *float64
	if budget != nil {
		l := budget.MonthlyLimit
		limit = &l
	}
	spent := calc.TotalSpent(ingredients)
	remaining := calc.RemainingBudget(limit, spent)

	s := DashboardState{
		Status:          status,
		Limit:           limit,
		Spent:           spent,
		Remaining:       remaining,
		LimitLabel:      calc.FormatCurrency(limit),
		SpentLabel:      calc.FormatCurrency(&spent),
		RemainingLabel:  calc.FormatCurrency(remaining),
		IngredientCount: len(ingredients),
		MealCount:       len(meals),
		ExpiringSoon:    []IngredientView{},
		UpcomingMeals:   []MealView{},
		Onboarding:      d.tracker.State(),
		SavingBudget:    saving,
		BudgetError:     budgetErr,
		Error:           errMsg,
	}
	if remaining != nil {
		bs := calc.BudgetStatusFor(*remaining, *limit, th.LowBudgetRatio)
		s.BudgetStatus = &bs
		s.BudgetWarning = bs.Warning(*remaining)
	}

	expiring := calc.SortByExpiryThenName(th.ExpiringSoon(ingredients, now))
	names := make([]string, 0, len(expiring))
	for _, ing := range expiring {
		price := ing.Price
		s.ExpiringSoon = append(s.ExpiringSoon, IngredientView{
			Ingredient:   ing,
			ExpiringSoon: true,
			ExpiryLabel:  calc.FormatDate(ing.ExpiryDate),
			PriceLabel:   calc.FormatCurrency(&price),
		})
		names = append(names, ing.Name)
	}
	s.ExpiringSoonCount = len(s.ExpiringSoon)
	s.ExpiringPreview = s.ExpiringSoon
	if len(s.ExpiringPreview) > dashboardExpiringPreview {
		s.ExpiringPreview = s.ExpiringPreview[:dashboardExpiringPreview]
	}
	s.Suggestions = suggest.Suggest(names)

	upcoming := calc.SortByWeekday(meals)
	if len(upcoming) > dashboardUpcomingMealsMax {
		upcoming = upcoming[:dashboardUpcomingMealsMax]
	}
	s.UpcomingMeals = mealViews(upcoming, nil)
	return s
}

func (d *Dashboard) set(fn func()) {
	d.mu.Lock()
	fn()
	d.mu.Unlock()
	d.publish(d.State)
}

// Settled blocks until the first data or error has arrived, or ctx ends.
func (d *Dashboard) Settled(ctx context.Context) error {
	return settle(ctx, &d.lifecycle, func() Status {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.status
	})
}
