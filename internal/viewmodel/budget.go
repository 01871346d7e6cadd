package viewmodel

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/models"
)

const (
	msgBudgetSignedOutView   = "You must be signed in to view your budget."
	msgBudgetSignedOutSave   = "You must be signed in to update your budget."
	msgBudgetInvalidLimit    = "Monthly limit must be a number greater than 0."
	msgBudgetSaveFailed      = "Could not save your budget. Please try again."
	msgBudgetListenFailed    = "Failed to load your budget. Please check your connection and try again."
	msgBudgetCostsIncomplete = "Failed to load ingredient costs. Your budget summary may be incomplete."
)

// BudgetState is the derived state of the budget page.
type BudgetState struct {
	Status         Status             `json:"status"`
	Limit          *float64           `json:"monthlyLimit"`
	Spent          float64            `json:"spent"`
	Remaining      *float64           `json:"remaining"`
	BudgetStatus   *calc.BudgetStatus `json:"budgetStatus,omitempty"`
	StatusMessage  string             `json:"statusMessage,omitempty"`
	LimitLabel     string             `json:"limitLabel"`
	SpentLabel     string             `json:"spentLabel"`
	RemainingLabel string             `json:"remainingLabel"`
	Saving         bool               `json:"saving"`
	Error          string             `json:"error,omitempty"`
}

// BudgetPage tracks the monthly limit against the cost of stored ingredients.
type BudgetPage struct {
	lifecycle[BudgetState]

	deps   Deps
	uid    string
	logger *zap.Logger

	mu          sync.Mutex
	status      Status
	limit       *float64
	ingredients []models.Ingredient
	saving      bool
	err         string
}

// NewBudgetPage creates the page for uid. Call Start to begin listening.
func NewBudgetPage(deps Deps, uid string) *BudgetPage {
	return &BudgetPage{
		deps:   deps,
		uid:    uid,
		logger: deps.logger().Named("budget_page").With(zap.String("uid", uid)),
		status: StatusUninitialized,
	}
}

// Start subscribes to the budget document and the ingredient collection.
// The page reports Loaded once the ingredient costs have arrived.
func (p *BudgetPage) Start(ctx context.Context) {
	if p.uid == "" {
		p.set(func() { p.status, p.err = StatusError, msgBudgetSignedOutView })
		return
	}
	p.set(func() { p.status, p.err = StatusLoading, "" })
	p.await(sourceBudget, sourceIngredients)

	budget := p.deps.Repos.Budget.Subscribe(ctx, p.uid, p.onBudget, func(err error) {
		p.logger.Warn("Budget listener error", zap.Error(err))
		p.heard(sourceBudget)
		p.set(func() { p.err = msgBudgetListenFailed })
	})
	ingredients := p.deps.Repos.Ingredients.Subscribe(ctx, p.uid, p.onIngredients, func(err error) {
		p.logger.Warn("Ingredient cost listener error", zap.Error(err))
		p.heard(sourceIngredients)
		p.set(func() { p.status, p.err = StatusError, msgBudgetCostsIncomplete })
	})
	p.track(budget, ingredients)
}

// Close stops every listener of the page.
func (p *BudgetPage) Close() { p.release() }

func (p *BudgetPage) onBudget(b *models.Budget) {
	p.heard(sourceBudget)
	p.set(func() {
		if b == nil {
			p.limit = nil
			return
		}
		limit := b.MonthlyLimit
		p.limit = &limit
	})
}

func (p *BudgetPage) onIngredients(list []models.Ingredient) {
	p.heard(sourceIngredients)
	p.set(func() {
		p.ingredients = list
		p.status = StatusLoaded
		if p.err == msgBudgetCostsIncomplete {
			p.err = ""
		}
	})
}

// SaveLimit validates input and stores it as the monthly limit. The prior
// limit is kept when the write fails.
func (p *BudgetPage) SaveLimit(ctx context.Context, input string) error {
	p.set(func() { p.err = "" })
	if p.uid == "" {
		p.set(func() { p.err = msgBudgetSignedOutSave })
		return apperrors.WithMessage(apperrors.KindNotSignedIn, msgBudgetSignedOutSave, nil)
	}
	limit, err := validateLimit(input, msgBudgetInvalidLimit)
	if err != nil {
		p.set(func() { p.err = msgBudgetInvalidLimit })
		return err
	}

	p.set(func() { p.saving = true })
	err = p.deps.Repos.Budget.SetMonthlyLimit(ctx, p.uid, limit, p.deps.now())
	if err != nil {
		p.logger.Error("Failed to save monthly limit", zap.Error(err))
		p.set(func() { p.saving, p.err = false, msgBudgetSaveFailed })
		return apperrors.WithMessage(apperrors.KindWriteFailed, msgBudgetSaveFailed, err)
	}
	p.set(func() {
		p.saving = false
		p.limit = &limit
	})
	return nil
}

// State returns the current derived state.
func (p *BudgetPage) State() BudgetState {
	p.mu.Lock()
	status, limit, list, saving, errMsg := p.status, p.limit, p.ingredients, p.saving, p.err
	p.mu.Unlock()
	if limit != nil {
		l := *limit
		limit = &l
	}

	spent := calc.TotalSpent(list)
	remaining := calc.RemainingBudget(limit, spent)
	s := BudgetState{
		Status:         status,
		Limit:          limit,
		Spent:          spent,
		Remaining:      remaining,
		LimitLabel:     calc.FormatCurrency(limit),
		SpentLabel:     calc.FormatCurrency(&spent),
		RemainingLabel: calc.FormatCurrency(remaining),
		Saving:         saving,
		Error:          errMsg,
	}
	if remaining != nil {
		bs := calc.BudgetStatusFor(*remaining, *limit, p.deps.thresholds().LowBudgetRatio)
		s.BudgetStatus = &bs
		s.StatusMessage = bs.Message(*remaining)
	}
	return s
}

func (p *BudgetPage) set(fn func()) {
	p.mu.Lock()
	fn()
	p.mu.Unlock()
	p.publish(p.State)
}

// Settled blocks until the first data or error has arrived, or ctx ends.
func (p *BudgetPage) Settled(ctx context.Context) error {
	return settle(ctx, &p.lifecycle, func() Status {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.status
	})
}
