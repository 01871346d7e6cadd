package viewmodel

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/models"
)

const (
	msgIngredientsSignedOutView   = "You must be signed in to view ingredients."
	msgIngredientsSignedOutAdd    = "You must be signed in to add ingredients."
	msgIngredientsSignedOutDelete = "You must be signed in to delete ingredients."
	msgIngredientAddFailed        = "Could not add ingredient. Please try again."
	msgIngredientDeleteFailed     = "Could not delete ingredient. Please try again."
	msgIngredientDeleteBusy       = "This ingredient is already being deleted."

	// DeleteIngredientPrompt is the confirmation shown before a delete.
	DeleteIngredientPrompt = "Are you sure you want to delete this ingredient?"
)

// IngredientView is one row of the ingredient list.
type IngredientView struct {
	models.Ingredient
	ExpiringSoon bool   `json:"expiringSoon"`
	ExpiryLabel  string `json:"expiryLabel"`
	PriceLabel   string `json:"priceLabel"`
	Deleting     bool   `json:"deleting"`
}

// IngredientFilter narrows the visible list. Both conditions apply together.
type IngredientFilter struct {
	Query        string `json:"query"`
	ExpiringOnly bool   `json:"expiringOnly"`
}

// IngredientsState is the derived state of the ingredients page.
type IngredientsState struct {
	Status            Status           `json:"status"`
	Items             []IngredientView `json:"items"`
	Total             int              `json:"total"`
	ExpiringSoonCount int              `json:"expiringSoonCount"`
	Filter            IngredientFilter `json:"filter"`
	Adding            bool             `json:"adding"`
	Error             string           `json:"error,omitempty"`
}

// IngredientsPage is the live ingredient list with its add and delete forms.
type IngredientsPage struct {
	lifecycle[IngredientsState]

	deps   Deps
	uid    string
	logger *zap.Logger

	mu       sync.Mutex
	status   Status
	items    []models.Ingredient // sorted by expiry, then name
	filter   IngredientFilter
	adding   bool
	deleting map[string]bool // replaced on write
	err      string
}

// NewIngredientsPage creates the page for uid. Call Start to begin listening.
func NewIngredientsPage(deps Deps, uid string) *IngredientsPage {
	return &IngredientsPage{
		deps:     deps,
		uid:      uid,
		logger:   deps.logger().Named("ingredients_page").With(zap.String("uid", uid)),
		status:   StatusUninitialized,
		deleting: map[string]bool{},
	}
}

// Start subscribes to the ingredient collection.
func (p *IngredientsPage) Start(ctx context.Context) {
	if p.uid == "" {
		p.set(func() { p.status, p.err = StatusError, msgIngredientsSignedOutView })
		return
	}
	p.set(func() { p.status, p.err = StatusLoading, "" })
	p.track(p.deps.Repos.Ingredients.Subscribe(ctx, p.uid, p.onSnapshot, p.onError))
}

// Close stops listening.
func (p *IngredientsPage) Close() { p.release() }

func (p *IngredientsPage) onSnapshot(list []models.Ingredient) {
	sorted := calc.SortByExpiryThenName(list)
	p.set(func() {
		p.items = sorted
		p.status, p.err = StatusLoaded, ""
	})
}

// onError keeps the last list and shows the banner.
func (p *IngredientsPage) onError(err error) {
	p.logger.Warn("Ingredients listener error", zap.Error(err))
	msg := apperrors.ListenMessage(err, apperrors.ResourceIngredients)
	p.set(func() { p.status, p.err = StatusError, msg })
}

// SetQuery sets the case-insensitive name filter.
func (p *IngredientsPage) SetQuery(q string) {
	p.set(func() { p.filter.Query = q })
}

// SetExpiringOnly toggles the expiring-soon filter.
func (p *IngredientsPage) SetExpiringOnly(on bool) {
	p.set(func() { p.filter.ExpiringOnly = on })
}

// State returns the current state using the page's own filter.
func (p *IngredientsPage) State() IngredientsState {
	p.mu.Lock()
	f := p.filter
	p.mu.Unlock()
	return p.View(f)
}

// View derives the state for f without changing the page's filter.
func (p *IngredientsPage) View(f IngredientFilter) IngredientsState {
	p.mu.Lock()
	status, items, adding, deleting, errMsg := p.status, p.items, p.adding, p.deleting, p.err
	p.mu.Unlock()

	th := p.deps.thresholds()
	now := p.deps.now()
	query := strings.ToLower(strings.TrimSpace(f.Query))

	s := IngredientsState{
		Status: status,
		Items:  []IngredientView{},
		Total:  len(items),
		Filter: f,
		Adding: adding,
		Error:  errMsg,
	}
	for _, ing := range items {
		soon := th.IsExpiringSoon(ing.ExpiryDate, now)
		if soon {
			s.ExpiringSoonCount++
		}
		if query != "" && !strings.Contains(strings.ToLower(ing.Name), query) {
			continue
		}
		if f.ExpiringOnly && !soon {
			continue
		}
		price := ing.Price
		s.Items = append(s.Items, IngredientView{
			Ingredient:   ing,
			ExpiringSoon: soon,
			ExpiryLabel:  calc.FormatDate(ing.ExpiryDate),
			PriceLabel:   calc.FormatCurrency(&price),
			Deleting:     deleting[ing.ID],
		})
	}
	return s
}

// Add validates form and stores a new ingredient, returning its id. The
// list refreshes through the listener.
func (p *IngredientsPage) Add(ctx context.Context, form models.IngredientForm) (string, error) {
	if p.uid == "" {
		p.set(func() { p.err = msgIngredientsSignedOutAdd })
		return "", apperrors.WithMessage(apperrors.KindNotSignedIn, msgIngredientsSignedOutAdd, nil)
	}
	ing, err := validateIngredient(form)
	if err != nil {
		p.set(func() { p.err = apperrors.MessageOf(err) })
		return "", err
	}

	p.set(func() { p.adding, p.err = true, "" })
	id, err := p.deps.Repos.Ingredients.Add(ctx, p.uid, ing)
	if err != nil {
		p.logger.Error("Failed to add ingredient", zap.Error(err))
		p.set(func() { p.adding, p.err = false, msgIngredientAddFailed })
		return "", apperrors.WithMessage(apperrors.KindWriteFailed, msgIngredientAddFailed, err)
	}
	p.set(func() { p.adding = false })
	p.logger.Info("Ingredient added", zap.String("ingredient_id", id))
	return id, nil
}

// Delete removes an ingredient after c approves. A second delete of the
// same id while the first is in flight fails with a conflict.
func (p *IngredientsPage) Delete(ctx context.Context, id string, c Confirmer) error {
	if p.uid == "" {
		p.set(func() { p.err = msgIngredientsSignedOutDelete })
		return apperrors.WithMessage(apperrors.KindNotSignedIn, msgIngredientsSignedOutDelete, nil)
	}
	if p.isDeleting(id) {
		return apperrors.WithMessage(apperrors.KindConflict, msgIngredientDeleteBusy, nil)
	}
	if err := confirm(ctx, c, DeleteIngredientPrompt); err != nil {
		return err
	}

	var busy bool
	p.set(func() {
		if p.deleting[id] {
			busy = true
			return
		}
		p.deleting = withFlag(p.deleting, id, true)
		p.err = ""
	})
	if busy {
		return apperrors.WithMessage(apperrors.KindConflict, msgIngredientDeleteBusy, nil)
	}

	err := p.deps.Repos.Ingredients.Delete(ctx, p.uid, id)
	p.set(func() {
		p.deleting = withFlag(p.deleting, id, false)
		if err != nil {
			p.err = msgIngredientDeleteFailed
		}
	})
	if err != nil {
		p.logger.Error("Failed to delete ingredient", zap.String("ingredient_id", id), zap.Error(err))
		return apperrors.WithMessage(apperrors.KindWriteFailed, msgIngredientDeleteFailed, err)
	}
	return nil
}

func (p *IngredientsPage) isDeleting(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deleting[id]
}

func (p *IngredientsPage) set(fn func()) {
	p.mu.Lock()
	fn()
	p.mu.Unlock()
	p.publish(p.State)
}

// withFlag returns a copy of m with id set or cleared.
func withFlag(m map[string]bool, id string, on bool) map[string]bool {
	next := make(map[string]bool, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	if on {
		next[id] = true
	} else {
		delete(next, id)
	}
	return next
}

// Settled blocks until the first data or error has arrived, or ctx ends.
func (p *IngredientsPage) Settled(ctx context.Context) error {
	return settle(ctx, &p.lifecycle, func() Status {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.status
	})
}
