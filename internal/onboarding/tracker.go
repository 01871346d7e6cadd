// Package onboarding tracks the three first-run steps (set a budget, plan a
// meal, add an ingredient) and persists completion once all are done.
package onboarding

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/observe"
)

// Steps records which onboarding steps are done.
type Steps struct {
	HasBudget      bool `json:"hasBudget"`
	HasMeals       bool `json:"hasMeals"`
	HasIngredients bool `json:"hasIngredients"`
}

// Done reports whether every step is complete.
func (s Steps) Done() bool {
	return s.HasBudget && s.HasMeals && s.HasIngredients
}

// StepsFor derives the steps from the current page data. A budget counts as
// set as soon as its document exists.
func StepsFor(budget *models.Budget, mealCount, ingredientCount int) Steps {
	return Steps{
		HasBudget:      budget != nil,
		HasMeals:       mealCount > 0,
		HasIngredients: ingredientCount > 0,
	}
}

// State is the tracker's observable state. Completed is nil until the
// onboarding document has been read once.
type State struct {
	Completed   *bool `json:"completed"`
	Skipped     bool  `json:"skipped"`
	Steps       Steps `json:"steps"`
	ShowOverlay bool  `json:"showOverlay"`
}

// Tracker follows users/{uid}/preferences/onboarding for one user.
type Tracker struct {
	repo   db.OnboardingRepository
	uid    string
	logger *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	completed *bool
	skipped   bool
	pending   bool
	steps     Steps
	unsub     db.Unsubscribe
	listeners observe.Listeners[State]
}

// NewTracker creates a tracker for uid. Call Start to begin listening.
func NewTracker(repo db.OnboardingRepository, uid string, logger *zap.Logger) *Tracker {
	return &Tracker{
		repo:   repo,
		uid:    uid,
		logger: logger.Named("onboarding").With(zap.String("uid", uid)),
		ctx:    context.Background(),
	}
}

// Start subscribes to the onboarding document. ctx bounds the subscription
// and any completion write issued in response to a snapshot.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	unsub := t.repo.Subscribe(ctx, t.uid, t.onSnapshot, t.onError)

	t.mu.Lock()
	t.unsub = unsub
	t.mu.Unlock()
}

// Close stops listening.
func (t *Tracker) Close() {
	t.mu.Lock()
	unsub := t.unsub
	t.unsub = nil
	t.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (t *Tracker) onSnapshot(state *models.OnboardingState) {
	completed := state != nil && state.Completed
	t.mu.Lock()
	t.completed = &completed
	ctx, steps := t.ctx, t.steps
	t.mu.Unlock()
	t.emit()

	// Steps may have finished before the stored flag arrived, in which
	// case Evaluate skipped the write. Retry now that the flag is known.
	// This runs on the listener goroutine, so the write goes to its own
	// goroutine rather than blocking further snapshots; Evaluate's pending
	// guard keeps it to a single write.
	if !completed && steps.Done() {
		go func() {
			if _, err := t.Evaluate(ctx, steps); err != nil {
				t.logger.Warn("Failed to mark onboarding completed", zap.Error(err))
			}
		}()
	}
}

// onError treats an unreadable document as not completed.
func (t *Tracker) onError(err error) {
	if apperrors.KindOf(err) != apperrors.KindNotSignedIn {
		t.logger.Warn("Onboarding listener error", zap.Error(err))
	}
	completed := false
	t.mu.Lock()
	t.completed = &completed
	t.mu.Unlock()
	t.emit()
}

// Evaluate records steps and, when all are done and the stored flag is known
// to be false, writes the completion flag. At most one write is in flight,
// and none is issued once completion has succeeded. It reports whether a
// write was attempted.
func (t *Tracker) Evaluate(ctx context.Context, steps Steps) (bool, error) {
	t.mu.Lock()
	t.steps = steps
	should := steps.Done() && t.completed != nil && !*t.completed && !t.skipped && !t.pending
	if should {
		t.pending = true
	}
	t.mu.Unlock()
	t.emit()

	if !should {
		return false, nil
	}

	err := t.repo.MarkCompleted(ctx, t.uid)

	t.mu.Lock()
	t.pending = false
	if err == nil {
		done := true
		t.completed = &done
	}
	t.mu.Unlock()
	t.emit()

	if err != nil {
		return true, apperrors.WithMessage(apperrors.KindWriteFailed,
			apperrors.WriteMessage(err, apperrors.ResourceOnboarding, "finish onboarding"), err)
	}
	t.logger.Info("Onboarding completed")
	return true, nil
}

// Skip writes the completion flag regardless of the steps and hides the
// overlay for the rest of the session once the write succeeds.
func (t *Tracker) Skip(ctx context.Context) error {
	if t.uid == "" {
		return apperrors.ErrNotSignedIn
	}
	if err := t.repo.MarkCompleted(ctx, t.uid); err != nil {
		return apperrors.WithMessage(apperrors.KindWriteFailed,
			apperrors.WriteMessage(err, apperrors.ResourceOnboarding, "skip onboarding"), err)
	}
	t.mu.Lock()
	t.skipped = true
	t.mu.Unlock()
	t.emit()
	return nil
}

// State returns a snapshot of the tracker state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	var completed *bool
	if t.completed != nil {
		c := *t.completed
		completed = &c
	}
	return State{
		Completed:   completed,
		Skipped:     t.skipped,
		Steps:       t.steps,
		ShowOverlay: completed != nil && !*completed && !t.skipped,
	}
}

// OnChange registers fn for every state change and returns a cancel func.
func (t *Tracker) OnChange(fn func(State)) func() {
	return t.listeners.Add(fn)
}

func (t *Tracker) emit() {
	t.listeners.Emit(t.State())
}
