package viewmodel

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/prefs"
)

const (
	msgMealsSignedOutView     = "You must be signed in to view meals."
	msgMealsSignedOutAdd      = "You must be signed in to add meals."
	msgMealsSignedOutDelete   = "You must be signed in to delete meals."
	msgTemplatesSignedOutSave = "You must be signed in to save templates."
	msgMealAddFailed          = "Could not add meal. Please try again."
	msgMealDeleteFailed       = "Could not delete meal. Please try again."
	msgDeleteBusy             = "This item is already being deleted."
	msgTemplateSaveFailed     = "Could not save template. Please try again."
	msgTemplateDeleteFailed   = "Could not delete template. Please try again."
	msgTemplateNotFound       = "Template not found."
	msgInvalidWeekday         = "Please select a weekday."
	msgCopyFailed             = "Could not copy the meal plan. Please try again."

	// DeleteMealPrompt is the confirmation shown before a meal delete.
	DeleteMealPrompt = "Are you sure you want to delete this meal?"
	// DeleteTemplatePrompt is the confirmation shown before a template delete.
	DeleteTemplatePrompt = "Are you sure you want to delete this template?"
)

// FallbackWeekday is used for templates saved without a default day.
const FallbackWeekday = models.Monday

// CopiedFlagDuration is how long Copied stays set after a copy.
var CopiedFlagDuration = 2 * time.Second

// MealView is one row of the meal list.
type MealView struct {
	models.Meal
	WeekdayLabel string `json:"weekdayLabel"`
	Deleting     bool   `json:"deleting"`
}

// TemplateView is one saved template.
type TemplateView struct {
	models.MealTemplate
	WeekdayLabel string `json:"weekdayLabel,omitempty"`
	Deleting     bool   `json:"deleting"`
}

// WeekColumn holds the meals of one day in the week view.
type WeekColumn struct {
	Weekday models.Weekday `json:"weekday"`
	Label   string         `json:"label"`
	Meals   []MealView     `json:"meals"`
}

// MealsState is the derived state of the meals page.
type MealsState struct {
	Status         Status         `json:"status"`
	Meals          []MealView     `json:"meals"`
	Total          int            `json:"total"`
	Weekday        models.Weekday `json:"weekdayFilter,omitempty"`
	ViewMode       prefs.ViewMode `json:"viewMode"`
	Templates      []TemplateView `json:"templates"`
	Adding         bool           `json:"adding"`
	Copied         bool           `json:"copied"`
	Error          string         `json:"error,omitempty"`
	TemplatesError string         `json:"templatesError,omitempty"`
}

// MealsPage is the live weekly meal plan with templates and export.
type MealsPage struct {
	lifecycle[MealsState]

	deps   Deps
	uid    string
	logger *zap.Logger

	// resolved once; a nil Deps.Prefs would otherwise yield a new store per call
	prefStore prefs.Store

	copiedFor time.Duration

	mu           sync.Mutex
	status       Status
	meals        []models.Meal // newest first
	templates    []models.MealTemplate
	weekday      models.Weekday
	viewMode     prefs.ViewMode
	adding       bool
	deleting     map[string]bool // replaced on write
	copied       bool
	copyTimer    *time.Timer
	err          string
	templatesErr string
}

// NewMealsPage creates the page for uid. Call Start to begin listening.
func NewMealsPage(deps Deps, uid string) *MealsPage {
	return &MealsPage{
		deps:      deps,
		uid:       uid,
		logger:    deps.logger().Named("meals_page").With(zap.String("uid", uid)),
		prefStore: deps.prefs(),
		copiedFor: CopiedFlagDuration,
		status:    StatusUninitialized,
		viewMode:  prefs.ViewList,
		deleting:  map[string]bool{},
	}
}

// Start loads the view-mode preference and subscribes to meals and templates.
func (p *MealsPage) Start(ctx context.Context) {
	if pref, err := p.prefStore.Get(p.uid); err != nil {
		p.logger.Warn("Failed to read preferences, using defaults", zap.Error(err))
	} else {
		p.set(func() { p.viewMode = pref.ViewMode })
	}

	if p.uid == "" {
		p.set(func() { p.status, p.err = StatusError, msgMealsSignedOutView })
		return
	}
	p.set(func() { p.status, p.err = StatusLoading, "" })
	p.await(sourceMeals, sourceTemplates)

	meals := p.deps.Repos.Meals.Subscribe(ctx, p.uid, p.onMeals, func(err error) {
		p.logger.Warn("Meals listener error", zap.Error(err))
		msg := apperrors.ListenMessage(err, apperrors.ResourceMeals)
		p.heard(sourceMeals)
		p.set(func() { p.status, p.err = StatusError, msg })
	})
	templates := p.deps.Repos.Templates.Subscribe(ctx, p.uid, p.onTemplates, func(err error) {
		p.logger.Warn("Templates listener error", zap.Error(err))
		msg := apperrors.ListenMessage(err, apperrors.ResourceTemplates)
		p.heard(sourceTemplates)
		p.set(func() { p.templatesErr = msg })
	})
	p.track(meals, templates)
}

// Close stops listening and cancels a pending copied-flag reset.
func (p *MealsPage) Close() {
	p.release()
	p.mu.Lock()
	if p.copyTimer != nil {
		p.copyTimer.Stop()
	}
	p.mu.Unlock()
}

func (p *MealsPage) onMeals(list []models.Meal) {
	sorted := newestFirst(list, func(m models.Meal) time.Time { return m.CreatedAt })
	p.heard(sourceMeals)
	p.set(func() {
		p.meals = sorted
		p.status, p.err = StatusLoaded, ""
	})
}

func (p *MealsPage) onTemplates(list []models.MealTemplate) {
	sorted := newestFirst(list, func(t models.MealTemplate) time.Time { return t.CreatedAt })
	p.heard(sourceTemplates)
	p.set(func() {
		p.templates = sorted
		p.templatesErr = ""
	})
}

func newestFirst[T any](list []T, at func(T) time.Time) []T {
	out := make([]T, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool { return at(out[i]).After(at(out[j])) })
	return out
}

// SetWeekdayFilter limits the list and the export to one day. An empty
// value shows the whole week.
func (p *MealsPage) SetWeekdayFilter(w models.Weekday) error {
	w = models.Weekday(strings.ToLower(string(w)))
	if w != "" && !w.Valid() {
		return apperrors.Validation("weekday", msgInvalidWeekday)
	}
	p.set(func() { p.weekday = w })
	return nil
}

// SetViewMode switches between the list and week views and remembers the
// choice for the user.
func (p *MealsPage) SetViewMode(mode prefs.ViewMode) error {
	mode, err := prefs.ParseViewMode(string(mode))
	if err != nil {
		return apperrors.Validation("viewMode", err.Error())
	}
	if err := p.prefStore.Update(p.uid, func(pr *prefs.Preferences) { pr.ViewMode = mode }); err != nil {
		p.logger.Warn("Failed to persist view mode", zap.Error(err))
	}
	p.set(func() { p.viewMode = mode })
	return nil
}

// State returns the current state using the page's own weekday filter.
func (p *MealsPage) State() MealsState {
	p.mu.Lock()
	w := p.weekday
	p.mu.Unlock()
	return p.View(w)
}

// View derives the state for weekday w without changing the page's filter.
func (p *MealsPage) View(w models.Weekday) MealsState {
	p.mu.Lock()
	s := MealsState{
		Status:         p.status,
		Total:          len(p.meals),
		Weekday:        w,
		ViewMode:       p.viewMode,
		Adding:         p.adding,
		Copied:         p.copied,
		Error:          p.err,
		TemplatesError: p.templatesErr,
	}
	meals, templates, deleting := p.meals, p.templates, p.deleting
	p.mu.Unlock()

	s.Meals = mealViews(filterWeekday(meals, w), deleting)
	s.Templates = make([]TemplateView, 0, len(templates))
	for _, t := range templates {
		tv := TemplateView{MealTemplate: t, Deleting: deleting[templateKey(t.ID)]}
		if t.DefaultWeekday != "" {
			tv.WeekdayLabel = calc.WeekdayLabel(t.DefaultWeekday)
		}
		s.Templates = append(s.Templates, tv)
	}
	return s
}

// WeekGrid buckets the visible meals into Monday..Sunday columns.
func (p *MealsPage) WeekGrid() []WeekColumn {
	return WeekGridOf(p.State().Meals)
}

// WeekGridOf buckets meals into Monday..Sunday columns. Every column is
// present, empty or not.
func WeekGridOf(meals []MealView) []WeekColumn {
	grid := make([]WeekColumn, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		col := WeekColumn{Weekday: day, Label: calc.WeekdayLabel(day), Meals: []MealView{}}
		for _, m := range meals {
			if m.Weekday == day {
				col.Meals = append(col.Meals, m)
			}
		}
		grid = append(grid, col)
	}
	return grid
}

func filterWeekday(meals []models.Meal, w models.Weekday) []models.Meal {
	if w == "" {
		return meals
	}
	out := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if m.Weekday == w {
			out = append(out, m)
		}
	}
	return out
}

func mealViews(meals []models.Meal, deleting map[string]bool) []MealView {
	out := make([]MealView, 0, len(meals))
	for _, m := range meals {
		out = append(out, MealView{Meal: m, WeekdayLabel: calc.WeekdayLabel(m.Weekday), Deleting: deleting[m.ID]})
	}
	return out
}

// Add validates and stores a meal, returning its id.
func (p *MealsPage) Add(ctx context.Context, form models.MealForm) (string, error) {
	if p.uid == "" {
		p.set(func() { p.err = msgMealsSignedOutAdd })
		return "", apperrors.WithMessage(apperrors.KindNotSignedIn, msgMealsSignedOutAdd, nil)
	}
	meal, err := validateMeal(form)
	if err != nil {
		p.set(func() { p.err = apperrors.MessageOf(err) })
		return "", err
	}
	return p.addMeal(ctx, meal)
}

func (p *MealsPage) addMeal(ctx context.Context, meal models.Meal) (string, error) {
	p.set(func() { p.adding, p.err = true, "" })
	id, err := p.deps.Repos.Meals.Add(ctx, p.uid, meal)
	if err != nil {
		p.logger.Error("Failed to add meal", zap.Error(err))
		p.set(func() { p.adding, p.err = false, msgMealAddFailed })
		return "", apperrors.WithMessage(apperrors.KindWriteFailed, msgMealAddFailed, err)
	}
	p.set(func() { p.adding = false })
	p.logger.Info("Meal added", zap.String("meal_id", id), zap.String("weekday", string(meal.Weekday)))
	return id, nil
}

// Delete removes a meal after c approves.
func (p *MealsPage) Delete(ctx context.Context, id string, c Confirmer) error {
	if p.uid == "" {
		p.set(func() { p.err = msgMealsSignedOutDelete })
		return apperrors.WithMessage(apperrors.KindNotSignedIn, msgMealsSignedOutDelete, nil)
	}
	return p.deleteGuarded(ctx, id, c, DeleteMealPrompt, msgMealDeleteFailed, func(ctx context.Context) error {
		return p.deps.Repos.Meals.Delete(ctx, p.uid, id)
	})
}

// SaveTemplate stores the form's name and optional weekday as a template.
func (p *MealsPage) SaveTemplate(ctx context.Context, form models.MealForm) (string, error) {
	if p.uid == "" {
		p.set(func() { p.templatesErr = msgTemplatesSignedOutSave })
		return "", apperrors.WithMessage(apperrors.KindNotSignedIn, msgTemplatesSignedOutSave, nil)
	}
	tpl, err := validateTemplate(form)
	if err != nil {
		p.set(func() { p.templatesErr = apperrors.MessageOf(err) })
		return "", err
	}
	id, err := p.deps.Repos.Templates.Add(ctx, p.uid, tpl)
	if err != nil {
		p.logger.Error("Failed to save template", zap.Error(err))
		p.set(func() { p.templatesErr = msgTemplateSaveFailed })
		return "", apperrors.WithMessage(apperrors.KindWriteFailed, msgTemplateSaveFailed, err)
	}
	p.set(func() { p.templatesErr = "" })
	return id, nil
}

// AddFromTemplate plans a meal from a saved template on its default day,
// or on FallbackWeekday when it has none.
func (p *MealsPage) AddFromTemplate(ctx context.Context, templateID string) (string, error) {
	if p.uid == "" {
		p.set(func() { p.err = msgMealsSignedOutAdd })
		return "", apperrors.WithMessage(apperrors.KindNotSignedIn, msgMealsSignedOutAdd, nil)
	}
	tpl, ok := p.template(templateID)
	if !ok {
		return "", apperrors.WithMessage(apperrors.KindNotFound, msgTemplateNotFound, nil)
	}
	day := tpl.DefaultWeekday
	if !day.Valid() {
		day = FallbackWeekday
	}
	meal, err := validateMeal(models.MealForm{Name: tpl.Name, Weekday: string(day)})
	if err != nil {
		p.set(func() { p.err = apperrors.MessageOf(err) })
		return "", err
	}
	return p.addMeal(ctx, meal)
}

// DeleteTemplate removes a template after c approves.
func (p *MealsPage) DeleteTemplate(ctx context.Context, id string, c Confirmer) error {
	if p.uid == "" {
		p.set(func() { p.templatesErr = msgMealsSignedOutDelete })
		return apperrors.WithMessage(apperrors.KindNotSignedIn, msgMealsSignedOutDelete, nil)
	}
	return p.deleteGuarded(ctx, templateKey(id), c, DeleteTemplatePrompt, msgTemplateDeleteFailed, func(ctx context.Context) error {
		return p.deps.Repos.Templates.Delete(ctx, p.uid, id)
	})
}

func (p *MealsPage) template(id string) (models.MealTemplate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.templates {
		if t.ID == id {
			return t, true
		}
	}
	return models.MealTemplate{}, false
}

// templateKey keeps template ids apart from meal ids in the busy set.
func templateKey(id string) string { return "template/" + id }

func (p *MealsPage) deleteGuarded(ctx context.Context, key string, c Confirmer, prompt, failMsg string, del func(context.Context) error) error {
	p.mu.Lock()
	busy := p.deleting[key]
	p.mu.Unlock()
	if busy {
		return apperrors.WithMessage(apperrors.KindConflict, msgDeleteBusy, nil)
	}
	if err := confirm(ctx, c, prompt); err != nil {
		return err
	}

	p.set(func() {
		if p.deleting[key] {
			busy = true
			return
		}
		p.deleting = withFlag(p.deleting, key, true)
		p.err = ""
	})
	if busy {
		return apperrors.WithMessage(apperrors.KindConflict, msgDeleteBusy, nil)
	}

	err := del(ctx)
	p.set(func() {
		p.deleting = withFlag(p.deleting, key, false)
		if err != nil {
			p.err = failMsg
		}
	})
	if err != nil {
		p.logger.Error("Delete failed", zap.String("key", key), zap.Error(err))
		return apperrors.WithMessage(apperrors.KindWriteFailed, failMsg, err)
	}
	return nil
}

// ExportText renders the visible meals as plain text grouped by day in
// week order. Days without meals are left out.
func (p *MealsPage) ExportText() string {
	p.mu.Lock()
	w := p.weekday
	p.mu.Unlock()
	return p.ExportTextFor(w)
}

// ExportTextFor renders the export for weekday w, or the whole week when w is empty.
func (p *MealsPage) ExportTextFor(w models.Weekday) string {
	p.mu.Lock()
	meals := p.meals
	p.mu.Unlock()
	return exportText(filterWeekday(meals, w))
}

func exportText(meals []models.Meal) string {
	var b strings.Builder
	for _, day := range models.Weekdays {
		var names []string
		for _, m := range meals {
			if m.Weekday == day {
				names = append(names, m.Name)
			}
		}
		if len(names) == 0 {
			continue
		}
		b.WriteString(calc.WeekdayLabel(day))
		b.WriteString("\n")
		for _, n := range names {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// CopyExport writes the export to clip and sets Copied for CopiedFlagDuration.
func (p *MealsPage) CopyExport(ctx context.Context, clip Clipboard) error {
	if err := clip.WriteText(ctx, p.ExportText()); err != nil {
		p.logger.Warn("Clipboard write failed", zap.Error(err))
		p.set(func() { p.err = msgCopyFailed })
		return apperrors.WithMessage(apperrors.KindWriteFailed, msgCopyFailed, err)
	}
	p.set(func() {
		p.copied = true
		if p.copyTimer != nil {
			p.copyTimer.Stop()
		}
		p.copyTimer = time.AfterFunc(p.copiedFor, func() {
			p.set(func() { p.copied = false })
		})
	})
	return nil
}

// ExportFilename is the download name for the export made on now's date.
func ExportFilename(now time.Time) string {
	return "unimeal-meal-plan-" + now.Format(calc.DateLayout) + ".txt"
}

// DownloadExport returns the file name and content of the export.
func (p *MealsPage) DownloadExport(now time.Time) (string, string) {
	return ExportFilename(now), p.ExportText()
}

func (p *MealsPage) set(fn func()) {
	p.mu.Lock()
	fn()
	p.mu.Unlock()
	p.publish(p.State)
}

// Settled blocks until the first data or error has arrived, or ctx ends.
func (p *MealsPage) Settled(ctx context.Context) error {
	return settle(ctx, &p.lifecycle, func() Status {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.status
	})
}
