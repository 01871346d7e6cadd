package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/prefs"
	"unimeal-backend-go/internal/viewmodel"
)

// MealHandler serves the meals page, its export and its templates.
type MealHandler struct {
	baseHandler
	now func() time.Time
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(base baseHandler) *MealHandler {
	return &MealHandler{baseHandler: base, now: time.Now}
}

// weekdayQuery reads ?weekday=, empty meaning the whole week.
func (h *MealHandler) weekdayQuery(c *gin.Context) (models.Weekday, bool) {
	w := models.Weekday(strings.ToLower(strings.TrimSpace(c.Query("weekday"))))
	if w != "" && !w.Valid() {
		h.mapErrorToStatus(c, apperrors.Validation("weekday", "Please select a weekday."))
		return "", false
	}
	return w, true
}

// ListMeals handles GET /meals?weekday=
func (h *MealHandler) ListMeals(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	w, ok := h.weekdayQuery(c)
	if !ok {
		return
	}
	page := sess.Meals()
	settle(c, page.Settled)

	resp := MealsResponse{MealsState: page.View(w)}
	if resp.ViewMode == prefs.ViewWeek {
		resp.Week = viewmodel.WeekGridOf(resp.Meals)
	}
	c.JSON(http.StatusOK, resp)
}

// AddMeal handles POST /meals
func (h *MealHandler) AddMeal(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var form models.MealForm
	if !h.bindJSON(c, &form) {
		return
	}
	id, err := sess.Meals().Add(c.Request.Context(), form)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// DeleteMeal handles DELETE /meals/:mealId?confirm=true
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Meals().Delete(c.Request.Context(), c.Param("mealId"), confirmer(c)); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Meal deleted."})
}

// SetViewMode handles PUT /meals/view-mode
func (h *MealHandler) SetViewMode(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req models.ViewModeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := sess.Meals().SetViewMode(prefs.ViewMode(req.ViewMode)); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "View mode saved.", Data: gin.H{"viewMode": req.ViewMode}})
}

// ExportMeals handles GET /meals/export?weekday=&download=true. With
// download the text is sent as an attachment named after today's date.
func (h *MealHandler) ExportMeals(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	w, ok := h.weekdayQuery(c)
	if !ok {
		return
	}
	page := sess.Meals()
	settle(c, page.Settled)

	filename := viewmodel.ExportFilename(h.now())
	text := page.ExportTextFor(w)
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
		return
	}
	c.JSON(http.StatusOK, ExportResponse{Filename: filename, Text: text})
}

// ListTemplates handles GET /templates
func (h *MealHandler) ListTemplates(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	page := sess.Meals()
	settle(c, page.Settled)
	s := page.State()
	c.JSON(http.StatusOK, gin.H{"templates": s.Templates, "error": s.TemplatesError})
}

// SaveTemplate handles POST /templates
func (h *MealHandler) SaveTemplate(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var form models.MealForm
	if !h.bindJSON(c, &form) {
		return
	}
	id, err := sess.Meals().SaveTemplate(c.Request.Context(), form)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// AddFromTemplate handles POST /templates/:templateId/meals
func (h *MealHandler) AddFromTemplate(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	page := sess.Meals()
	settle(c, page.Settled)
	id, err := page.AddFromTemplate(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// DeleteTemplate handles DELETE /templates/:templateId?confirm=true
func (h *MealHandler) DeleteTemplate(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Meals().DeleteTemplate(c.Request.Context(), c.Param("templateId"), confirmer(c)); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Template deleted."})
}
