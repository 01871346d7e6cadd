package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unimeal-backend-go/internal/models"
)

// BudgetHandler serves the budget page.
type BudgetHandler struct {
	baseHandler
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(base baseHandler) *BudgetHandler {
	return &BudgetHandler{baseHandler: base}
}

// GetBudget handles GET /budget
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	page := sess.Budget()
	settle(c, page.Settled)
	c.JSON(http.StatusOK, page.State())
}

// SaveLimit handles PUT /budget
func (h *BudgetHandler) SaveLimit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req models.BudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	page := sess.Budget()
	if err := page.SaveLimit(c.Request.Context(), string(req.MonthlyLimit)); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, page.State())
}
