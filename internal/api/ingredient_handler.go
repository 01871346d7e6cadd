package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/viewmodel"
)

// IngredientHandler serves the ingredients page.
type IngredientHandler struct {
	baseHandler
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(base baseHandler) *IngredientHandler {
	return &IngredientHandler{baseHandler: base}
}

// ListIngredients handles GET /ingredients?q=&expiringSoon=
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	page := sess.Ingredients()
	settle(c, page.Settled)
	c.JSON(http.StatusOK, page.View(viewmodel.IngredientFilter{
		Query:        c.Query("q"),
		ExpiringOnly: c.Query("expiringSoon") == "true",
	}))
}

// AddIngredient handles POST /ingredients
func (h *IngredientHandler) AddIngredient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var form models.IngredientForm
	if !h.bindJSON(c, &form) {
		return
	}
	id, err := sess.Ingredients().Add(c.Request.Context(), form)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// DeleteIngredient handles DELETE /ingredients/:ingredientId?confirm=true
func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id := c.Param("ingredientId")
	if err := sess.Ingredients().Delete(c.Request.Context(), id, confirmer(c)); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Ingredient deleted."})
}
