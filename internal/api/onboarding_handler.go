package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OnboardingHandler serves the onboarding overlay state.
type OnboardingHandler struct {
	baseHandler
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(base baseHandler) *OnboardingHandler {
	return &OnboardingHandler{baseHandler: base}
}

// GetOnboarding handles GET /onboarding
func (h *OnboardingHandler) GetOnboarding(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	dash := sess.Dashboard()
	settle(c, dash.Settled)
	c.JSON(http.StatusOK, dash.State().Onboarding)
}

// SkipOnboarding handles POST /onboarding/skip
func (h *OnboardingHandler) SkipOnboarding(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	dash := sess.Dashboard()
	if err := dash.SkipOnboarding(c.Request.Context()); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, dash.State().Onboarding)
}
