package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/viewmodel"
)

// streamKeepAlive is the interval of SSE ping events on an idle stream.
const streamKeepAlive = 25 * time.Second

// DashboardHandler serves the dashboard overview and its live stream.
type DashboardHandler struct {
	baseHandler
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(base baseHandler) *DashboardHandler {
	return &DashboardHandler{baseHandler: base}
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	dash := sess.Dashboard()
	settle(c, dash.Settled)
	c.JSON(http.StatusOK, dash.State())
}

// StreamDashboard handles GET /dashboard/stream. It sends the current state
// and then every recomputation as "dashboard" events. A slow client only
// receives the latest state.
func (h *DashboardHandler) StreamDashboard(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	release := sess.Hold()
	defer release()

	dash := sess.Dashboard()
	latest := make(chan viewmodel.DashboardState, 1)
	push := func(s viewmodel.DashboardState) {
		select {
		case <-latest:
		default:
		}
		select {
		case latest <- s:
		default:
		}
	}
	cancel := dash.OnChange(push)
	defer cancel()
	push(dash.State())

	ping := time.NewTicker(streamKeepAlive)
	defer ping.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case s := <-latest:
			c.SSEvent("dashboard", s)
			return true
		case <-ping.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

// SaveBudget handles PUT /dashboard/budget
func (h *DashboardHandler) SaveBudget(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req models.BudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	dash := sess.Dashboard()
	if err := dash.SaveBudget(c.Request.Context(), string(req.MonthlyLimit)); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, dash.State())
}
