package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/core"
	"unimeal-backend-go/internal/middleware"
	"unimeal-backend-go/internal/viewmodel"
)

// settleTimeout bounds how long a GET waits for a freshly started page's
// first snapshot before returning the loading state.
const settleTimeout = 5 * time.Second

// baseHandler resolves the caller's session.
type baseHandler struct {
	sessions core.SessionService
	logger   *zap.Logger
}

func (h baseHandler) session(c *gin.Context) (*core.Session, bool) {
	sess, err := h.sessions.Session(middleware.UserID(c))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return nil, false
	}
	return sess, true
}

// settle waits for the page's first data, bounded by settleTimeout.
func settle(c *gin.Context, wait func(context.Context) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), settleTimeout)
	defer cancel()
	_ = wait(ctx)
}

// confirmer turns ?confirm=true into the delete confirmation.
func confirmer(c *gin.Context) viewmodel.Confirmer {
	if c.Query("confirm") == "true" {
		return viewmodel.AlwaysConfirm
	}
	return viewmodel.NeverConfirm
}

// mapErrorToStatus maps classified errors to HTTP status codes and ErrorResponse.
func (h baseHandler) mapErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	errResponse := ErrorResponse{Error: apperrors.MessageOf(err), Details: apperrors.FieldOf(err)}

	switch {
	case errors.Is(err, core.ErrSessionsClosed):
		statusCode = http.StatusServiceUnavailable
		errResponse.Error = "The server is shutting down. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusGatewayTimeout
		errResponse.Error = "The request timed out. Please try again."
	default:
		switch apperrors.KindOf(err) {
		case apperrors.KindNotSignedIn:
			statusCode = http.StatusUnauthorized
		case apperrors.KindPermissionDenied:
			statusCode = http.StatusForbidden
		case apperrors.KindUnavailable:
			statusCode = http.StatusServiceUnavailable
		case apperrors.KindValidation:
			statusCode = http.StatusBadRequest
		case apperrors.KindNotFound:
			statusCode = http.StatusNotFound
		case apperrors.KindConflict:
			statusCode = http.StatusConflict
		case apperrors.KindConfirmationRequired:
			statusCode = http.StatusPreconditionRequired
			errResponse.Details = "repeat the request with ?confirm=true"
		default:
			statusCode = http.StatusInternalServerError
		}
	}

	if errResponse.Error == "" {
		switch statusCode {
		case http.StatusUnauthorized:
			errResponse.Error = "You must be signed in."
		case http.StatusPreconditionRequired:
			errResponse.Error = "Confirmation required."
		default:
			errResponse.Error = "An unexpected internal server error occurred."
		}
	}
	if statusCode >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(statusCode, errResponse)
}

func (h baseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return false
	}
	return true
}
