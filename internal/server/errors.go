package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/heirloomlabs/heirloom/internal/entitlement/domain"
	"github.com/heirloomlabs/heirloom/internal/identity"
)

var ErrRateLimited = errors.New("rate_limited")

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware turns the last gin error into the JSON error
// envelope. Handlers report errors with AbortWithError and never write
// error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, entitlementdomain.ErrUnauthorized),
		errors.Is(err, identity.ErrMissingCredential),
		errors.Is(err, identity.ErrInvalidCredential):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, entitlementdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, entitlementdomain.ErrInvitationNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "invitation_not_found",
			Message: "invitation not found",
		}
	case errors.Is(err, entitlementdomain.ErrProjectNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "project_not_found",
			Message: "project not found",
		}
	case errors.Is(err, entitlementdomain.ErrInvitationExpired):
		return http.StatusGone, errorPayload{
			Type:    "invitation_expired",
			Message: "invitation has expired",
		}
	case errors.Is(err, entitlementdomain.ErrInvitationAlreadyUsed):
		return http.StatusConflict, errorPayload{
			Type:    "invitation_already_used",
			Message: "invitation is no longer pending",
		}
	case errors.Is(err, entitlementdomain.ErrEmailMismatch):
		return http.StatusForbidden, errorPayload{
			Type:    "email_mismatch",
			Message: "invitation was issued to a different email",
		}
	case errors.Is(err, entitlementdomain.ErrAlreadyMember):
		return http.StatusConflict, errorPayload{
			Type:    "already_member",
			Message: "caller already holds this role on the project",
		}
	case errors.Is(err, entitlementdomain.ErrInsufficientSeats):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "insufficient_seats",
			Message: "the inviter's wallet has no seat of this kind",
		}
	case errors.Is(err, entitlementdomain.ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many attempts, retry later",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
