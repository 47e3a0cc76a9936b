package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/heirloomlabs/heirloom/internal/entitlement/domain"
	invitationdomain "github.com/heirloomlabs/heirloom/internal/invitation/domain"
	"github.com/heirloomlabs/heirloom/internal/permission"
	"go.uber.org/zap"
)

type createInvitationRequest struct {
	ProjectID    string `json:"project_id"`
	InviteeEmail string `json:"invitee_email"`
	Role         string `json:"role"`
}

type invitationTokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) CreateInvitation(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	invitation, err := s.entitlementSvc.CreateInvitation(
		c.Request.Context(),
		caller.UserID,
		projectID,
		strings.TrimSpace(req.InviteeEmail),
		permission.Role(strings.TrimSpace(req.Role)),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	if s.acceptLimiter.Enabled() {
		allowed, err := s.acceptLimiter.Allow(c.Request.Context(), caller.UserID)
		if err != nil {
			s.log.Warn("accept rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	var req invitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	acceptance, err := s.entitlementSvc.AcceptInvitation(c.Request.Context(), req.Token, caller)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, acceptance)
}

func (s *Server) DeclineInvitation(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	var req invitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	if err := s.entitlementSvc.DeclineInvitation(c.Request.Context(), req.Token, caller); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) RevokeInvitation(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	invitationID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	if err := s.entitlementSvc.RevokeInvitation(c.Request.Context(), invitationID, caller.UserID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListProjectInvitations(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	projectID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	status := invitationdomain.Status(strings.TrimSpace(c.Query("status")))
	if status != "" && !validInvitationStatus(status) {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	invitations, err := s.entitlementSvc.ListProjectInvitations(
		c.Request.Context(), projectID, caller.UserID, status, queryLimit(c),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

func validInvitationStatus(status invitationdomain.Status) bool {
	switch status {
	case invitationdomain.StatusPending,
		invitationdomain.StatusAccepted,
		invitationdomain.StatusDeclined,
		invitationdomain.StatusExpired,
		invitationdomain.StatusRevoked:
		return true
	default:
		return false
	}
}

func queryLimit(c *gin.Context) int {
	value := strings.TrimSpace(c.Query("limit"))
	if value == "" {
		return 0
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
