package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/heirloomlabs/heirloom/internal/entitlement/domain"
)

type createProjectRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateProject(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	project, err := s.entitlementSvc.CreateProject(c.Request.Context(), caller.UserID, strings.TrimSpace(req.Name))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (s *Server) GetProjectPermissions(c *gin.Context) {
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

	caps, err := s.entitlementSvc.Permissions(c.Request.Context(), projectID, caller.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, caps)
}

func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(c.Param(name)))
}
