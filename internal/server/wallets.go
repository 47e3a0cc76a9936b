package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/heirloomlabs/heirloom/internal/entitlement/domain"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
)

func (s *Server) GetWallet(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	wallet, err := s.entitlementSvc.GetWallet(c.Request.Context(), caller.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

func (s *Server) ListWalletTransactions(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		AbortWithError(c, entitlementdomain.ErrUnauthorized)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, entitlementdomain.ErrInvalidRequest)
		return
	}

	transactions, info, err := s.entitlementSvc.ListSeatTransactions(c.Request.Context(), caller.UserID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"page_info":    info,
	})
}
