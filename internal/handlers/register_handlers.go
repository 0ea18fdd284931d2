package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kolectiva/lets_ledger/internal/core/services"
)

// RegisterLedgerRoutes mounts the authenticated ledger endpoints on rg.
func RegisterLedgerRoutes(rg *gin.RouterGroup, svcs *services.ServiceContainer) {
	h := NewLedgerHandler(svcs)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/balance", h.GetBalance)
		ledger.POST("/exchanges", h.Exchange)
		ledger.POST("/sweeps", h.Sweep)
		ledger.GET("/eligibility", h.GetEligibility)
		ledger.GET("/transactions", h.ListHistory)
	}
}
