package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarship-fund.backend/internal/interfaces/http/response"
	"scholarship-fund.backend/internal/usecases"
)

// OnchainAuditHandler compares the registry with the deployed contract
type OnchainAuditHandler struct {
	audit *usecases.OnchainAuditUsecase
}

// NewOnchainAuditHandler creates a new audit handler
func NewOnchainAuditHandler(audit *usecases.OnchainAuditUsecase) *OnchainAuditHandler {
	return &OnchainAuditHandler{audit: audit}
}

// Audit GET /api/v1/admin/onchain/audit
func (h *OnchainAuditHandler) Audit(c *gin.Context) {
	report, err := h.audit.Audit(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}
