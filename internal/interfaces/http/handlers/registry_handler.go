package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"token-registry.backend/internal/interfaces/http/response"
	"token-registry.backend/internal/usecases"
	"token-registry.backend/pkg/utils"
)

// RegistryHandler serves registry-wide reads and the event feed
type RegistryHandler struct {
	registryUsecase *usecases.RegistryUsecase
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registryUsecase *usecases.RegistryUsecase) *RegistryHandler {
	return &RegistryHandler{registryUsecase: registryUsecase}
}

// GetInfo returns a registry snapshot
// GET /api/v1/registry
func (h *RegistryHandler) GetInfo(c *gin.Context) {
	response.Success(c, http.StatusOK, h.registryUsecase.Info(c.Request.Context()))
}

// GetContractURI returns the collection metadata URI
// GET /api/v1/registry/contract-uri
func (h *RegistryHandler) GetContractURI(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"contractURI": h.registryUsecase.ContractURI(c.Request.Context())})
}

// GetNextTokenID previews the next token id
// GET /api/v1/tokens/next-id
func (h *RegistryHandler) GetNextTokenID(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"nextTokenId": h.registryUsecase.NextTokenID(c.Request.Context())})
}

// ListEvents returns the event outbox, newest first
// GET /api/v1/events?page=1&limit=20
func (h *RegistryHandler) ListEvents(c *gin.Context) {
	var query utils.PaginationParams
	_ = c.ShouldBindQuery(&query)
	pagination := utils.GetPaginationParams(query.Page, query.Limit)

	events, total, err := h.registryUsecase.ListEvents(c.Request.Context(), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, events, utils.CalculateMeta(total, pagination.Page, pagination.Limit))
}
