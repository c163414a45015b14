package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/internal/interfaces/http/response"
	"token-registry.backend/internal/usecases"
)

// AdminHandler handles owner-only registry operations. Authorization is
// decided by the registry itself, not by a route role.
type AdminHandler struct {
	registryUsecase *usecases.RegistryUsecase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(registryUsecase *usecases.RegistryUsecase) *AdminHandler {
	return &AdminHandler{registryUsecase: registryUsecase}
}

// Pause blocks minting
// POST /api/v1/admin/pause
func (h *AdminHandler) Pause(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.registryUsecase.Pause(c.Request.Context(), caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paused": true})
}

// Unpause re-enables minting
// POST /api/v1/admin/unpause
func (h *AdminHandler) Unpause(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.registryUsecase.Unpause(c.Request.Context(), caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paused": false})
}

// UpdatePaymentReceiver replaces the royalty receiver
// PUT /api/v1/admin/payment-receiver
func (h *AdminHandler) UpdatePaymentReceiver(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	receiver, err := parseAddress(input.Address, "address")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.registryUsecase.UpdatePaymentReceiver(c.Request.Context(), receiver, caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paymentReceiver": receiver.Hex()})
}

// UpdateContractURI replaces the collection metadata URI
// PUT /api/v1/admin/contract-uri
func (h *AdminHandler) UpdateContractURI(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.ContractURIInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.registryUsecase.UpdateContractURI(c.Request.Context(), input.URI, caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contractURI": input.URI})
}

// TransferOwnership hands the owner role to another address
// PUT /api/v1/admin/owner
func (h *AdminHandler) TransferOwnership(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	newOwner, err := parseAddress(input.Address, "address")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.registryUsecase.TransferOwnership(c.Request.Context(), newOwner, caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"owner": newOwner.Hex()})
}

// Withdraw pays the whole treasury balance to the owner.
// A payout broadcast without a receipt answers 202 with status "pending".
// POST /api/v1/admin/withdraw
func (h *AdminHandler) Withdraw(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	withdrawal, err := h.registryUsecase.Withdraw(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"amount": withdrawal.Amount.String()}
	if withdrawal.Amount.Sign() > 0 {
		body["txHash"] = withdrawal.TxHash.Hex()
	}
	if withdrawal.Pending {
		body["status"] = "pending"
		response.Success(c, http.StatusAccepted, body)
		return
	}
	response.Success(c, http.StatusOK, body)
}
