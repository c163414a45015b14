package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/internal/interfaces/http/response"
	"token-registry.backend/internal/usecases"
)

// TreasuryHandler credits on-chain deposits
type TreasuryHandler struct {
	registryUsecase *usecases.RegistryUsecase
}

// NewTreasuryHandler creates a new treasury handler
func NewTreasuryHandler(registryUsecase *usecases.RegistryUsecase) *TreasuryHandler {
	return &TreasuryHandler{registryUsecase: registryUsecase}
}

// RecordDeposit verifies a transfer to the treasury wallet and credits it once
// POST /api/v1/treasury/deposits
func (h *TreasuryHandler) RecordDeposit(c *gin.Context) {
	var input entities.DepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	raw, err := hexutil.Decode(input.TxHash)
	if err != nil || len(raw) != common.HashLength {
		response.Error(c, domainerrors.BadRequest("txHash must be a 32-byte hex string"))
		return
	}

	deposit, err := h.registryUsecase.RecordDeposit(c.Request.Context(), common.BytesToHash(raw))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"txHash": deposit.TxHash.Hex(),
		"from":   deposit.From.Hex(),
		"amount": deposit.Amount.String(),
	})
}
