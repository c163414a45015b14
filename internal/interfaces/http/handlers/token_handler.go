package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/internal/interfaces/http/response"
	"token-registry.backend/internal/usecases"
)

// TokenHandler handles per-token endpoints
type TokenHandler struct {
	registryUsecase *usecases.RegistryUsecase
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(registryUsecase *usecases.RegistryUsecase) *TokenHandler {
	return &TokenHandler{registryUsecase: registryUsecase}
}

// Mint issues the next token to the caller
// POST /api/v1/tokens
func (h *TokenHandler) Mint(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	tokenID, err := h.registryUsecase.Mint(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"tokenId": tokenID,
		"to":      caller.Hex(),
	})
}

// GetToken returns holder and URI of a token
// GET /api/v1/tokens/:id
func (h *TokenHandler) GetToken(c *gin.Context) {
	tokenID, err := parseTokenID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.registryUsecase.Token(c.Request.Context(), tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, token)
}

// GetTokenURI returns the token URI
// GET /api/v1/tokens/:id/uri
func (h *TokenHandler) GetTokenURI(c *gin.Context) {
	tokenID, err := parseTokenID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	uri, err := h.registryUsecase.TokenURI(c.Request.Context(), tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokenId": tokenID, "uri": uri})
}

// SetTokenURI writes the token URI once
// PUT /api/v1/tokens/:id/uri
func (h *TokenHandler) SetTokenURI(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	tokenID, err := parseTokenID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.SetTokenURIInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.registryUsecase.SetTokenURI(c.Request.Context(), tokenID, *input.URI, caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokenId": tokenID, "uri": *input.URI})
}

// Transfer moves a token held by the caller
// POST /api/v1/tokens/:id/transfer
func (h *TokenHandler) Transfer(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	tokenID, err := parseTokenID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	to, err := parseAddress(input.Address, "address")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.registryUsecase.TransferToken(c.Request.Context(), tokenID, to, caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"tokenId": tokenID,
		"from":    caller.Hex(),
		"to":      to.Hex(),
	})
}

// GetRoyalty quotes the royalty for a sale price in wei
// GET /api/v1/tokens/:id/royalty?salePrice=1000
func (h *TokenHandler) GetRoyalty(c *gin.Context) {
	tokenID, err := parseTokenID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	salePrice, err := parseAmount(c.Query("salePrice"), "salePrice")
	if err != nil {
		response.Error(c, err)
		return
	}

	info := h.registryUsecase.RoyaltyInfo(c.Request.Context(), tokenID, salePrice)
	response.Success(c, http.StatusOK, gin.H{
		"tokenId":  tokenID,
		"receiver": info.Receiver.Hex(),
		"amount":   info.Amount.String(),
	})
}

// GetBalance counts the tokens an address holds
// GET /api/v1/accounts/:address/balance
func (h *TokenHandler) GetBalance(c *gin.Context) {
	holder, err := parseAddress(c.Param("address"), "address")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"address": holder.Hex(),
		"balance": h.registryUsecase.BalanceOf(c.Request.Context(), holder),
	})
}
