package handlers

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/internal/interfaces/http/middleware"
)

func parseTokenID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, domainerrors.BadRequest("token id must be a non-negative integer")
	}
	return id, nil
}

func parseAddress(value, field string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, domainerrors.BadRequest(field + " must be a 20-byte hex address")
	}
	return common.HexToAddress(value), nil
}

func parseAmount(value, field string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return nil, domainerrors.BadRequest(field + " must be a non-negative integer")
	}
	return amount, nil
}

func callerAddress(c *gin.Context) (common.Address, error) {
	caller, ok := middleware.GetCallerAddress(c)
	if !ok {
		return common.Address{}, domainerrors.Unauthenticated("authentication required")
	}
	return caller, nil
}
