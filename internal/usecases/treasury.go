package usecases

import (
	"math/big"

	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
)

// deposit credits a positive amount to the treasury balance
func deposit(state *entities.RegistryState, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domainerrors.ErrInvalidInput
	}
	if state.Balance == nil {
		state.Balance = new(big.Int)
	}
	state.Balance.Add(state.Balance, amount)
	return nil
}

// drain captures the whole balance and zeroes it before any payout happens
func drain(state *entities.RegistryState) *big.Int {
	amount := new(big.Int)
	if state.Balance != nil {
		amount.Set(state.Balance)
	}
	state.Balance = new(big.Int)
	return amount
}
