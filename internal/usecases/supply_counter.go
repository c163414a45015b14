package usecases

import (
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
)

// nextID previews the id the next mint will receive
func nextID(state *entities.RegistryState) uint64 {
	return state.TotalMinted
}

// allocate consumes the next id, or fails once MaxSupply ids are issued
func allocate(state *entities.RegistryState) (uint64, error) {
	if state.TotalMinted >= entities.MaxSupply {
		return 0, domainerrors.ErrSupplyExhausted
	}
	id := state.TotalMinted
	state.TotalMinted++
	return id, nil
}
