package usecases

import (
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
)

func requireActive(state *entities.RegistryState) error {
	if state.Paused {
		return domainerrors.ErrOperationPaused
	}
	return nil
}

// setPaused reports whether the switch actually flipped
func setPaused(state *entities.RegistryState, paused bool) bool {
	if state.Paused == paused {
		return false
	}
	state.Paused = paused
	return true
}
