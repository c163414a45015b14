package usecases

import (
	"github.com/ethereum/go-ethereum/common"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
)

// transition applies a state change to a cloned registry state and returns
// the events it produced. Returning an error discards the clone.
type transition func(state *entities.RegistryState) ([]*entities.RegistryEvent, error)

// requireOwner fails unless caller is the registry owner
func requireOwner(state *entities.RegistryState, caller common.Address) error {
	if caller != state.Owner {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

// ownerOnly runs next only when caller owns the registry
func ownerOnly(caller common.Address, next transition) transition {
	return func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		if err := requireOwner(state, caller); err != nil {
			return nil, err
		}
		return next(state)
	}
}
