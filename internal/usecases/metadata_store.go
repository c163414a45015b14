package usecases

import (
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
)

func lookupToken(state *entities.RegistryState, tokenID uint64) (*entities.Token, error) {
	if tokenID >= state.TotalMinted || tokenID >= uint64(len(state.Tokens)) {
		return nil, domainerrors.ErrTokenNotFound
	}
	return &state.Tokens[tokenID], nil
}

// setURI writes a token URI once. A locked URI is never replaced.
func setURI(state *entities.RegistryState, tokenID uint64, uri string) error {
	token, err := lookupToken(state, tokenID)
	if err != nil {
		return err
	}
	if token.URI.IsLocked() {
		return domainerrors.ErrAlreadyLocked
	}
	token.URI = entities.LockedURI(uri)
	return nil
}

// tokenURI returns the locked URI, or baseURI+id when none was written
func tokenURI(state *entities.RegistryState, tokenID uint64) (string, bool, error) {
	token, err := lookupToken(state, tokenID)
	if err != nil {
		return "", false, err
	}
	if uri, ok := token.URI.Value(); ok {
		return uri, true, nil
	}
	return state.DefaultTokenURI(tokenID), false, nil
}

// mintedOnly fails with ErrTokenNotFound before any other guard runs, so an
// unminted id reports the same error to every caller.
func mintedOnly(tokenID uint64, next transition) transition {
	return func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		if _, err := lookupToken(state, tokenID); err != nil {
			return nil, err
		}
		return next(state)
	}
}
