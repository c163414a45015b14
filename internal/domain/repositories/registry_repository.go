package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"token-registry.backend/internal/domain/entities"
)

// RegistryRepository persists the registry aggregate
type RegistryRepository interface {
	// Load returns the stored state, or ErrNotFound before the first Save.
	Load(ctx context.Context) (*entities.RegistryState, error)
	// Save writes the scalar fields and every token whose row differs from prev.
	// prev may be nil, in which case all tokens are written.
	Save(ctx context.Context, prev, next *entities.RegistryState) error
}

// TreasuryRepository records money movements
type TreasuryRepository interface {
	CreateDeposit(ctx context.Context, deposit *entities.Deposit) error
	DepositExists(ctx context.Context, txHash common.Hash) (bool, error)
	CreateWithdrawal(ctx context.Context, withdrawal *entities.Withdrawal) error
}
