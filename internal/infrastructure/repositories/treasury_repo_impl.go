package repositories

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"token-registry.backend/internal/domain/entities"
	"token-registry.backend/internal/infrastructure/models"
	"token-registry.backend/pkg/utils"
)

// TreasuryRepositoryImpl implements TreasuryRepository
type TreasuryRepositoryImpl struct {
	db *gorm.DB
}

// NewTreasuryRepository creates a new treasury repository
func NewTreasuryRepository(db *gorm.DB) *TreasuryRepositoryImpl {
	return &TreasuryRepositoryImpl{db: db}
}

func (r *TreasuryRepositoryImpl) CreateDeposit(ctx context.Context, deposit *entities.Deposit) error {
	m := &models.Deposit{
		TxHash:      deposit.TxHash.Hex(),
		FromAddress: deposit.From.Hex(),
		Amount:      deposit.Amount.String(),
		CreatedAt:   deposit.CreatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create deposit: %w", err)
	}
	return nil
}

func (r *TreasuryRepositoryImpl) DepositExists(ctx context.Context, txHash common.Hash) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.Deposit{}).
		Where("tx_hash = ?", txHash.Hex()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TreasuryRepositoryImpl) CreateWithdrawal(ctx context.Context, withdrawal *entities.Withdrawal) error {
	m := &models.Withdrawal{
		ID:        utils.GenerateUUIDv7(),
		ToAddress: withdrawal.To.Hex(),
		Amount:    withdrawal.Amount.String(),
		TxHash:    withdrawal.TxHash.Hex(),
		CreatedAt: withdrawal.CreatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create withdrawal: %w", err)
	}
	return nil
}
