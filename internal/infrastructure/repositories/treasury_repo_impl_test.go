package repositories

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"token-registry.backend/internal/domain/entities"
	"token-registry.backend/internal/infrastructure/models"
)

func TestTreasuryRepository_Deposits(t *testing.T) {
	repo := NewTreasuryRepository(newMigratedDB(t))
	ctx := context.Background()
	hash := common.HexToHash("0xabc")

	exists, err := repo.DepositExists(ctx, hash)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.CreateDeposit(ctx, &entities.Deposit{
		TxHash:    hash,
		From:      aliceAddr,
		Amount:    big.NewInt(5),
		CreatedAt: time.Now(),
	}))

	exists, err = repo.DepositExists(ctx, hash)
	require.NoError(t, err)
	require.True(t, exists)

	err = repo.CreateDeposit(ctx, &entities.Deposit{TxHash: hash, From: aliceAddr, Amount: big.NewInt(5)})
	require.Error(t, err, "tx hash is the primary key")
}

func TestTreasuryRepository_CreateWithdrawal(t *testing.T) {
	db := newMigratedDB(t)
	repo := NewTreasuryRepository(db)

	require.NoError(t, repo.CreateWithdrawal(context.Background(), &entities.Withdrawal{
		To:        ownerAddr,
		Amount:    big.NewInt(1000),
		TxHash:    common.HexToHash("0xdef"),
		CreatedAt: time.Now(),
	}))

	var rows []models.Withdrawal
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "1000", rows[0].Amount)
	require.Equal(t, ownerAddr.Hex(), rows[0].ToAddress)
}
