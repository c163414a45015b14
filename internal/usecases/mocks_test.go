package usecases_test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"token-registry.backend/internal/domain/entities"
	"token-registry.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

// Do runs f and then reports the mocked commit result.
func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	args := m.Called(ctx, f)
	if err := f(ctx); err != nil {
		return err
	}
	return args.Error(0)
}

// Mock RegistryRepository
type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) Load(ctx context.Context) (*entities.RegistryState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RegistryState), args.Error(1)
}

func (m *MockRegistryRepository) Save(ctx context.Context, prev, next *entities.RegistryState) error {
	args := m.Called(ctx, prev, next)
	return args.Error(0)
}

// Mock TreasuryRepository
type MockTreasuryRepository struct {
	mock.Mock
}

func (m *MockTreasuryRepository) CreateDeposit(ctx context.Context, deposit *entities.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockTreasuryRepository) DepositExists(ctx context.Context, txHash common.Hash) (bool, error) {
	args := m.Called(ctx, txHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockTreasuryRepository) CreateWithdrawal(ctx context.Context, withdrawal *entities.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

// Mock EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, events ...*entities.RegistryEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventRepository) List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.RegistryEvent, int64, error) {
	args := m.Called(ctx, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.RegistryEvent), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) ListUnrelayed(ctx context.Context, limit int) ([]*entities.RegistryEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RegistryEvent), args.Error(1)
}

func (m *MockEventRepository) MarkRelayed(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// Mock TreasuryGateway
type MockTreasuryGateway struct {
	mock.Mock
}

func (m *MockTreasuryGateway) SignValue(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(ctx, to, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func (m *MockTreasuryGateway) Broadcast(ctx context.Context, tx *types.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTreasuryGateway) VerifyDeposit(ctx context.Context, txHash common.Hash) (common.Address, *big.Int, error) {
	args := m.Called(ctx, txHash)
	if args.Get(1) == nil {
		return args.Get(0).(common.Address), nil, args.Error(2)
	}
	return args.Get(0).(common.Address), args.Get(1).(*big.Int), args.Error(2)
}
