package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/internal/interfaces/http/middleware"
	"token-registry.backend/internal/usecases"
	"token-registry.backend/pkg/jwt"
	"token-registry.backend/pkg/utils"
)

var (
	ownerAddr = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	aliceAddr = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	bobAddr   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

type registryRepoStub struct {
	mu    sync.Mutex
	state *entities.RegistryState
}

func (s *registryRepoStub) Load(context.Context) (*entities.RegistryState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, domainerrors.ErrNotFound
	}
	return s.state.Clone(), nil
}

func (s *registryRepoStub) Save(_ context.Context, _, next *entities.RegistryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next.Clone()
	return nil
}

type treasuryRepoStub struct {
	mu          sync.Mutex
	deposits    map[common.Hash]*entities.Deposit
	withdrawals []*entities.Withdrawal
}

func (s *treasuryRepoStub) CreateDeposit(_ context.Context, d *entities.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deposits[d.TxHash]; ok {
		return domainerrors.ErrAlreadyExists
	}
	s.deposits[d.TxHash] = d
	return nil
}

func (s *treasuryRepoStub) DepositExists(_ context.Context, hash common.Hash) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.deposits[hash]
	return ok, nil
}

func (s *treasuryRepoStub) CreateWithdrawal(_ context.Context, w *entities.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawals = append(s.withdrawals, w)
	return nil
}

type eventRepoStub struct {
	mu     sync.Mutex
	events []*entities.RegistryEvent
}

func (s *eventRepoStub) Append(_ context.Context, events ...*entities.RegistryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *eventRepoStub) List(_ context.Context, p utils.PaginationParams) ([]*entities.RegistryEvent, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := make([]*entities.RegistryEvent, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		sorted = append(sorted, s.events[i])
	}
	total := int64(len(sorted))
	start := p.CalculateOffset()
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + p.Limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], total, nil
}

func (s *eventRepoStub) ListUnrelayed(context.Context, int) ([]*entities.RegistryEvent, error) {
	return nil, nil
}

func (s *eventRepoStub) MarkRelayed(context.Context, []uuid.UUID) error { return nil }

type uowStub struct{}

func (uowStub) Do(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }

type gatewayStub struct {
	sendErr   error
	verifyErr error
	from      common.Address
	amount    *big.Int
	nonce     uint64
	sent      []*types.Transaction
}

func (g *gatewayStub) SignValue(_ context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	g.nonce++
	return types.NewTx(&types.LegacyTx{Nonce: g.nonce, To: &to, Value: amount}), nil
}

// Broadcast records the payout unless sendErr is set. An unconfirmed error
// still counts as sent.
func (g *gatewayStub) Broadcast(_ context.Context, tx *types.Transaction) error {
	if g.sendErr != nil && !errors.Is(g.sendErr, domainerrors.ErrPayoutUnconfirmed) {
		return g.sendErr
	}
	g.sent = append(g.sent, tx)
	return g.sendErr
}

func (g *gatewayStub) VerifyDeposit(context.Context, common.Hash) (common.Address, *big.Int, error) {
	if g.verifyErr != nil {
		return common.Address{}, nil, g.verifyErr
	}
	return g.from, g.amount, nil
}

type testEnv struct {
	router   *gin.Engine
	jwt      *jwt.JWTService
	registry *usecases.RegistryUsecase
	gateway  *gatewayStub
	events   *eventRepoStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		jwt:     jwt.NewJWTService("test-secret", time.Hour),
		gateway: &gatewayStub{from: aliceAddr, amount: big.NewInt(1000)},
		events:  &eventRepoStub{},
	}
	env.registry = usecases.NewRegistryUsecase(
		&registryRepoStub{},
		&treasuryRepoStub{deposits: map[common.Hash]*entities.Deposit{}},
		env.events,
		uowStub{},
		env.gateway,
		nil,
	)
	require.NoError(t, env.registry.Bootstrap(context.Background(), ownerAddr, "https://pixelchads.com/", "https://pixelchads.com/tokens/"))

	registryHandler := NewRegistryHandler(env.registry)
	tokenHandler := NewTokenHandler(env.registry)
	adminHandler := NewAdminHandler(env.registry)
	treasuryHandler := NewTreasuryHandler(env.registry)
	authHandler := NewAuthHandler(usecases.NewAuthUsecase(env.jwt, 5*time.Minute))

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/registry", registryHandler.GetInfo)
	v1.GET("/registry/contract-uri", registryHandler.GetContractURI)
	v1.GET("/events", registryHandler.ListEvents)
	v1.GET("/tokens/next-id", registryHandler.GetNextTokenID)
	v1.GET("/tokens/:id", tokenHandler.GetToken)
	v1.GET("/tokens/:id/uri", tokenHandler.GetTokenURI)
	v1.GET("/tokens/:id/royalty", tokenHandler.GetRoyalty)
	v1.GET("/accounts/:address/balance", tokenHandler.GetBalance)
	v1.POST("/treasury/deposits", treasuryHandler.RecordDeposit)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(env.jwt))
	authed.POST("/tokens", tokenHandler.Mint)
	authed.PUT("/tokens/:id/uri", tokenHandler.SetTokenURI)
	authed.POST("/tokens/:id/transfer", tokenHandler.Transfer)
	authed.POST("/admin/pause", adminHandler.Pause)
	authed.POST("/admin/unpause", adminHandler.Unpause)
	authed.PUT("/admin/payment-receiver", adminHandler.UpdatePaymentReceiver)
	authed.PUT("/admin/contract-uri", adminHandler.UpdateContractURI)
	authed.PUT("/admin/owner", adminHandler.TransferOwnership)
	authed.POST("/admin/withdraw", adminHandler.Withdraw)

	env.router = r
	return env
}

func (e *testEnv) token(t *testing.T, addr common.Address) string {
	t.Helper()
	tok, err := e.jwt.GenerateAccessToken(addr)
	require.NoError(t, err)
	return tok.Token
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, caller *common.Address) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+e.token(t, *caller))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
