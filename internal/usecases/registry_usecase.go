package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/internal/domain/repositories"
	"token-registry.backend/pkg/logger"
	"token-registry.backend/pkg/metrics"
	"token-registry.backend/pkg/utils"
)

// TreasuryGateway moves native value in and out of the treasury wallet.
// Broadcast returns an error wrapping ErrPayoutUnconfirmed when the tx was
// handed to the network but no receipt was seen.
type TreasuryGateway interface {
	SignValue(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error)
	Broadcast(ctx context.Context, tx *types.Transaction) error
	VerifyDeposit(ctx context.Context, txHash common.Hash) (common.Address, *big.Int, error)
}

// settleFunc runs inside the persisting transaction after the new state is
// written and writes the operation's own records. It may run twice when a
// committed external effect has to be recorded again, so it must not repeat
// side effects outside the database.
type settleFunc func(ctx context.Context, next *entities.RegistryState) ([]*entities.RegistryEvent, error)

// interaction is the external effect of a mutation and runs after every write
// of the transaction. sent reports whether the effect may have left the
// process; from then on the new state is kept even if the commit fails.
type interaction func(ctx context.Context) (sent bool, err error)

// RegistryUsecase owns the registry state. Mutations are serialized by mu and
// applied to a clone that only replaces the live state after commit.
type RegistryUsecase struct {
	registryRepo repositories.RegistryRepository
	treasuryRepo repositories.TreasuryRepository
	eventRepo    repositories.EventRepository
	uow          repositories.UnitOfWork
	treasury     TreasuryGateway
	metrics      *metrics.Metrics
	now          func() time.Time

	mu    sync.RWMutex
	state *entities.RegistryState
}

// NewRegistryUsecase creates a new registry usecase. treasury may be nil when no
// payout wallet is configured; Bootstrap must run before any operation.
func NewRegistryUsecase(
	registryRepo repositories.RegistryRepository,
	treasuryRepo repositories.TreasuryRepository,
	eventRepo repositories.EventRepository,
	uow repositories.UnitOfWork,
	treasury TreasuryGateway,
	m *metrics.Metrics,
) *RegistryUsecase {
	return &RegistryUsecase{
		registryRepo: registryRepo,
		treasuryRepo: treasuryRepo,
		eventRepo:    eventRepo,
		uow:          uow,
		treasury:     treasury,
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Bootstrap loads the persisted state, creating the deploy-time state on first boot
func (u *RegistryUsecase) Bootstrap(ctx context.Context, owner common.Address, contractURI, baseURI string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	state, err := u.registryRepo.Load(ctx)
	if err == nil {
		u.state = state
		u.metrics.SetState(state.TotalMinted, state.Paused, state.Balance)
		logger.Info(ctx, "Registry state loaded",
			zap.String("owner", state.Owner.Hex()),
			zap.Uint64("totalMinted", state.TotalMinted),
		)
		return nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return fmt.Errorf("loading registry state: %w", err)
	}

	state = entities.NewRegistryState(owner, contractURI, baseURI)
	state.UpdatedAt = u.now()
	if err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.registryRepo.Save(txCtx, nil, state)
	}); err != nil {
		return fmt.Errorf("creating registry state: %w", err)
	}
	u.state = state
	u.metrics.SetState(state.TotalMinted, state.Paused, state.Balance)
	logger.Info(ctx, "Registry state created", zap.String("owner", owner.Hex()))
	return nil
}

// Mint issues the next token to caller
func (u *RegistryUsecase) Mint(ctx context.Context, caller common.Address) (uint64, error) {
	var tokenID uint64
	err := u.mutate(ctx, "mint", func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		if err := requireActive(state); err != nil {
			return nil, err
		}
		id, err := allocate(state)
		if err != nil {
			return nil, err
		}
		state.Tokens = append(state.Tokens, entities.Token{
			ID:       id,
			Holder:   caller,
			MintedAt: u.now(),
		})
		tokenID = id
		return []*entities.RegistryEvent{
			newTokenEvent(entities.EventTokenMinted, id, map[string]string{
				"to": caller.Hex(),
			}),
		}, nil
	}, nil)
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// SetTokenURI writes the token URI once (owner only)
func (u *RegistryUsecase) SetTokenURI(ctx context.Context, tokenID uint64, uri string, caller common.Address) error {
	return u.mutate(ctx, "set_token_uri", mintedOnly(tokenID, ownerOnly(caller, func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		if err := setURI(state, tokenID, uri); err != nil {
			return nil, err
		}
		return []*entities.RegistryEvent{
			newTokenEvent(entities.EventTokenUpdated, tokenID, map[string]string{"uri": uri}),
		}, nil
	})), nil)
}

// TokenURI returns the stored URI, or the base-URI default
func (u *RegistryUsecase) TokenURI(ctx context.Context, tokenID uint64) (string, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	uri, _, err := tokenURI(u.state, tokenID)
	return uri, err
}

// Token returns the public view of a minted token
func (u *RegistryUsecase) Token(ctx context.Context, tokenID uint64) (*entities.TokenView, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	token, err := lookupToken(u.state, tokenID)
	if err != nil {
		return nil, err
	}
	uri, locked, err := tokenURI(u.state, tokenID)
	if err != nil {
		return nil, err
	}
	return &entities.TokenView{
		TokenID:   token.ID,
		Holder:    token.Holder.Hex(),
		URI:       uri,
		URILocked: locked,
		MintedAt:  token.MintedAt,
	}, nil
}

// Pause blocks minting (owner only). Pausing a paused registry changes nothing.
func (u *RegistryUsecase) Pause(ctx context.Context, caller common.Address) error {
	return u.mutate(ctx, "pause", ownerOnly(caller, u.pauseTransition(caller, true)), nil)
}

// Unpause re-enables minting (owner only)
func (u *RegistryUsecase) Unpause(ctx context.Context, caller common.Address) error {
	return u.mutate(ctx, "unpause", ownerOnly(caller, u.pauseTransition(caller, false)), nil)
}

func (u *RegistryUsecase) pauseTransition(caller common.Address, paused bool) transition {
	return func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		if !setPaused(state, paused) {
			return nil, nil
		}
		eventType := entities.EventUnpaused
		if paused {
			eventType = entities.EventPaused
		}
		return []*entities.RegistryEvent{
			newEvent(eventType, map[string]string{"account": caller.Hex()}),
		}, nil
	}
}

// UpdatePaymentReceiver replaces the royalty receiver (owner only)
func (u *RegistryUsecase) UpdatePaymentReceiver(ctx context.Context, receiver, caller common.Address) error {
	return u.mutate(ctx, "update_payment_receiver", ownerOnly(caller, func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		updateReceiver(state, receiver)
		return []*entities.RegistryEvent{
			newEvent(entities.EventPaymentReceiverUpdated, map[string]string{"receiver": receiver.Hex()}),
		}, nil
	}), nil)
}

// UpdateContractURI replaces the collection metadata URI (owner only)
func (u *RegistryUsecase) UpdateContractURI(ctx context.Context, uri string, caller common.Address) error {
	return u.mutate(ctx, "update_contract_uri", ownerOnly(caller, func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		state.ContractURI = uri
		return []*entities.RegistryEvent{
			newEvent(entities.EventContractURIUpdated, map[string]string{"uri": uri}),
		}, nil
	}), nil)
}

// ContractURI returns the collection metadata URI
func (u *RegistryUsecase) ContractURI(ctx context.Context) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state.ContractURI
}

// TransferOwnership hands the owner role to newOwner (owner only)
func (u *RegistryUsecase) TransferOwnership(ctx context.Context, newOwner, caller common.Address) error {
	return u.mutate(ctx, "transfer_ownership", ownerOnly(caller, func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		if newOwner == (common.Address{}) {
			return nil, fmt.Errorf("new owner is the zero address: %w", domainerrors.ErrInvalidInput)
		}
		previous := state.Owner
		state.Owner = newOwner
		return []*entities.RegistryEvent{
			newEvent(entities.EventOwnershipTransferred, map[string]string{
				"previousOwner": previous.Hex(),
				"newOwner":      newOwner.Hex(),
			}),
		}, nil
	}), nil)
}

// Withdraw drains the whole treasury balance to the owner.
// The payout is signed first so the zero balance, the withdrawal row and the
// Withdrawn event are written with its hash; broadcasting is the last step of
// the transaction. A payout that never reached the network rolls everything
// back. Once it did, the balance stays zero whatever happens to the commit.
func (u *RegistryUsecase) Withdraw(ctx context.Context, caller common.Address) (*entities.Withdrawal, error) {
	var (
		amount    *big.Int
		recipient common.Address
		payout    *types.Transaction
		pending   bool
		createdAt = u.now()
	)

	apply := ownerOnly(caller, func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		amount = drain(state)
		recipient = state.Owner
		if amount.Sign() > 0 && u.treasury == nil {
			return nil, domainerrors.ErrPayoutNotAllowed
		}
		return nil, nil
	})

	settle := func(ctx context.Context, next *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		var txHash common.Hash
		if amount.Sign() > 0 {
			if payout == nil {
				tx, err := u.treasury.SignValue(ctx, recipient, amount)
				if err != nil {
					return nil, fmt.Errorf("preparing payout of %s wei to %s: %v: %w", amount, recipient.Hex(), err, domainerrors.ErrTransferFailed)
				}
				payout = tx
			}
			txHash = payout.Hash()
			if err := u.treasuryRepo.CreateWithdrawal(ctx, &entities.Withdrawal{
				To:        recipient,
				Amount:    amount,
				TxHash:    txHash,
				CreatedAt: createdAt,
			}); err != nil {
				return nil, err
			}
		}
		return []*entities.RegistryEvent{
			newEvent(entities.EventWithdrawn, map[string]string{
				"to":     recipient.Hex(),
				"amount": amount.String(),
				"txHash": txHash.Hex(),
			}),
		}, nil
	}

	broadcast := func(ctx context.Context) (bool, error) {
		if payout == nil {
			return false, nil
		}
		err := u.treasury.Broadcast(ctx, payout)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, domainerrors.ErrPayoutUnconfirmed):
			pending = true
			logger.Warn(ctx, "Payout broadcast without receipt, balance kept at zero",
				zap.String("txHash", payout.Hash().Hex()),
				zap.String("amount", amount.String()),
				zap.Error(err),
			)
			return true, nil
		default:
			return false, fmt.Errorf("paying out %s wei to %s: %v: %w", amount, recipient.Hex(), err, domainerrors.ErrTransferFailed)
		}
	}

	if err := u.mutateWithEffect(ctx, "withdraw", apply, settle, broadcast); err != nil {
		return nil, err
	}

	withdrawal := &entities.Withdrawal{
		To:        recipient,
		Amount:    amount,
		Pending:   pending,
		CreatedAt: createdAt,
	}
	if payout != nil {
		withdrawal.TxHash = payout.Hash()
	}
	return withdrawal, nil
}

// RecordDeposit credits a verified on-chain transfer to the treasury, once per tx hash
func (u *RegistryUsecase) RecordDeposit(ctx context.Context, txHash common.Hash) (*entities.Deposit, error) {
	if u.treasury == nil {
		return nil, domainerrors.ErrPayoutNotAllowed
	}

	exists, err := u.treasuryRepo.DepositExists(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("deposit %s: %w", txHash.Hex(), domainerrors.ErrAlreadyExists)
	}

	from, amount, err := u.treasury.VerifyDeposit(ctx, txHash)
	if err != nil {
		u.observe(ctx, "record_deposit", err)
		return nil, err
	}

	record := &entities.Deposit{
		TxHash:    txHash,
		From:      from,
		Amount:    amount,
		CreatedAt: u.now(),
	}
	err = u.mutate(ctx, "record_deposit", func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		if err := deposit(state, amount); err != nil {
			return nil, err
		}
		return []*entities.RegistryEvent{
			newEvent(entities.EventDepositReceived, map[string]string{
				"from":   from.Hex(),
				"amount": amount.String(),
				"txHash": txHash.Hex(),
			}),
		}, nil
	}, func(ctx context.Context, _ *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		exists, err := u.treasuryRepo.DepositExists(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("deposit %s: %w", txHash.Hex(), domainerrors.ErrAlreadyExists)
		}
		return nil, u.treasuryRepo.CreateDeposit(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RoyaltyInfo quotes the royalty owed on a sale of any token id
func (u *RegistryUsecase) RoyaltyInfo(ctx context.Context, tokenID uint64, salePrice *big.Int) entities.RoyaltyInfo {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return royaltyInfo(u.state, salePrice)
}

// NextTokenID previews the id of the next mint
func (u *RegistryUsecase) NextTokenID(ctx context.Context) uint64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return nextID(u.state)
}

// OwnerOf returns the holder of a minted token
func (u *RegistryUsecase) OwnerOf(ctx context.Context, tokenID uint64) (common.Address, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	token, err := lookupToken(u.state, tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return token.Holder, nil
}

// BalanceOf counts the tokens held by holder
func (u *RegistryUsecase) BalanceOf(ctx context.Context, holder common.Address) uint64 {
	u.mu.RLock()
	defer u.mu.RUnlock()

	var count uint64
	for i := range u.state.Tokens {
		if u.state.Tokens[i].Holder == holder {
			count++
		}
	}
	return count
}

// TransferToken moves a token from its holder to `to` (holder only)
func (u *RegistryUsecase) TransferToken(ctx context.Context, tokenID uint64, to, caller common.Address) error {
	return u.mutate(ctx, "transfer_token", func(state *entities.RegistryState) ([]*entities.RegistryEvent, error) {
		token, err := lookupToken(state, tokenID)
		if err != nil {
			return nil, err
		}
		if token.Holder != caller {
			return nil, domainerrors.ErrUnauthorized
		}
		if to == (common.Address{}) {
			return nil, fmt.Errorf("transfer to the zero address: %w", domainerrors.ErrInvalidInput)
		}
		token.Holder = to
		return []*entities.RegistryEvent{
			newTokenEvent(entities.EventTransfer, tokenID, map[string]string{
				"from": caller.Hex(),
				"to":   to.Hex(),
			}),
		}, nil
	}, nil)
}

// Info returns a consistent snapshot of the registry
func (u *RegistryUsecase) Info(ctx context.Context) *entities.RegistryInfo {
	u.mu.RLock()
	defer u.mu.RUnlock()

	s := u.state
	return &entities.RegistryInfo{
		Owner:              s.Owner.Hex(),
		PaymentReceiver:    s.PaymentReceiver.Hex(),
		ContractURI:        s.ContractURI,
		BaseURI:            s.BaseURI,
		Paused:             s.Paused,
		TotalMinted:        s.TotalMinted,
		MaxSupply:          entities.MaxSupply,
		NextTokenID:        nextID(s),
		Balance:            s.Balance.String(),
		RoyaltyBasisPoints: entities.RoyaltyBasisPoints,
	}
}

// ListEvents pages through the event outbox, newest first
func (u *RegistryUsecase) ListEvents(ctx context.Context, pagination utils.PaginationParams) ([]*entities.RegistryEvent, int64, error) {
	return u.eventRepo.List(ctx, pagination)
}

// mutate applies fn to a clone of the state and persists the clone together with
// its events in one transaction. The live state is replaced only after commit.
// A transition that emits nothing and has no settle step is a no-op.
func (u *RegistryUsecase) mutate(ctx context.Context, op string, fn transition, settle settleFunc) error {
	return u.mutateWithEffect(ctx, op, fn, settle, nil)
}

// mutateWithEffect is mutate with an external effect run last inside the
// transaction. If the effect was sent and the transaction still fails, the
// records are written again in a fresh transaction and the new state is kept.
func (u *RegistryUsecase) mutateWithEffect(ctx context.Context, op string, fn transition, settle settleFunc, effect interaction) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	next := u.state.Clone()
	events, err := fn(next)
	if err != nil {
		u.observe(ctx, op, err)
		return err
	}
	if len(events) == 0 && settle == nil && effect == nil {
		u.observe(ctx, op, nil)
		return nil
	}
	next.UpdatedAt = u.now()

	var written []*entities.RegistryEvent
	record := func(txCtx context.Context) error {
		if err := u.registryRepo.Save(txCtx, u.state, next); err != nil {
			return fmt.Errorf("saving registry state: %w", err)
		}
		all := append([]*entities.RegistryEvent{}, events...)
		if settle != nil {
			more, err := settle(txCtx, next)
			if err != nil {
				return err
			}
			all = append(all, more...)
		}
		for _, e := range all {
			e.CreatedAt = next.UpdatedAt
		}
		if err := u.eventRepo.Append(txCtx, all...); err != nil {
			return err
		}
		written = all
		return nil
	}

	var sent bool
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := record(txCtx); err != nil {
			return err
		}
		if effect == nil {
			return nil
		}
		var effectErr error
		sent, effectErr = effect(txCtx)
		return effectErr
	})
	if err != nil && sent {
		err = u.rerecord(ctx, op, record, err)
	}
	if err != nil && !sent {
		u.observe(ctx, op, err)
		return err
	}

	u.state = next
	u.observe(ctx, op, err)
	u.metrics.SetState(next.TotalMinted, next.Paused, next.Balance)
	for _, e := range written {
		logger.Info(ctx, "Registry event", zap.String("type", string(e.Type)), zap.Any("payload", e.Payload))
	}
	return err
}

// rerecord writes the records of an operation whose external effect already
// happened but whose transaction failed. It returns nil once they are stored.
func (u *RegistryUsecase) rerecord(ctx context.Context, op string, record func(context.Context) error, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := u.uow.Do(ctx, record); err != nil {
		logger.Error(ctx, "External effect sent but not recorded",
			zap.String("operation", op),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return fmt.Errorf("%s sent but not recorded: %w", op, err)
	}
	logger.Warn(ctx, "External effect recorded after failed commit",
		zap.String("operation", op),
		zap.Error(cause),
	)
	return nil
}

func (u *RegistryUsecase) observe(ctx context.Context, op string, err error) {
	if err == nil {
		u.metrics.ObserveOperation(op, "OK")
		return
	}
	appErr := domainerrors.FromError(err)
	u.metrics.ObserveOperation(op, appErr.Code)
	if appErr.Status >= 500 {
		logger.Error(ctx, "Registry operation failed", zap.String("operation", op), zap.Error(err))
		return
	}
	logger.Warn(ctx, "Registry operation rejected", zap.String("operation", op), zap.Error(err))
}

func newEvent(eventType entities.EventType, payload map[string]string) *entities.RegistryEvent {
	return &entities.RegistryEvent{
		ID:      utils.GenerateUUIDv7(),
		Type:    eventType,
		Payload: payload,
	}
}

func newTokenEvent(eventType entities.EventType, tokenID uint64, payload map[string]string) *entities.RegistryEvent {
	payload["tokenId"] = strconv.FormatUint(tokenID, 10)
	e := newEvent(eventType, payload)
	e.TokenID = null.Uint64From(tokenID)
	return e
}
