package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	domainerrors "token-registry.backend/internal/domain/errors"
)

// nativeTransferGas is the intrinsic gas of a plain value transfer.
const nativeTransferGas = 21000

var defaultReceiptPollInterval = 2 * time.Second

// TreasuryWallet holds the hot wallet that backs the registry treasury.
// It pays out withdrawals and verifies incoming deposits.
type TreasuryWallet struct {
	factory        *ClientFactory
	rpcURL         string
	key            *ecdsa.PrivateKey
	address        common.Address
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// NewTreasuryWallet parses the hex private key and binds the wallet to rpcURL.
// The RPC connection is opened lazily on first use.
func NewTreasuryWallet(factory *ClientFactory, rpcURL, privateKeyHex string, confirmTimeout time.Duration) (*TreasuryWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing treasury private key: %w", err)
	}
	return &TreasuryWallet{
		factory:        factory,
		rpcURL:         rpcURL,
		key:            key,
		address:        crypto.PubkeyToAddress(key.PublicKey),
		confirmTimeout: confirmTimeout,
		pollInterval:   defaultReceiptPollInterval,
	}, nil
}

// Address returns the treasury hot wallet address
func (w *TreasuryWallet) Address() common.Address {
	return w.address
}

// SignValue builds and signs a transfer of amount wei to `to` without sending it,
// so the hash can be recorded before any value leaves the wallet.
func (w *TreasuryWallet) SignValue(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("payout amount must be positive: %w", domainerrors.ErrInvalidInput)
	}

	client, err := w.factory.GetEVMClient(w.rpcURL)
	if err != nil {
		return nil, err
	}

	nonce, err := client.PendingNonce(ctx, w.address)
	if err != nil {
		return nil, fmt.Errorf("fetching nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    new(big.Int).Set(amount),
		Gas:      nativeTransferGas,
		GasPrice: gasPrice,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(client.ChainID()), w.key)
	if err != nil {
		return nil, fmt.Errorf("signing payout: %w", err)
	}
	return signed, nil
}

// Broadcast sends a signed payout and waits for a successful receipt.
// Once the node accepted the tx, a missing receipt is reported as
// ErrPayoutUnconfirmed since the transfer may still be mined.
func (w *TreasuryWallet) Broadcast(ctx context.Context, tx *types.Transaction) error {
	client, err := w.factory.GetEVMClient(w.rpcURL)
	if err != nil {
		return err
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		// the request may have reached the node before the context ended
		if ctx.Err() != nil {
			return fmt.Errorf("%w: broadcasting payout: %v", domainerrors.ErrPayoutUnconfirmed, err)
		}
		return fmt.Errorf("broadcasting payout: %w", err)
	}

	receipt, err := w.waitReceipt(ctx, client, tx.Hash())
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrPayoutUnconfirmed, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("payout %s reverted", tx.Hash().Hex())
	}
	return nil
}

func (w *TreasuryWallet) waitReceipt(ctx context.Context, client *EVMClient, hash common.Hash) (*types.Receipt, error) {
	if w.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.GetTransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash.Hex(), ctx.Err())
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("fetching receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// VerifyDeposit checks that txHash is a mined, successful value transfer to the
// treasury and returns its sender and value.
func (w *TreasuryWallet) VerifyDeposit(ctx context.Context, txHash common.Hash) (common.Address, *big.Int, error) {
	client, err := w.factory.GetEVMClient(w.rpcURL)
	if err != nil {
		return common.Address{}, nil, err
	}

	tx, pending, err := client.GetTransaction(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return common.Address{}, nil, fmt.Errorf("deposit %s: %w", txHash.Hex(), domainerrors.ErrNotFound)
		}
		return common.Address{}, nil, err
	}
	if pending {
		return common.Address{}, nil, fmt.Errorf("deposit %s is still pending: %w", txHash.Hex(), domainerrors.ErrInvalidInput)
	}
	if tx.To() == nil || *tx.To() != w.address {
		return common.Address{}, nil, fmt.Errorf("deposit %s is not addressed to the treasury: %w", txHash.Hex(), domainerrors.ErrInvalidInput)
	}
	if tx.Value().Sign() <= 0 {
		return common.Address{}, nil, fmt.Errorf("deposit %s carries no value: %w", txHash.Hex(), domainerrors.ErrInvalidInput)
	}

	receipt, err := client.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("fetching receipt for %s: %w", txHash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, nil, fmt.Errorf("deposit %s reverted: %w", txHash.Hex(), domainerrors.ErrInvalidInput)
	}

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("recovering deposit sender: %w", err)
	}
	return from, tx.Value(), nil
}
