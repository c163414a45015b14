package usecases

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"token-registry.backend/internal/domain/entities"
)

var (
	royaltyBasisPoints = big.NewInt(entities.RoyaltyBasisPoints)
	royaltyDenominator = big.NewInt(entities.RoyaltyDenominator)
)

// royaltyInfo quotes floor(salePrice * bps / 10000) for any token id,
// minted or not.
func royaltyInfo(state *entities.RegistryState, salePrice *big.Int) entities.RoyaltyInfo {
	amount := new(big.Int)
	if salePrice != nil && salePrice.Sign() > 0 {
		amount.Mul(salePrice, royaltyBasisPoints)
		amount.Quo(amount, royaltyDenominator)
	}
	return entities.RoyaltyInfo{
		Receiver: state.PaymentReceiver,
		Amount:   amount,
	}
}

// updateReceiver overwrites the payment receiver. The zero address is accepted.
func updateReceiver(state *entities.RegistryState, receiver common.Address) {
	state.PaymentReceiver = receiver
}
