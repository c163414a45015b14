package entities

import (
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

const (
	// MaxSupply is the hard cap on issued tokens.
	MaxSupply uint64 = 500
	// RoyaltyBasisPoints is the secondary-sale royalty rate (100 bps = 1%).
	RoyaltyBasisPoints int64 = 100
	// RoyaltyDenominator is the basis-points denominator.
	RoyaltyDenominator int64 = 10000
)

// TokenURI is either unset or locked to a value. A locked URI never changes.
type TokenURI struct {
	value null.String
}

// LockedURI returns a URI locked to value.
func LockedURI(value string) TokenURI {
	return TokenURI{value: null.StringFrom(value)}
}

// TokenURIFromNull restores a URI from its nullable storage form.
func TokenURIFromNull(v null.String) TokenURI {
	return TokenURI{value: v}
}

// IsLocked reports whether the URI has been written.
func (u TokenURI) IsLocked() bool {
	return u.value.Valid
}

// Value returns the locked value and whether one exists.
func (u TokenURI) Value() (string, bool) {
	return u.value.String, u.value.Valid
}

// Null returns the nullable storage form.
func (u TokenURI) Null() null.String {
	return u.value
}

// Token is a minted item.
type Token struct {
	ID       uint64         `json:"tokenId"`
	Holder   common.Address `json:"holder"`
	URI      TokenURI       `json:"-"`
	MintedAt time.Time      `json:"mintedAt"`
}

// RegistryState is the single aggregate guarded by the registry usecase.
// Tokens[i].ID == i for every i < TotalMinted.
type RegistryState struct {
	Owner           common.Address
	PaymentReceiver common.Address
	ContractURI     string
	BaseURI         string
	Paused          bool
	TotalMinted     uint64
	Balance         *big.Int
	Tokens          []Token
	UpdatedAt       time.Time
}

// NewRegistryState returns the deploy-time state: receiver defaults to the deployer.
func NewRegistryState(owner common.Address, contractURI, baseURI string) *RegistryState {
	return &RegistryState{
		Owner:           owner,
		PaymentReceiver: owner,
		ContractURI:     contractURI,
		BaseURI:         baseURI,
		Balance:         new(big.Int),
		Tokens:          make([]Token, 0),
	}
}

// Clone returns a deep copy suitable for speculative mutation.
func (s *RegistryState) Clone() *RegistryState {
	c := *s
	c.Balance = new(big.Int)
	if s.Balance != nil {
		c.Balance.Set(s.Balance)
	}
	c.Tokens = make([]Token, len(s.Tokens), len(s.Tokens)+1)
	copy(c.Tokens, s.Tokens)
	return &c
}

// DefaultTokenURI is the display URI for a token without an explicit one.
func (s *RegistryState) DefaultTokenURI(tokenID uint64) string {
	return s.BaseURI + strconv.FormatUint(tokenID, 10)
}

// RegistryInfo is a read-only snapshot of the registry.
type RegistryInfo struct {
	Owner              string `json:"owner"`
	PaymentReceiver    string `json:"paymentReceiver"`
	ContractURI        string `json:"contractURI"`
	BaseURI            string `json:"baseURI"`
	Paused             bool   `json:"paused"`
	TotalMinted        uint64 `json:"totalMinted"`
	MaxSupply          uint64 `json:"maxSupply"`
	NextTokenID        uint64 `json:"nextTokenId"`
	Balance            string `json:"balance"`
	RoyaltyBasisPoints int64  `json:"royaltyBasisPoints"`
}

// RoyaltyInfo is the marketplace-facing royalty quote.
type RoyaltyInfo struct {
	Receiver common.Address
	Amount   *big.Int
}

// TokenView is the public projection of a token.
type TokenView struct {
	TokenID   uint64    `json:"tokenId"`
	Holder    string    `json:"holder"`
	URI       string    `json:"uri"`
	URILocked bool      `json:"uriLocked"`
	MintedAt  time.Time `json:"mintedAt"`
}

// Deposit is a credited incoming payment.
type Deposit struct {
	TxHash    common.Hash
	From      common.Address
	Amount    *big.Int
	CreatedAt time.Time
}

// Withdrawal is a treasury payout. Pending is set when the payout was
// broadcast but no receipt was seen; the tx hash is the reconciliation key.
type Withdrawal struct {
	To        common.Address
	Amount    *big.Int
	TxHash    common.Hash
	Pending   bool
	CreatedAt time.Time
}
