package entities

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestNewRegistryState_ReceiverDefaultsToOwner(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	s := NewRegistryState(owner, "ipfs://contract", "ipfs://base/")

	assert.Equal(t, owner, s.Owner)
	assert.Equal(t, owner, s.PaymentReceiver)
	assert.False(t, s.Paused)
	assert.Zero(t, s.TotalMinted)
	assert.Equal(t, 0, s.Balance.Sign())
	assert.Empty(t, s.Tokens)
}

func TestRegistryState_CloneIsDeep(t *testing.T) {
	s := NewRegistryState(common.HexToAddress("0xa1"), "c", "b/")
	s.Balance.SetInt64(10)
	s.Tokens = append(s.Tokens, Token{ID: 0, Holder: common.HexToAddress("0xb2")})
	s.TotalMinted = 1

	c := s.Clone()
	c.Balance.SetInt64(99)
	c.Tokens[0].URI = LockedURI("ipfs://x")
	c.Tokens = append(c.Tokens, Token{ID: 1})
	c.Paused = true

	assert.Equal(t, big.NewInt(10), s.Balance)
	assert.False(t, s.Tokens[0].URI.IsLocked())
	assert.Len(t, s.Tokens, 1)
	assert.False(t, s.Paused)
}

func TestRegistryState_CloneNilBalance(t *testing.T) {
	s := &RegistryState{}
	c := s.Clone()
	assert.NotNil(t, c.Balance)
	assert.Equal(t, 0, c.Balance.Sign())
}

func TestTokenURI(t *testing.T) {
	var unset TokenURI
	assert.False(t, unset.IsLocked())
	_, ok := unset.Value()
	assert.False(t, ok)

	// An explicit empty string still locks.
	empty := LockedURI("")
	v, ok := empty.Value()
	assert.True(t, ok)
	assert.Equal(t, "", v)

	restored := TokenURIFromNull(null.StringFrom("ipfs://y"))
	assert.True(t, restored.IsLocked())
	assert.Equal(t, null.StringFrom("ipfs://y"), restored.Null())
}

func TestDefaultTokenURI(t *testing.T) {
	s := NewRegistryState(common.Address{}, "", "https://pixelchads.com/tokens/")
	assert.Equal(t, "https://pixelchads.com/tokens/42", s.DefaultTokenURI(42))
}
