package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"token-registry.backend/internal/usecases"
)

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	ts := time.Now().Unix()
	message := []byte(usecases.LoginMessage(ts))
	hash := crypto.Keccak256(append([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))), message...))
	sig, err := crypto.Sign(hash, key)
	require.NoError(t, err)
	sig[64] += 27

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"address":   address.Hex(),
		"timestamp": ts,
		"signature": hexutil.Encode(sig),
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Bearer", body["tokenType"])

	claims, err := env.jwt.ValidateToken(body["accessToken"].(string))
	require.NoError(t, err)
	assert.Equal(t, address, claims.Address())
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"address": aliceAddr.Hex()}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"address":   aliceAddr.Hex(),
		"timestamp": time.Now().Unix(),
		"signature": "0x" + fmt.Sprintf("%0130x", 1),
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
