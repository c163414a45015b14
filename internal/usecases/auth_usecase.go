package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/pkg/jwt"
	"token-registry.backend/pkg/logger"
)

// LoginMessagePrefix precedes the unix timestamp in the signed login message
const LoginMessagePrefix = "token-registry login:"

// AuthUsecase exchanges a signed login message for an access token
type AuthUsecase struct {
	jwtService *jwt.JWTService
	maxSkew    time.Duration
	now        func() time.Time
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(jwtService *jwt.JWTService, maxSkew time.Duration) *AuthUsecase {
	return &AuthUsecase{
		jwtService: jwtService,
		maxSkew:    maxSkew,
		now:        time.Now,
	}
}

// LoginMessage is the text a wallet signs to log in at timestamp
func LoginMessage(timestamp int64) string {
	return LoginMessagePrefix + strconv.FormatInt(timestamp, 10)
}

// Login verifies the EIP-191 signature and issues a token for the signer
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*jwt.AccessToken, error) {
	if !common.IsHexAddress(input.Address) {
		return nil, fmt.Errorf("malformed address: %w", domainerrors.ErrInvalidInput)
	}
	address := common.HexToAddress(input.Address)

	signedAt := time.Unix(input.Timestamp, 0)
	skew := u.now().Sub(signedAt)
	if skew < 0 {
		skew = -skew
	}
	if skew > u.maxSkew {
		return nil, fmt.Errorf("login message expired: %w", domainerrors.ErrUnauthenticated)
	}

	sig, err := hexutil.Decode(strings.TrimSpace(input.Signature))
	if err != nil {
		return nil, fmt.Errorf("malformed signature: %w", domainerrors.ErrInvalidInput)
	}
	signer, err := recoverSigner([]byte(LoginMessage(input.Timestamp)), sig)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domainerrors.ErrUnauthenticated)
	}
	if signer != address {
		logger.Warn(ctx, "Login signature mismatch",
			zap.String("claimed", address.Hex()),
			zap.String("recovered", signer.Hex()),
		)
		return nil, fmt.Errorf("signature does not match address: %w", domainerrors.ErrUnauthenticated)
	}

	token, err := u.jwtService.GenerateAccessToken(address)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Caller logged in", zap.String("address", address.Hex()))
	return token, nil
}

// recoverSigner returns the address behind a 65-byte personal_sign signature
func recoverSigner(message, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: expected %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	recoverSig := make([]byte, crypto.SignatureLength)
	copy(recoverSig, sig)
	if recoverSig[crypto.RecoveryIDOffset] >= 27 {
		recoverSig[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(personalHash(message), recoverSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

func personalHash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256(append([]byte(prefix), message...))
}
