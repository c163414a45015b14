package repositories

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"token-registry.backend/internal/domain/entities"
	domainerrors "token-registry.backend/internal/domain/errors"
	"token-registry.backend/internal/infrastructure/models"
)

// RegistryRepositoryImpl implements RegistryRepository
type RegistryRepositoryImpl struct {
	db *gorm.DB
}

// NewRegistryRepository creates a new registry repository
func NewRegistryRepository(db *gorm.DB) *RegistryRepositoryImpl {
	return &RegistryRepositoryImpl{db: db}
}

// Load reads the singleton state row and every token.
func (r *RegistryRepositoryImpl) Load(ctx context.Context) (*entities.RegistryState, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var m models.RegistryState
	if err := db.Where("id = ?", models.RegistryStateID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	balance, ok := new(big.Int).SetString(m.Balance, 10)
	if !ok || balance.Sign() < 0 {
		return nil, fmt.Errorf("invalid stored balance %q", m.Balance)
	}

	var rows []models.Token
	if err := db.Order("token_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	if uint64(len(rows)) != m.TotalMinted {
		return nil, fmt.Errorf("token table holds %d rows, state says %d minted", len(rows), m.TotalMinted)
	}

	tokens := make([]entities.Token, 0, len(rows))
	for i, row := range rows {
		if row.TokenID != uint64(i) {
			return nil, fmt.Errorf("token ids not sequential at index %d (found %d)", i, row.TokenID)
		}
		tokens = append(tokens, toTokenEntity(&row))
	}

	return &entities.RegistryState{
		Owner:           common.HexToAddress(m.Owner),
		PaymentReceiver: common.HexToAddress(m.PaymentReceiver),
		ContractURI:     m.ContractURI,
		BaseURI:         m.BaseURI,
		Paused:          m.Paused,
		TotalMinted:     m.TotalMinted,
		Balance:         balance,
		Tokens:          tokens,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

// Save upserts the state row and the tokens that changed since prev.
func (r *RegistryRepositoryImpl) Save(ctx context.Context, prev, next *entities.RegistryState) error {
	db := GetDB(ctx, r.db).WithContext(ctx)
	now := time.Now()

	balance := "0"
	if next.Balance != nil {
		balance = next.Balance.String()
	}

	m := models.RegistryState{
		ID:              models.RegistryStateID,
		Owner:           next.Owner.Hex(),
		PaymentReceiver: next.PaymentReceiver.Hex(),
		ContractURI:     next.ContractURI,
		BaseURI:         next.BaseURI,
		Paused:          next.Paused,
		TotalMinted:     next.TotalMinted,
		Balance:         balance,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"owner", "payment_receiver", "contract_uri", "base_uri",
			"paused", "total_minted", "balance", "updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("save registry state: %w", err)
	}

	for i := range next.Tokens {
		t := &next.Tokens[i]
		if prev != nil && i < len(prev.Tokens) && sameToken(&prev.Tokens[i], t) {
			continue
		}
		row := toTokenModel(t)
		row.UpdatedAt = now
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"holder", "uri", "updated_at"}),
		}).Create(row).Error
		if err != nil {
			return fmt.Errorf("save token %d: %w", t.ID, err)
		}
	}

	next.UpdatedAt = now
	return nil
}

func sameToken(a, b *entities.Token) bool {
	return a.ID == b.ID && a.Holder == b.Holder && a.URI == b.URI
}

func toTokenEntity(m *models.Token) entities.Token {
	t := entities.Token{
		ID:       m.TokenID,
		Holder:   common.HexToAddress(m.Holder),
		MintedAt: m.MintedAt,
	}
	if m.URI != nil {
		t.URI = entities.LockedURI(*m.URI)
	}
	return t
}

func toTokenModel(t *entities.Token) *models.Token {
	return &models.Token{
		TokenID:  t.ID,
		Holder:   t.Holder.Hex(),
		URI:      t.URI.Null().Ptr(),
		MintedAt: t.MintedAt,
	}
}
