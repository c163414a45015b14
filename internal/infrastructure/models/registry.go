package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistryStateID is the primary key of the singleton state row.
const RegistryStateID = 1

type RegistryState struct {
	ID              int    `gorm:"primaryKey;autoIncrement:false"`
	Owner           string `gorm:"type:varchar(42);not null"`
	PaymentReceiver string `gorm:"type:varchar(42);not null"`
	ContractURI     string `gorm:"type:text;not null"`
	BaseURI         string `gorm:"type:text;not null"`
	Paused          bool   `gorm:"not null;default:false"`
	TotalMinted     uint64 `gorm:"not null;default:0"`
	Balance         string `gorm:"type:varchar(78);not null;default:'0'"` // BigInt as string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (RegistryState) TableName() string { return "registry_state" }

type Token struct {
	TokenID   uint64  `gorm:"primaryKey;autoIncrement:false"`
	Holder    string  `gorm:"type:varchar(42);not null;index"`
	URI       *string `gorm:"type:text"`
	MintedAt  time.Time
	UpdatedAt time.Time
}

func (Token) TableName() string { return "tokens" }

type RegistryEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type      string    `gorm:"type:varchar(50);not null;index"`
	TokenID   *uint64   `gorm:"index"`
	Payload   string    `gorm:"type:text;not null;default:'{}'"` // JSON
	CreatedAt time.Time `gorm:"index"`
	RelayedAt *time.Time
}

func (RegistryEvent) TableName() string { return "registry_events" }

type Deposit struct {
	TxHash      string `gorm:"type:varchar(66);primaryKey"`
	FromAddress string `gorm:"type:varchar(42);not null"`
	Amount      string `gorm:"type:varchar(78);not null"`
	CreatedAt   time.Time
}

func (Deposit) TableName() string { return "deposits" }

type Withdrawal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ToAddress string    `gorm:"type:varchar(42);not null"`
	Amount    string    `gorm:"type:varchar(78);not null"`
	TxHash    string    `gorm:"type:varchar(66);not null"`
	CreatedAt time.Time
}

func (Withdrawal) TableName() string { return "withdrawals" }

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&RegistryState{},
		&Token{},
		&RegistryEvent{},
		&Deposit{},
		&Withdrawal{},
	}
}
