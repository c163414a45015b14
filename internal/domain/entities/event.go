package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// EventType names a registry domain event
type EventType string

const (
	EventTokenMinted            EventType = "TokenMinted"
	EventTokenUpdated           EventType = "TokenUpdated"
	EventPaused                 EventType = "Paused"
	EventUnpaused               EventType = "Unpaused"
	EventPaymentReceiverUpdated EventType = "PaymentReceiverUpdated"
	EventContractURIUpdated     EventType = "ContractURIUpdated"
	EventOwnershipTransferred   EventType = "OwnershipTransferred"
	EventTransfer               EventType = "Transfer"
	EventDepositReceived        EventType = "DepositReceived"
	EventWithdrawn              EventType = "Withdrawn"
)

// RegistryEvent is an emitted state change, stored in the outbox with the mutation.
type RegistryEvent struct {
	ID        uuid.UUID         `json:"id"`
	Type      EventType         `json:"type"`
	TokenID   null.Uint64       `json:"tokenId"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"createdAt"`
	RelayedAt null.Time         `json:"relayedAt"`
}
