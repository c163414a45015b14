package entities

// LoginInput is a signed proof of address ownership
type LoginInput struct {
	Address   string `json:"address" binding:"required"`
	Timestamp int64  `json:"timestamp" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// SetTokenURIInput sets a token URI once. The key must be present; an empty
// string is a valid value and locks the token to "".
type SetTokenURIInput struct {
	URI *string `json:"uri" binding:"required"`
}

// AddressInput carries a target address
type AddressInput struct {
	Address string `json:"address" binding:"required"`
}

// ContractURIInput replaces the collection metadata URI
type ContractURIInput struct {
	URI string `json:"uri" binding:"required"`
}

// DepositInput names a transfer into the treasury
type DepositInput struct {
	TxHash string `json:"txHash" binding:"required"`
}
