package entity

// Vault holds a balance in base units. Every fund movement is a conditional
// debit on one vault plus a credit on another within the same transaction, so
// the sum over all vaults is conserved.
type Vault struct {
	Base

	OwnerID string `gorm:"index"`
	Balance uint64
}
