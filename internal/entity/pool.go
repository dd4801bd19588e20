package entity

// PrizePool custodies winnings for one lottery type across rounds. The vault
// balance and the bookkeeping totals only ever change together inside one
// transaction.
type PrizePool struct {
	Base

	Authority string

	// LotteryType is a kind discriminant, see LotteryKindTag.PoolType.
	LotteryType int

	VaultID        string
	TotalDeposited uint64
	TotalClaimed   uint64
	CurrentRound   uint64
	DrawCompleted  bool
}

// PrizeClaim proves that one claimer was paid for one pool round. Its record
// key is derived from (claimer, pool, round), so a second claim on the same
// key fails to insert. That collision is the double-claim guard.
type PrizeClaim struct {
	Base

	ClaimerID string

	PoolID string    `gorm:"index"`
	Pool   PrizePool `gorm:"foreignKey:PoolID"`

	Round     uint64
	Tier      int
	Amount    uint64
	Verified  bool
	ClaimedAt int64
}

// AffiliatePool custodies commission funds. There is a single affiliate pool
// per deployment.
type AffiliatePool struct {
	Base

	Authority string

	VaultID        string
	TotalDeposited uint64
	TotalClaimed   uint64
	CurrentWeek    uint64
	LastReleaseAt  int64
}

// AffiliateAccumulator is the per-affiliate running balance of earned but
// unpaid commission. Pending amounts survive week rollovers until claimed;
// the tier only ever ratchets up.
type AffiliateAccumulator struct {
	Base

	AffiliateID   string `gorm:"index"`
	PendingAmount uint64
	Tier          int
	ReferralCount uint32
	WeekNumber    uint64
	LastUpdated   int64
}

// AffiliateClaim is keyed by (affiliate, week number): one payout per
// affiliate per week.
type AffiliateClaim struct {
	Base

	AffiliateID   string `gorm:"index"`
	Amount        uint64
	Tier          int
	WeekNumber    uint64
	ReferralCount uint32
	ClaimedAt     int64
}
