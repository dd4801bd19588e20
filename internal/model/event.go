package model

// Kafka topics carrying settlement events.
const (
	PrizeClaimedTopic     = "prize_claimed"
	AffiliateClaimedTopic = "affiliate_claimed"
	AffiliateAccruedTopic = "affiliate_accrued"
)

type PrizeClaimedEvent struct {
	ClaimerID   string `json:"claimer_id" structs:"claimer_id" mapstructure:"claimer_id"`
	LotteryType int    `json:"lottery_type" structs:"lottery_type" mapstructure:"lottery_type"`
	Round       uint64 `json:"round" structs:"round" mapstructure:"round"`
	Tier        int    `json:"tier" structs:"tier" mapstructure:"tier"`
	Amount      uint64 `json:"amount" structs:"amount" mapstructure:"amount"`
	Timestamp   int64  `json:"timestamp" structs:"timestamp" mapstructure:"timestamp"`
}

type AffiliateClaimedEvent struct {
	AffiliateID   string `json:"affiliate_id" structs:"affiliate_id" mapstructure:"affiliate_id"`
	Amount        uint64 `json:"amount" structs:"amount" mapstructure:"amount"`
	Tier          int    `json:"tier" structs:"tier" mapstructure:"tier"`
	WeekNumber    uint64 `json:"week_number" structs:"week_number" mapstructure:"week_number"`
	ReferralCount uint32 `json:"referral_count" structs:"referral_count" mapstructure:"referral_count"`
	Timestamp     int64  `json:"timestamp" structs:"timestamp" mapstructure:"timestamp"`
}

type AffiliateAccruedEvent struct {
	AffiliateID  string `json:"affiliate_id" structs:"affiliate_id" mapstructure:"affiliate_id"`
	Amount       uint64 `json:"amount" structs:"amount" mapstructure:"amount"`
	Tier         int    `json:"tier" structs:"tier" mapstructure:"tier"`
	WeekNumber   uint64 `json:"week_number" structs:"week_number" mapstructure:"week_number"`
	TotalPending uint64 `json:"total_pending" structs:"total_pending" mapstructure:"total_pending"`
	Timestamp    int64  `json:"timestamp" structs:"timestamp" mapstructure:"timestamp"`
}
