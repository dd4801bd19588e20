package model

type AffiliatePool struct {
	ID             string `json:"id"`
	TotalDeposited uint64 `json:"total_deposited"`
	TotalClaimed   uint64 `json:"total_claimed"`
	CurrentWeek    uint64 `json:"current_week"`
	LastReleaseAt  int64  `json:"last_release_at"`
}

type OpenAffiliatePoolRequest struct{}

type OpenAffiliatePoolResponse struct {
	ID string `json:"id"`
}

type DepositAffiliateRequest struct {
	PoolID string `json:"pool_id"`
	Amount uint64 `json:"amount"`
}

type DepositAffiliateResponse struct{}

type OpenAccumulatorRequest struct{}

type OpenAccumulatorResponse struct {
	ID string `json:"id"`
}

type AccrueCommissionRequest struct {
	PoolID      string `json:"pool_id"`
	AffiliateID string `json:"affiliate_id"`
	Amount      uint64 `json:"amount"`
	Tier        int    `json:"tier"`
}

type AccrueCommissionResponse struct {
	PendingAmount uint64 `json:"pending_amount"`
	Tier          int    `json:"tier"`
	WeekNumber    uint64 `json:"week_number"`
}

type ClaimCommissionRequest struct {
	PoolID        string `json:"pool_id"`
	Amount        uint64 `json:"amount"`
	Tier          int    `json:"tier"`
	WeekNumber    uint64 `json:"week_number"`
	ReferralCount uint32 `json:"referral_count"`
}

type ClaimCommissionResponse struct {
	ClaimID string `json:"claim_id"`
	Amount  uint64 `json:"amount"`
}

type GetAccumulatorRequest struct{}

type GetAccumulatorResponse struct {
	PendingAmount uint64 `json:"pending_amount"`
	Tier          int    `json:"tier"`
	ReferralCount uint32 `json:"referral_count"`
	WeekNumber    uint64 `json:"week_number"`
}

type GetAffiliatePoolRequest struct {
	PoolID string `json:"pool_id"`
}

type GetAffiliatePoolResponse struct {
	Pool AffiliatePool `json:"pool"`
}

type AffiliateLeaderboardRequest struct {
	Limit int `json:"limit"`
}

type AffiliateLeaderboardEntry struct {
	AffiliateID string `json:"affiliate_id"`
	Total       uint64 `json:"total"`
}

type AffiliateLeaderboardResponse struct {
	Entries []AffiliateLeaderboardEntry `json:"entries"`
}
