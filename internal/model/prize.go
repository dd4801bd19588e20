package model

type PrizePool struct {
	ID             string `json:"id"`
	LotteryType    int    `json:"lottery_type"`
	TotalDeposited uint64 `json:"total_deposited"`
	TotalClaimed   uint64 `json:"total_claimed"`
	CurrentRound   uint64 `json:"current_round"`
	DrawCompleted  bool   `json:"draw_completed"`
}

type OpenPrizePoolRequest struct {
	LotteryType int `json:"lottery_type"`
}

type OpenPrizePoolResponse struct {
	ID string `json:"id"`
}

type DepositPrizeRequest struct {
	PoolID string `json:"pool_id"`
	Amount uint64 `json:"amount"`
}

type DepositPrizeResponse struct{}

type SetDrawCompletedRequest struct {
	PoolID    string `json:"pool_id"`
	Completed bool   `json:"completed"`
}

type SetDrawCompletedResponse struct {
	CurrentRound uint64 `json:"current_round"`
}

type ClaimPrizeRequest struct {
	PoolID string `json:"pool_id"`
	Round  uint64 `json:"round"`
	Tier   int    `json:"tier"`
	Amount uint64 `json:"amount"`
}

type ClaimPrizeResponse struct {
	ClaimID string `json:"claim_id"`
	Amount  uint64 `json:"amount"`
}

type GetPrizePoolRequest struct {
	PoolID string `json:"pool_id"`
}

type GetPrizePoolResponse struct {
	Pool PrizePool `json:"pool"`
}

type GetPrizeTierTableRequest struct {
	LotteryType int `json:"lottery_type"`
}

type GetPrizeTierTableResponse struct {
	// Basis points of the prize pool paid to each tier.
	Tiers map[int]uint64 `json:"tiers"`
}

type GetPrizeClaimsRequest struct{}

type PrizeClaim struct {
	ID        string `json:"id"`
	PoolID    string `json:"pool_id"`
	Round     uint64 `json:"round"`
	Tier      int    `json:"tier"`
	Amount    uint64 `json:"amount"`
	ClaimedAt int64  `json:"claimed_at"`
}

type GetPrizeClaimsResponse struct {
	Claims []PrizeClaim `json:"claims"`
}
