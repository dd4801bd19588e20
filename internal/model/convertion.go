package model

import "github.com/solotto-lab/backend/internal/entity"

func ConvertLottery(lottery *entity.Lottery) Lottery {
	if lottery == nil {
		return Lottery{}
	}

	return Lottery{
		ID:             lottery.ID,
		Kind:           string(lottery.Kind),
		Round:          lottery.Round,
		Month:          lottery.Month,
		Year:           lottery.Year,
		TicketPrice:    lottery.TicketPrice,
		MaxTickets:     lottery.MaxTickets,
		CurrentTickets: lottery.CurrentTickets,
		DrawTimestamp:  lottery.DrawTimestamp,
		IsDrawn:        lottery.IsDrawn,
		WinningTickets: lottery.WinningTickets,
		PrizePool:      lottery.PrizePool,
	}
}

func ConvertPrizePool(pool *entity.PrizePool) PrizePool {
	if pool == nil {
		return PrizePool{}
	}

	return PrizePool{
		ID:             pool.ID,
		LotteryType:    pool.LotteryType,
		TotalDeposited: pool.TotalDeposited,
		TotalClaimed:   pool.TotalClaimed,
		CurrentRound:   pool.CurrentRound,
		DrawCompleted:  pool.DrawCompleted,
	}
}

func ConvertPrizeClaim(claim *entity.PrizeClaim) PrizeClaim {
	if claim == nil {
		return PrizeClaim{}
	}

	return PrizeClaim{
		ID:        claim.ID,
		PoolID:    claim.PoolID,
		Round:     claim.Round,
		Tier:      claim.Tier,
		Amount:    claim.Amount,
		ClaimedAt: claim.ClaimedAt,
	}
}

func ConvertAffiliatePool(pool *entity.AffiliatePool) AffiliatePool {
	if pool == nil {
		return AffiliatePool{}
	}

	return AffiliatePool{
		ID:             pool.ID,
		TotalDeposited: pool.TotalDeposited,
		TotalClaimed:   pool.TotalClaimed,
		CurrentWeek:    pool.CurrentWeek,
		LastReleaseAt:  pool.LastReleaseAt,
	}
}
