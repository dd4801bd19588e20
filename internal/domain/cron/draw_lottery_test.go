package cron

import (
	"testing"
	"time"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_DrawLotteryCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	ctx = testutil.MockContextAt(ctx, time.Unix(1700010000, 0))

	lotteryRepo := repository.NewLotteryRepository()
	ticketRepo := repository.NewTicketRepository()

	due := &entity.Lottery{
		Base:           entity.Base{ID: "due"},
		Kind:           entity.LotteryTriDaily,
		TicketPrice:    100,
		MaxTickets:     10,
		CurrentTickets: 5,
		DrawTimestamp:  1700000000,
	}
	require.NoError(t, lotteryRepo.Create(ctx, due))

	notDue := &entity.Lottery{
		Base:          entity.Base{ID: "not-due"},
		Kind:          entity.LotteryTriDaily,
		TicketPrice:   100,
		MaxTickets:    10,
		DrawTimestamp: 1700020000,
	}
	require.NoError(t, lotteryRepo.Create(ctx, notDue))

	for i := uint32(1); i <= 5; i++ {
		require.NoError(t, ticketRepo.Create(ctx, &entity.Ticket{
			Base:      entity.Base{ID: string(rune('a' + i))},
			LotteryID: "due",
			OwnerID:   "buyer",
			Number:    i,
		}))
	}

	job := NewDrawLotteryCronJob(lotteryRepo, ticketRepo)
	job.Do(ctx)

	drawn, err := lotteryRepo.GetByID(ctx, "due")
	require.NoError(t, err)
	require.True(t, drawn.IsDrawn)
	require.NotEmpty(t, drawn.WinningTickets)
	require.LessOrEqual(t, len(drawn.WinningTickets), 5)
	for _, number := range drawn.WinningTickets {
		require.GreaterOrEqual(t, number, uint32(1))
		require.LessOrEqual(t, number, uint32(5))
	}

	undrawn, err := lotteryRepo.GetByID(ctx, "not-due")
	require.NoError(t, err)
	require.False(t, undrawn.IsDrawn)
}

func Test_pickWinners(t *testing.T) {
	require.Empty(t, pickWinners(0, 10))

	winners := pickWinners(5, 10)
	require.Len(t, winners, 5)

	seen := map[uint32]bool{}
	for _, w := range winners {
		require.False(t, seen[w])
		seen[w] = true
	}
}
