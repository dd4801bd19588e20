package cron

import (
	"context"
	"time"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/crypto"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

const drawInterval = 5 * time.Minute

// DrawLotteryCronJob executes the draw of every lottery whose timestamp has
// passed. Winners come from a local randomness source; deployments with an
// external oracle submit the draw themselves and this job never sees those
// lotteries drawn=false past their timestamp.
type DrawLotteryCronJob struct {
	lotteryRepo repository.LotteryRepository
	ticketRepo  repository.TicketRepository
}

func NewDrawLotteryCronJob(
	lotteryRepo repository.LotteryRepository,
	ticketRepo repository.TicketRepository,
) *DrawLotteryCronJob {
	return &DrawLotteryCronJob{
		lotteryRepo: lotteryRepo,
		ticketRepo:  ticketRepo,
	}
}

func (job *DrawLotteryCronJob) Do(ctx context.Context) {
	now := xcontext.Now(ctx).Unix()
	lotteries, err := job.lotteryRepo.GetDue(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get due lotteries: %v", err)
		return
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i := range lotteries {
		lottery := lotteries[i]
		eg.Go(func() error {
			if err := job.draw(egCtx, &lottery); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot draw lottery %s: %v", lottery.ID, err)
			}

			return nil
		})
	}

	eg.Wait()
}

func (job *DrawLotteryCronJob) draw(ctx context.Context, lottery *entity.Lottery) error {
	maxWinners := xcontext.Configs(ctx).Lottery.MaxWinnersPerDraw
	if maxWinners <= 0 || maxWinners > entity.MaxWinningTickets {
		maxWinners = entity.MaxWinningTickets
	}

	winners := pickWinners(int(lottery.CurrentTickets), maxWinners)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := job.lotteryRepo.SetDrawn(ctx, lottery.ID, winners); err != nil {
		return err
	}

	if err := job.ticketRepo.MarkWinners(ctx, lottery.ID, winners); err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	xcontext.Logger(ctx).Infof("Drew lottery %s with %d winners", lottery.ID, len(winners))
	return nil
}

// pickWinners samples count distinct ticket numbers from 1..sold. A lottery
// with no sold tickets draws an empty winner list.
func pickWinners(sold, count int) []uint32 {
	if count > sold {
		count = sold
	}

	winners := []uint32{}
	seen := map[uint32]bool{}
	for len(winners) < count {
		number := uint32(crypto.RandIntn(sold) + 1)
		if seen[number] {
			continue
		}

		seen[number] = true
		winners = append(winners, number)
	}

	return winners
}

func (job *DrawLotteryCronJob) RunNow() bool {
	return true
}

func (job *DrawLotteryCronJob) Next() time.Time {
	return time.Now().Add(drawInterval)
}
