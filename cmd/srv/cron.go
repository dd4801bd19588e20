package main

import (
	"github.com/solotto-lab/backend/internal/domain/cron"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadLogger()
	s.loadDatabase()
	s.loadRepos()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(s.ctx, cron.NewDrawLotteryCronJob(s.lotteryRepo, s.ticketRepo))

	return nil
}
