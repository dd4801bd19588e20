package main

import (
	"fmt"
	"net/http"

	"github.com/solotto-lab/backend/internal/middleware"
	"github.com/solotto-lab/backend/pkg/router"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadLogger()
	s.loadDatabase()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	s.logger.Infof("Starting server on port %s", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, s.configs, s.logger)

	publicRouter := s.router.Branch()
	{
		router.GET(publicRouter, "/getLottery", s.lotteryDomain.Get)
		router.GET(publicRouter, "/getLotteryWinners", s.lotteryDomain.GetWinners)
		router.GET(publicRouter, "/getPrizePool", s.prizeDomain.GetPool)
		router.GET(publicRouter, "/getPrizeTierTable", s.prizeDomain.GetTierTable)
		router.GET(publicRouter, "/getAffiliatePool", s.affiliateDomain.GetPool)
		router.GET(publicRouter, "/getAffiliateLeaderboard", s.affiliateDomain.Leaderboard)
	}

	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	{
		// Lottery API
		router.POST(authRouter, "/openLottery", s.lotteryDomain.Open)
		router.POST(authRouter, "/purchaseTicket", s.lotteryDomain.PurchaseTicket)
		router.POST(authRouter, "/executeDraw", s.lotteryDomain.ExecuteDraw)
		router.POST(authRouter, "/closeLottery", s.lotteryDomain.Close)
		router.GET(authRouter, "/getMyTickets", s.lotteryDomain.GetUserTickets)

		// Prize API
		router.POST(authRouter, "/openPrizePool", s.prizeDomain.OpenPool)
		router.POST(authRouter, "/depositPrizePool", s.prizeDomain.Deposit)
		router.POST(authRouter, "/setDrawCompleted", s.prizeDomain.SetDrawCompleted)
		router.POST(authRouter, "/claimPrize", s.prizeDomain.Claim)
		router.GET(authRouter, "/getMyPrizeClaims", s.prizeDomain.GetClaims)

		// Affiliate API
		router.POST(authRouter, "/openAffiliatePool", s.affiliateDomain.OpenPool)
		router.POST(authRouter, "/depositAffiliatePool", s.affiliateDomain.Deposit)
		router.POST(authRouter, "/openAccumulator", s.affiliateDomain.OpenAccumulator)
		router.GET(authRouter, "/getMyAccumulator", s.affiliateDomain.GetAccumulator)
		router.POST(authRouter, "/accrueCommission", s.affiliateDomain.Accrue)
		router.POST(authRouter, "/claimCommission", s.affiliateDomain.Claim)
	}
}
