package main

import (
	"context"
	"net/http"

	"github.com/solotto-lab/backend/config"
	"github.com/solotto-lab/backend/internal/domain"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/kafka"
	"github.com/solotto-lab/backend/pkg/logger"
	"github.com/solotto-lab/backend/pkg/pubsub"
	"github.com/solotto-lab/backend/pkg/router"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"github.com/solotto-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	configs config.Configs
	logger  logger.Logger
	db      *gorm.DB

	lotteryRepo   repository.LotteryRepository
	ticketRepo    repository.TicketRepository
	vaultRepo     repository.VaultRepository
	prizeRepo     repository.PrizeRepository
	affiliateRepo repository.AffiliateRepository
	eventRepo     repository.EventRepository

	lotteryDomain   domain.LotteryDomain
	prizeDomain     domain.PrizeDomain
	affiliateDomain domain.AffiliateDomain

	publisher   pubsub.Publisher
	redisClient xredis.Client

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cliCtx *cli.Context) {
	cfg, err := config.Load(cliCtx.String("config"))
	if err != nil {
		panic(err)
	}

	s.configs = cfg
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.INFO)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) loadDatabase() {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       s.configs.Database.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.db = db
	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadRedisClient() {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = client
}

func (s *srv) loadPublisher() {
	s.publisher = kafka.NewPublisher("solotto", []string{s.configs.Kafka.Addr})
}

func (s *srv) loadRepos() {
	s.lotteryRepo = repository.NewLotteryRepository()
	s.ticketRepo = repository.NewTicketRepository()
	s.vaultRepo = repository.NewVaultRepository()
	s.prizeRepo = repository.NewPrizeRepository()
	s.affiliateRepo = repository.NewAffiliateRepository()
	s.eventRepo = repository.NewEventRepository()
}

func (s *srv) loadDomains() {
	s.lotteryDomain = domain.NewLotteryDomain(s.lotteryRepo, s.ticketRepo, s.vaultRepo)
	s.prizeDomain = domain.NewPrizeDomain(s.prizeRepo, s.vaultRepo, s.eventRepo, s.publisher)
	s.affiliateDomain = domain.NewAffiliateDomain(
		s.affiliateRepo, s.vaultRepo, s.eventRepo, s.publisher, s.redisClient)
}
