package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/solotto-lab/backend/internal/domain/indexer"
	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/pkg/kafka"
	"github.com/urfave/cli/v2"
)

func (s *srv) startIndexer(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadLogger()
	s.loadRedisClient()

	idx := indexer.NewIndexer(s.redisClient)
	subscriber := kafka.NewSubscriber(
		"indexer",
		[]string{s.configs.Kafka.Addr},
		[]string{
			model.PrizeClaimedTopic,
			model.AffiliateClaimedTopic,
			model.AffiliateAccruedTopic,
		},
		idx.Subscribe,
	)

	subscriber.Subscribe(s.ctx)
	s.logger.Infof("Indexer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return subscriber.Stop(s.ctx)
}
