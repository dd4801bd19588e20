package main

import (
	"github.com/solotto-lab/backend/internal/entity"
	"github.com/urfave/cli/v2"
)

func (s *srv) migrate(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadLogger()
	s.loadDatabase()

	if err := entity.MigrateTable(s.ctx); err != nil {
		return err
	}

	s.logger.Infof("Migration completed")
	return nil
}
