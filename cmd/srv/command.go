package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Solotto"
	app.Usage = ""
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.toml",
			Usage: "Path of the configuration file",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used to start the api service serving lottery, prize, and affiliate endpoints.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to start the worker executing due lottery draws.`,
		},
		{
			Action:      server.startIndexer,
			Name:        "indexer",
			Usage:       "Start event indexer",
			Category:    "Worker",
			Description: `Used to start the worker folding settlement events into redis.`,
		},
		{
			Action:      server.migrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Category:    "Tool",
			Description: `Used to create or update database tables.`,
		},
	}

	s.app = app
}
