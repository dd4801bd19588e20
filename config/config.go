package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env string `toml:"env"`

	Database  DatabaseConfigs `toml:"database"`
	ApiServer ServerConfigs   `toml:"api_server"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Lottery   LotteryConfigs  `toml:"lottery"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr string `toml:"addr"`
}

type LotteryConfigs struct {
	// Authority is the operator identity allowed to open lotteries, execute
	// draws, and feed affiliate accruals.
	Authority string `toml:"authority"`

	// TreasuryVault and AffiliatesVault name the balances receiving the 30%
	// treasury and 30% affiliate shares of every ticket sale.
	TreasuryVault   string `toml:"treasury_vault"`
	AffiliatesVault string `toml:"affiliates_vault"`

	// MaxWinnersPerDraw caps how many winning numbers the automated draw
	// picks for a due lottery.
	MaxWinnersPerDraw int `toml:"max_winners_per_draw"`
}

// Load reads the TOML configuration file and applies environment overrides
// for the secrets that should not live on disk.
func Load(path string) (Configs, error) {
	var cfg Configs
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, fmt.Errorf("toml.DecodeFile: %w", err)
		}
	}

	if v, ok := os.LookupEnv("ENV"); ok {
		cfg.Env = v
	}

	if v, ok := os.LookupEnv("DB_PASSWORD"); ok {
		cfg.Database.Password = v
	}

	if v, ok := os.LookupEnv("PORT"); ok {
		cfg.ApiServer.Port = v
	}

	return cfg, nil
}
