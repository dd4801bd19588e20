package testutil

import (
	"context"
	"time"

	"github.com/solotto-lab/backend/config"
	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/logger"
	"github.com/solotto-lab/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const Authority = "authority"

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// The in-memory database lives on a single connection; a second pooled
	// connection would start from an empty schema.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Env: "test",
		Lottery: config.LotteryConfigs{
			Authority:         Authority,
			TreasuryVault:     "treasury-vault",
			AffiliatesVault:   "affiliates-vault",
			MaxWinnersPerDraw: 10,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewSilentLogger())
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = MockContext()
	}

	return xcontext.WithRequestUserID(ctx, userID)
}

// MockContextAt pins the injectable clock, letting tests walk a lottery
// through its timeline.
func MockContextAt(ctx context.Context, at time.Time) context.Context {
	if ctx == nil {
		ctx = MockContext()
	}

	return xcontext.WithNowFunc(ctx, func() time.Time { return at })
}
