package indexer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/solotto-lab/backend/internal/domain"
	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/pkg/pubsub"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"github.com/solotto-lab/backend/pkg/xredis"
)

// Indexer folds settlement events into redis for cheap dashboard reads. It is
// an off-system consumer; losing and replaying messages only re-applies
// increments that the outbox can reconcile.
type Indexer struct {
	redisClient xredis.Client
}

func NewIndexer(redisClient xredis.Client) *Indexer {
	return &Indexer{redisClient: redisClient}
}

func (i *Indexer) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	switch pack.Topic {
	case model.AffiliateAccruedTopic:
		i.handleAffiliateAccrued(ctx, pack.Msg)
	case model.AffiliateClaimedTopic, model.PrizeClaimedTopic:
		// Claims are served from the database, nothing to index.
	default:
		xcontext.Logger(ctx).Warnf("Unknown topic %s", pack.Topic)
	}
}

func (i *Indexer) handleAffiliateAccrued(ctx context.Context, msg []byte) {
	var raw map[string]any
	if err := json.Unmarshal(msg, &raw); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal accrued event: %v", err)
		return
	}

	var ev model.AffiliateAccruedEvent
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &ev,
		WeaklyTypedInput: true,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create decoder: %v", err)
		return
	}

	if err := decoder.Decode(raw); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode accrued event: %v", err)
		return
	}

	err = i.redisClient.ZIncrBy(ctx, domain.LeaderboardKey, int64(ev.Amount), ev.AffiliateID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update leaderboard: %v", err)
	}
}
