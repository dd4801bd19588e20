package indexer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/solotto-lab/backend/internal/domain"
	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/pkg/pubsub"
	"github.com/solotto-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_Indexer_AffiliateAccrued(t *testing.T) {
	type incr struct {
		key    string
		amount int64
		member string
	}

	var got []incr
	redisClient := &testutil.MockRedisClient{
		ZIncrByFunc: func(ctx context.Context, key string, amount int64, member string) error {
			got = append(got, incr{key, amount, member})
			return nil
		},
	}

	msg, err := json.Marshal(model.AffiliateAccruedEvent{
		AffiliateID:  "affiliate",
		Amount:       75,
		Tier:         2,
		WeekNumber:   2000,
		TotalPending: 75,
		Timestamp:    1700000000,
	})
	require.NoError(t, err)

	idx := NewIndexer(redisClient)
	idx.Subscribe(testutil.MockContext(), &pubsub.Pack{
		Topic: model.AffiliateAccruedTopic,
		Key:   []byte("affiliate"),
		Msg:   msg,
	}, time.Now())

	require.Len(t, got, 1)
	require.Equal(t, domain.LeaderboardKey, got[0].key)
	require.Equal(t, int64(75), got[0].amount)
	require.Equal(t, "affiliate", got[0].member)

	// Claim topics are ignored.
	idx.Subscribe(testutil.MockContext(), &pubsub.Pack{
		Topic: model.PrizeClaimedTopic,
		Msg:   []byte("{}"),
	}, time.Now())
	require.Len(t, got, 1)
}
