package domain

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/errorx"
	"github.com/solotto-lab/backend/pkg/pubsub"
	"github.com/solotto-lab/backend/pkg/xcontext"
)

// recordEvent appends to the outbox inside the caller's transaction, so the
// event row commits or rolls back together with the state change.
func recordEvent(
	ctx context.Context,
	eventRepo repository.EventRepository,
	topic, key string,
	payload map[string]any,
) error {
	event := &entity.EventLog{
		Base:    entity.Base{ID: uuid.NewString()},
		Topic:   topic,
		Key:     key,
		Payload: payload,
	}

	if err := eventRepo.Create(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record event: %v", err)
		return errorx.Unknown
	}

	return nil
}

// publishEvent pushes to kafka after commit. Publish failures only log; the
// outbox row remains the durable record.
func publishEvent(ctx context.Context, publisher pubsub.Publisher, topic, key string, ev any) {
	if publisher == nil {
		return
	}

	b, err := json.Marshal(ev)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event: %v", err)
		return
	}

	err = publisher.Publish(ctx, topic, &pubsub.Pack{Topic: topic, Key: []byte(key), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish event: %v", err)
	}
}
