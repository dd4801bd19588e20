package kafka

import (
	"context"

	"github.com/solotto-lab/backend/pkg/pubsub"
	"github.com/solotto-lab/backend/pkg/xcontext"

	"github.com/Shopify/sarama"
)

type subscriber struct {
	groupID     string
	brokerAddrs []string
	topics      []string
	client      sarama.ConsumerGroup
	handler     pubsub.SubscribeHandler
}

func NewSubscriber(
	groupID string,
	brokerAddrs []string,
	topics []string,
	handler pubsub.SubscribeHandler,
) pubsub.Subscriber {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	client, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		panic(err)
	}

	return &subscriber{
		groupID:     groupID,
		brokerAddrs: brokerAddrs,
		topics:      topics,
		client:      client,
		handler:     handler,
	}
}

func (s *subscriber) Stop(ctx context.Context) error {
	return s.client.Close()
}

func (s *subscriber) Subscribe(ctx context.Context) {
	consumer := consumerGroupHandler{ready: make(chan bool), fn: s.handler}
	go func() {
		for {
			// Consume must be called again after every server-side rebalance
			// to get the new claims.
			if err := s.client.Consume(ctx, s.topics, &consumer); err != nil {
				xcontext.Logger(ctx).Errorf("Consumer stopped: %v", err)
				return
			}

			if ctx.Err() != nil {
				return
			}

			consumer.ready = make(chan bool)
		}
	}()
	<-consumer.ready
}

type consumerGroupHandler struct {
	ready chan bool
	fn    pubsub.SubscribeHandler
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim,
) error {
	for message := range claim.Messages() {
		session.MarkMessage(message, "")
		h.fn(session.Context(), &pubsub.Pack{
			Topic: message.Topic,
			Key:   message.Key,
			Msg:   message.Value,
		}, message.Timestamp)
	}

	return nil
}
