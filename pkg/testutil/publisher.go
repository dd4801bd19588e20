package testutil

import (
	"context"

	"github.com/puzpuzpuz/xsync"
	"github.com/solotto-lab/backend/pkg/pubsub"
)

// MockPublisher records published packs per topic, safe for concurrent
// domains under test.
type MockPublisher struct {
	packs *xsync.MapOf[string, []*pubsub.Pack]

	PublishFunc func(context.Context, string, *pubsub.Pack) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{packs: xsync.NewMapOf[[]*pubsub.Pack]()}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	existing, _ := m.packs.Load(topic)
	m.packs.Store(topic, append(existing, pack))
	return nil
}

func (m *MockPublisher) Published(topic string) []*pubsub.Pack {
	packs, _ := m.packs.Load(topic)
	return packs
}
