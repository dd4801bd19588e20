package pubsub

import "context"

// Pack is the unit of data exchanged through the message queue.
type Pack struct {
	Topic string
	Key   []byte
	Msg   []byte
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}
