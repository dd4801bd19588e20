package entity

// EventLog is the outbox row for a domain event. Rows are written in the same
// transaction as the state change they describe and published to kafka after
// commit.
type EventLog struct {
	Base

	Topic   string `gorm:"index"`
	Key     string
	Payload Map
}
