package repository

import (
	"context"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/xcontext"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.EventLog) error
	GetByTopic(ctx context.Context, topic string, offset, limit int) ([]entity.EventLog, error)
}

type eventRepository struct{}

func NewEventRepository() *eventRepository {
	return &eventRepository{}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.EventLog) error {
	return xcontext.DB(ctx).Create(event).Error
}

func (r *eventRepository) GetByTopic(ctx context.Context, topic string, offset, limit int) ([]entity.EventLog, error) {
	var result []entity.EventLog
	err := xcontext.DB(ctx).
		Where("topic=?", topic).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
