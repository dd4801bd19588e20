package repository

import (
	"context"
	"errors"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByNumber(ctx context.Context, lotteryID string, number uint32) (*entity.Ticket, error)
	GetByLotteryID(ctx context.Context, lotteryID string) ([]entity.Ticket, error)
	MarkWinners(ctx context.Context, lotteryID string, numbers []uint32) error
	GetUserTickets(ctx context.Context, userID, lotteryID string) (*entity.UserTickets, error)
	CreateUserTickets(ctx context.Context, record *entity.UserTickets) error
	AppendUserTicket(ctx context.Context, id string, numbers []uint32) error
}

type ticketRepository struct{}

func NewTicketRepository() *ticketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return xcontext.DB(ctx).Create(ticket).Error
}

func (r *ticketRepository) GetByNumber(ctx context.Context, lotteryID string, number uint32) (*entity.Ticket, error) {
	var result entity.Ticket
	err := xcontext.DB(ctx).
		Where("lottery_id=? AND number=?", lotteryID, number).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) GetByLotteryID(ctx context.Context, lotteryID string) ([]entity.Ticket, error) {
	var result []entity.Ticket
	err := xcontext.DB(ctx).
		Where("lottery_id=?", lotteryID).
		Order("number ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) MarkWinners(ctx context.Context, lotteryID string, numbers []uint32) error {
	if len(numbers) == 0 {
		return nil
	}

	return xcontext.DB(ctx).
		Model(&entity.Ticket{}).
		Where("lottery_id=? AND number IN (?)", lotteryID, numbers).
		Update("is_winner", true).Error
}

func (r *ticketRepository) GetUserTickets(ctx context.Context, userID, lotteryID string) (*entity.UserTickets, error) {
	var result entity.UserTickets
	err := xcontext.DB(ctx).
		Where("user_id=? AND lottery_id=?", userID, lotteryID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) CreateUserTickets(ctx context.Context, record *entity.UserTickets) error {
	return xcontext.DB(ctx).Create(record).Error
}

// AppendUserTicket replaces the index with an already-appended slice. The
// count guard enforces the per-user capacity even under concurrent purchases.
func (r *ticketRepository) AppendUserTicket(ctx context.Context, id string, numbers []uint32) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserTickets{}).
		Where("id=? AND count < ?", id, entity.MaxUserTicketNumbers).
		Updates(map[string]any{
			"ticket_numbers": entity.Array[uint32](numbers),
			"count":          gorm.Expr("count+1"),
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
