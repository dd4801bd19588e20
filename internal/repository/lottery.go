package repository

import (
	"context"
	"errors"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type LotteryRepository interface {
	Create(ctx context.Context, lottery *entity.Lottery) error
	GetByID(ctx context.Context, id string) (*entity.Lottery, error)
	GetDue(ctx context.Context, ts int64) ([]entity.Lottery, error)
	CheckAndSellTicket(ctx context.Context, id string, ts int64, prizeShare uint64) error
	SetDrawn(ctx context.Context, id string, winningTickets []uint32) error
	Delete(ctx context.Context, id string) error
}

type lotteryRepository struct{}

func NewLotteryRepository() *lotteryRepository {
	return &lotteryRepository{}
}

func (r *lotteryRepository) Create(ctx context.Context, lottery *entity.Lottery) error {
	return xcontext.DB(ctx).Create(lottery).Error
}

func (r *lotteryRepository) GetByID(ctx context.Context, id string) (*entity.Lottery, error) {
	var result entity.Lottery
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) GetDue(ctx context.Context, ts int64) ([]entity.Lottery, error) {
	var result []entity.Lottery
	err := xcontext.DB(ctx).
		Where("is_drawn=? AND draw_timestamp<=?", false, ts).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CheckAndSellTicket takes the next ticket slot and books the prize share in
// one statement. The WHERE clause repeats the sale preconditions so a
// concurrent sale of the last slot, an early draw, or an expired lottery makes
// the update match nothing.
func (r *lotteryRepository) CheckAndSellTicket(ctx context.Context, id string, ts int64, prizeShare uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Lottery{}).
		Where("id=? AND is_drawn=? AND current_tickets < max_tickets AND draw_timestamp > ?",
			id, false, ts).
		Updates(map[string]any{
			"current_tickets": gorm.Expr("current_tickets+1"),
			"prize_pool":      gorm.Expr("prize_pool+?", prizeShare),
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

func (r *lotteryRepository) SetDrawn(ctx context.Context, id string, winningTickets []uint32) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Lottery{}).
		Where("id=? AND is_drawn=?", id, false).
		Updates(map[string]any{
			"is_drawn":        true,
			"winning_tickets": entity.Array[uint32](winningTickets),
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete closes a drawn lottery. The is_drawn guard keeps an undrawn lottery
// from being closed out from under its ticket holders.
func (r *lotteryRepository) Delete(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Where("id=? AND is_drawn=?", id, true).
		Delete(&entity.Lottery{})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
