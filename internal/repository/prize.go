package repository

import (
	"context"
	"errors"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PrizeRepository interface {
	CreatePool(ctx context.Context, pool *entity.PrizePool) error
	GetPool(ctx context.Context, id string) (*entity.PrizePool, error)
	AddDeposit(ctx context.Context, poolID string, amount uint64) error
	SetDrawCompleted(ctx context.Context, poolID string, completed bool) error
	CheckAndClaim(ctx context.Context, poolID string, amount uint64) error
	CreateClaim(ctx context.Context, claim *entity.PrizeClaim) error
	GetClaim(ctx context.Context, id string) (*entity.PrizeClaim, error)
	GetClaimsByClaimer(ctx context.Context, claimerID string) ([]entity.PrizeClaim, error)
}

type prizeRepository struct{}

func NewPrizeRepository() *prizeRepository {
	return &prizeRepository{}
}

func (r *prizeRepository) CreatePool(ctx context.Context, pool *entity.PrizePool) error {
	return xcontext.DB(ctx).Create(pool).Error
}

func (r *prizeRepository) GetPool(ctx context.Context, id string) (*entity.PrizePool, error) {
	var result entity.PrizePool
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *prizeRepository) AddDeposit(ctx context.Context, poolID string, amount uint64) error {
	if amount > maxStoredAmount {
		return gorm.ErrRecordNotFound
	}

	tx := xcontext.DB(ctx).
		Model(&entity.PrizePool{}).
		Where("id=? AND total_deposited <= ?", poolID, maxStoredAmount-amount).
		Update("total_deposited", gorm.Expr("total_deposited+?", amount))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SetDrawCompleted advances the round on every completed=true call, even when
// the flag is already set. Callers repeating the call therefore skip rounds;
// that matches how round numbering has always worked and claim keys depend on
// it staying that way.
func (r *prizeRepository) SetDrawCompleted(ctx context.Context, poolID string, completed bool) error {
	updateMap := map[string]any{
		"draw_completed": completed,
	}

	if completed {
		updateMap["current_round"] = gorm.Expr("current_round+1")
	}

	tx := xcontext.DB(ctx).
		Model(&entity.PrizePool{}).
		Where("id=?", poolID).
		Updates(updateMap)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CheckAndClaim books a payout against the pool. The WHERE clause requires a
// completed draw and enough unclaimed funds, so an early or oversized claim
// matches nothing.
func (r *prizeRepository) CheckAndClaim(ctx context.Context, poolID string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.PrizePool{}).
		Where("id=? AND draw_completed=? AND total_deposited - total_claimed >= ?",
			poolID, true, amount).
		Update("total_claimed", gorm.Expr("total_claimed+?", amount))

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

func (r *prizeRepository) CreateClaim(ctx context.Context, claim *entity.PrizeClaim) error {
	return xcontext.DB(ctx).Create(claim).Error
}

func (r *prizeRepository) GetClaim(ctx context.Context, id string) (*entity.PrizeClaim, error) {
	var result entity.PrizeClaim
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *prizeRepository) GetClaimsByClaimer(ctx context.Context, claimerID string) ([]entity.PrizeClaim, error) {
	var result []entity.PrizeClaim
	err := xcontext.DB(ctx).
		Where("claimer_id=?", claimerID).
		Order("claimed_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
