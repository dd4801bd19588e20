package repository

import (
	"context"
	"errors"
	"math"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type AffiliateRepository interface {
	CreatePool(ctx context.Context, pool *entity.AffiliatePool) error
	GetPool(ctx context.Context, id string) (*entity.AffiliatePool, error)
	AddDeposit(ctx context.Context, poolID string, amount uint64) error
	AddClaimed(ctx context.Context, poolID string, amount uint64) error
	SetCurrentWeek(ctx context.Context, poolID string, week uint64, releaseAt int64) error
	CreateAccumulator(ctx context.Context, acc *entity.AffiliateAccumulator) error
	GetAccumulator(ctx context.Context, id string) (*entity.AffiliateAccumulator, error)
	AccrueToAccumulator(ctx context.Context, id string, amount uint64, tier int, week uint64, now int64) error
	DebitPending(ctx context.Context, id string, amount uint64) error
	CreateClaim(ctx context.Context, claim *entity.AffiliateClaim) error
	GetClaimsByAffiliate(ctx context.Context, affiliateID string) ([]entity.AffiliateClaim, error)
}

type affiliateRepository struct{}

func NewAffiliateRepository() *affiliateRepository {
	return &affiliateRepository{}
}

func (r *affiliateRepository) CreatePool(ctx context.Context, pool *entity.AffiliatePool) error {
	return xcontext.DB(ctx).Create(pool).Error
}

func (r *affiliateRepository) GetPool(ctx context.Context, id string) (*entity.AffiliatePool, error) {
	var result entity.AffiliatePool
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *affiliateRepository) AddDeposit(ctx context.Context, poolID string, amount uint64) error {
	if amount > maxStoredAmount {
		return gorm.ErrRecordNotFound
	}

	tx := xcontext.DB(ctx).
		Model(&entity.AffiliatePool{}).
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

// AddClaimed books a commission payout. The funds guard keeps claims within
// what the pool actually holds.
func (r *affiliateRepository) AddClaimed(ctx context.Context, poolID string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.AffiliatePool{}).
		Where("id=? AND total_deposited - total_claimed >= ?", poolID, amount).
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

func (r *affiliateRepository) SetCurrentWeek(ctx context.Context, poolID string, week uint64, releaseAt int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.AffiliatePool{}).
		Where("id=?", poolID).
		Updates(map[string]any{
			"current_week":    week,
			"last_release_at": releaseAt,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *affiliateRepository) CreateAccumulator(ctx context.Context, acc *entity.AffiliateAccumulator) error {
	return xcontext.DB(ctx).Create(acc).Error
}

func (r *affiliateRepository) GetAccumulator(ctx context.Context, id string) (*entity.AffiliateAccumulator, error) {
	var result entity.AffiliateAccumulator
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// AccrueToAccumulator folds one commission into the accumulator. All counters
// move relatively in the statement, so concurrent accruals add up instead of
// overwriting each other; the guards keep pending_amount and referral_count
// inside their stored ranges.
func (r *affiliateRepository) AccrueToAccumulator(
	ctx context.Context, id string, amount uint64, tier int, week uint64, now int64,
) error {
	if amount > maxStoredAmount {
		return gorm.ErrRecordNotFound
	}

	tx := xcontext.DB(ctx).
		Model(&entity.AffiliateAccumulator{}).
		Where("id=? AND pending_amount <= ? AND referral_count < ?",
			id, maxStoredAmount-amount, uint32(math.MaxUint32)).
		Updates(map[string]any{
			"pending_amount": gorm.Expr("pending_amount+?", amount),
			"referral_count": gorm.Expr("referral_count+1"),
			"tier":           gorm.Expr("CASE WHEN tier < ? THEN ? ELSE tier END", tier, tier),
			"week_number":    week,
			"last_updated":   now,
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

// DebitPending reduces the pending balance claimed against. The guard keeps a
// concurrent claim from driving the balance below zero.
func (r *affiliateRepository) DebitPending(ctx context.Context, id string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.AffiliateAccumulator{}).
		Where("id=? AND pending_amount >= ?", id, amount).
		Update("pending_amount", gorm.Expr("pending_amount-?", amount))

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

func (r *affiliateRepository) CreateClaim(ctx context.Context, claim *entity.AffiliateClaim) error {
	return xcontext.DB(ctx).Create(claim).Error
}

func (r *affiliateRepository) GetClaimsByAffiliate(ctx context.Context, affiliateID string) ([]entity.AffiliateClaim, error) {
	var result []entity.AffiliateClaim
	err := xcontext.DB(ctx).
		Where("affiliate_id=?", affiliateID).
		Order("week_number DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
