package repository

import (
	"context"
	"errors"
	"math"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Amounts live in signed 64-bit database columns. Additions past this bound
// would wrap in SQL instead of aborting, so every relative increment in this
// package guards against it in the statement.
const maxStoredAmount = uint64(math.MaxInt64)

type VaultRepository interface {
	Create(ctx context.Context, vault *entity.Vault) error
	GetByID(ctx context.Context, id string) (*entity.Vault, error)
	Credit(ctx context.Context, id string, amount uint64) error
	Transfer(ctx context.Context, fromID, toID string, amount uint64) error
}

type vaultRepository struct{}

func NewVaultRepository() *vaultRepository {
	return &vaultRepository{}
}

func (r *vaultRepository) Create(ctx context.Context, vault *entity.Vault) error {
	return xcontext.DB(ctx).Create(vault).Error
}

func (r *vaultRepository) GetByID(ctx context.Context, id string) (*entity.Vault, error) {
	var result entity.Vault
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// Credit adds to a balance. An unknown vault or a balance that would leave
// the stored range matches no rows.
func (r *vaultRepository) Credit(ctx context.Context, id string, amount uint64) error {
	if amount > maxStoredAmount {
		return gorm.ErrRecordNotFound
	}

	tx := xcontext.DB(ctx).
		Model(&entity.Vault{}).
		Where("id=? AND balance <= ?", id, maxStoredAmount-amount).
		Update("balance", gorm.Expr("balance+?", amount))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Transfer debits with a balance guard then credits. Both legs run on the
// transaction bound to ctx; when the caller has none, the method opens its
// own so a failed credit never leaves a dangling debit.
func (r *vaultRepository) Transfer(ctx context.Context, fromID, toID string, amount uint64) error {
	if xcontext.HasDBTransaction(ctx) {
		return r.transfer(ctx, fromID, toID, amount)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := r.transfer(ctx, fromID, toID, amount); err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

func (r *vaultRepository) transfer(ctx context.Context, fromID, toID string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Vault{}).
		Where("id=? AND balance >= ?", fromID, amount).
		Update("balance", gorm.Expr("balance-?", amount))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.Credit(ctx, toID, amount)
}
