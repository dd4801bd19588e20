package testutil

import (
	"context"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/xcontext"
)

func CreateVault(ctx context.Context, id, ownerID string, balance uint64) {
	err := xcontext.DB(ctx).Create(&entity.Vault{
		Base:    entity.Base{ID: id},
		OwnerID: ownerID,
		Balance: balance,
	}).Error
	if err != nil {
		panic(err)
	}
}

func VaultBalance(ctx context.Context, id string) uint64 {
	var vault entity.Vault
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&vault).Error; err != nil {
		panic(err)
	}

	return vault.Balance
}
