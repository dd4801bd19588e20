package repository

import (
	"testing"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_vaultRepository_Transfer(t *testing.T) {
	ctx := testutil.MockContext()
	r := NewVaultRepository()

	require.NoError(t, r.Create(ctx, &entity.Vault{
		Base: entity.Base{ID: "from"}, OwnerID: "alice", Balance: 100,
	}))
	require.NoError(t, r.Create(ctx, &entity.Vault{
		Base: entity.Base{ID: "to"}, OwnerID: "bob", Balance: 0,
	}))

	require.NoError(t, r.Transfer(ctx, "from", "to", 60))

	from, err := r.GetByID(ctx, "from")
	require.NoError(t, err)
	require.Equal(t, uint64(40), from.Balance)

	to, err := r.GetByID(ctx, "to")
	require.NoError(t, err)
	require.Equal(t, uint64(60), to.Balance)

	// A short balance moves nothing.
	err = r.Transfer(ctx, "from", "to", 41)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	from, err = r.GetByID(ctx, "from")
	require.NoError(t, err)
	require.Equal(t, uint64(40), from.Balance)

	// Exactly the remaining balance is fine.
	require.NoError(t, r.Transfer(ctx, "from", "to", 40))

	to, err = r.GetByID(ctx, "to")
	require.NoError(t, err)
	require.Equal(t, uint64(100), to.Balance)
}

func Test_vaultRepository_Transfer_UnknownVault(t *testing.T) {
	ctx := testutil.MockContext()
	r := NewVaultRepository()

	require.NoError(t, r.Create(ctx, &entity.Vault{
		Base: entity.Base{ID: "from"}, OwnerID: "alice", Balance: 100,
	}))

	err := r.Transfer(ctx, "missing", "from", 10)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// A failing credit rolls the debit back even without an ambient
	// transaction.
	err = r.Transfer(ctx, "from", "missing", 10)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	from, err := r.GetByID(ctx, "from")
	require.NoError(t, err)
	require.Equal(t, uint64(100), from.Balance)
}

func Test_vaultRepository_Credit_Overflow(t *testing.T) {
	ctx := testutil.MockContext()
	r := NewVaultRepository()

	require.NoError(t, r.Create(ctx, &entity.Vault{
		Base: entity.Base{ID: "vault"}, OwnerID: "alice", Balance: maxStoredAmount - 5,
	}))

	err := r.Credit(ctx, "vault", 10)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	vault, err := r.GetByID(ctx, "vault")
	require.NoError(t, err)
	require.Equal(t, maxStoredAmount-5, vault.Balance)

	// Up to the bound is fine.
	require.NoError(t, r.Credit(ctx, "vault", 5))
}
