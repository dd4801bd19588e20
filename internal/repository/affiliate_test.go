package repository

import (
	"math"
	"testing"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_affiliateRepository_AccrueToAccumulator(t *testing.T) {
	ctx := testutil.MockContext()
	r := NewAffiliateRepository()

	require.NoError(t, r.CreateAccumulator(ctx, &entity.AffiliateAccumulator{
		Base:        entity.Base{ID: "acc"},
		AffiliateID: "affiliate",
		Tier:        1,
	}))

	require.NoError(t, r.AccrueToAccumulator(ctx, "acc", 50, 1, 10, 1000))
	require.NoError(t, r.AccrueToAccumulator(ctx, "acc", 25, 3, 10, 1001))

	acc, err := r.GetAccumulator(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, uint64(75), acc.PendingAmount)
	require.Equal(t, uint32(2), acc.ReferralCount)
	require.Equal(t, 3, acc.Tier)

	// The tier never goes back down.
	require.NoError(t, r.AccrueToAccumulator(ctx, "acc", 5, 2, 11, 1002))

	acc, err = r.GetAccumulator(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, 3, acc.Tier)
	require.Equal(t, uint64(11), acc.WeekNumber)
}

func Test_affiliateRepository_AccrueToAccumulator_Overflow(t *testing.T) {
	ctx := testutil.MockContext()
	r := NewAffiliateRepository()

	require.NoError(t, r.CreateAccumulator(ctx, &entity.AffiliateAccumulator{
		Base:          entity.Base{ID: "acc"},
		AffiliateID:   "affiliate",
		PendingAmount: maxStoredAmount - 1,
		Tier:          1,
	}))

	err := r.AccrueToAccumulator(ctx, "acc", 2, 1, 10, 1000)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	acc, err := r.GetAccumulator(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, maxStoredAmount-1, acc.PendingAmount)
	require.Equal(t, uint32(0), acc.ReferralCount)
}

func Test_affiliateRepository_AccrueToAccumulator_ReferralCap(t *testing.T) {
	ctx := testutil.MockContext()
	r := NewAffiliateRepository()

	require.NoError(t, r.CreateAccumulator(ctx, &entity.AffiliateAccumulator{
		Base:          entity.Base{ID: "acc"},
		AffiliateID:   "affiliate",
		ReferralCount: math.MaxUint32,
		Tier:          1,
	}))

	err := r.AccrueToAccumulator(ctx, "acc", 1, 1, 10, 1000)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_affiliateRepository_AddDeposit_Overflow(t *testing.T) {
	ctx := testutil.MockContext()
	r := NewAffiliateRepository()

	require.NoError(t, r.CreatePool(ctx, &entity.AffiliatePool{
		Base:           entity.Base{ID: "pool"},
		Authority:      testutil.Authority,
		TotalDeposited: maxStoredAmount - 1,
	}))

	err := r.AddDeposit(ctx, "pool", 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	pool, err := r.GetPool(ctx, "pool")
	require.NoError(t, err)
	require.Equal(t, maxStoredAmount-1, pool.TotalDeposited)
}
