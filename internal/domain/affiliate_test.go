package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/dateutil"
	"github.com/solotto-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

const testWeek = uint64(2000)

func weekStart(week uint64) int64 {
	return dateutil.EpochStart + int64(week)*dateutil.SecondsPerWeek
}

func newTestAffiliateDomain(publisher *testutil.MockPublisher) *affiliateDomain {
	return NewAffiliateDomain(
		repository.NewAffiliateRepository(),
		repository.NewVaultRepository(),
		repository.NewEventRepository(),
		publisher,
		&testutil.MockRedisClient{},
	)
}

func setupAffiliate(
	t *testing.T, d *affiliateDomain,
) (context.Context, string) {
	ctx := testutil.MockContext()
	// Early in the test week, before the release cutoff.
	ctx = testutil.MockContextAt(ctx, time.Unix(weekStart(testWeek)+1000, 0))

	resp, err := d.OpenPool(
		testutil.MockContextWithUserID(ctx, testutil.Authority),
		&model.OpenAffiliatePoolRequest{})
	require.NoError(t, err)

	affiliateCtx := testutil.MockContextWithUserID(ctx, "affiliate")
	_, err = d.OpenAccumulator(affiliateCtx, &model.OpenAccumulatorRequest{})
	require.NoError(t, err)

	return ctx, resp.ID
}

func Test_affiliateDomain_Accrue_TierRatchet(t *testing.T) {
	d := newTestAffiliateDomain(testutil.NewMockPublisher())
	ctx, poolID := setupAffiliate(t, d)
	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)

	resp, err := d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      50,
		Tier:        1,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(50), resp.PendingAmount)
	require.Equal(t, 1, resp.Tier)

	resp, err = d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      100,
		Tier:        3,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(150), resp.PendingAmount)
	require.Equal(t, 3, resp.Tier)

	// The tier never goes back down.
	resp, err = d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      25,
		Tier:        2,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(175), resp.PendingAmount)
	require.Equal(t, 3, resp.Tier)

	affiliateCtx := testutil.MockContextWithUserID(ctx, "affiliate")
	acc, err := d.GetAccumulator(affiliateCtx, &model.GetAccumulatorRequest{})
	require.NoError(t, err)
	require.Equal(t, uint32(3), acc.ReferralCount)
	require.Equal(t, testWeek, acc.WeekNumber)

	pool, err := d.affiliateRepo.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(175), pool.TotalDeposited)
}

func Test_affiliateDomain_Accrue_WeekRolloverKeepsPending(t *testing.T) {
	d := newTestAffiliateDomain(testutil.NewMockPublisher())
	ctx, poolID := setupAffiliate(t, d)
	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)

	_, err := d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      50,
		Tier:        1,
	})
	require.NoError(t, err)

	nextWeekCtx := testutil.MockContextAt(ctx, time.Unix(weekStart(testWeek+1)+1000, 0))
	nextWeekAuthorityCtx := testutil.MockContextWithUserID(nextWeekCtx, testutil.Authority)
	resp, err := d.Accrue(nextWeekAuthorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      30,
		Tier:        1,
	})
	require.NoError(t, err)

	// The stored week moved, the balance survived the rollover.
	require.Equal(t, uint64(80), resp.PendingAmount)
	require.Equal(t, testWeek+1, resp.WeekNumber)

	// The pool followed the rollover.
	pool, err := d.affiliateRepo.GetPool(nextWeekCtx, poolID)
	require.NoError(t, err)
	require.Equal(t, testWeek+1, pool.CurrentWeek)
}

func Test_affiliateDomain_Accrue_ConcurrentAccrualsAddUp(t *testing.T) {
	d := newTestAffiliateDomain(testutil.NewMockPublisher())
	ctx, poolID := setupAffiliate(t, d)
	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)

	const workers = 2
	const accrualsPerWorker = 50

	var wg sync.WaitGroup
	errCh := make(chan error, workers*accrualsPerWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < accrualsPerWorker; j++ {
				_, err := d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
					PoolID:      poolID,
					AffiliateID: "affiliate",
					Amount:      1,
					Tier:        1,
				})
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	// Every accrual landed: the pending balance matches what the pool
	// booked, nothing was overwritten.
	affiliateCtx := testutil.MockContextWithUserID(ctx, "affiliate")
	acc, err := d.GetAccumulator(affiliateCtx, &model.GetAccumulatorRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(workers*accrualsPerWorker), acc.PendingAmount)
	require.Equal(t, uint32(workers*accrualsPerWorker), acc.ReferralCount)

	pool, err := d.affiliateRepo.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, acc.PendingAmount, pool.TotalDeposited)
}

func Test_affiliateDomain_Claim_WeekGating(t *testing.T) {
	d := newTestAffiliateDomain(testutil.NewMockPublisher())
	ctx, poolID := setupAffiliate(t, d)
	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)

	_, err := d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      100,
		Tier:        2,
	})
	require.NoError(t, err)

	testutil.CreateVault(ctx, WalletVaultID("affiliate"), "affiliate", 0)

	// The pool vault needs the funds the purchases routed to it.
	pool, err := d.affiliateRepo.GetPool(ctx, poolID)
	require.NoError(t, err)
	vaultRepo := repository.NewVaultRepository()
	require.NoError(t, vaultRepo.Credit(ctx, pool.VaultID, 100))

	affiliateCtx := testutil.MockContextWithUserID(ctx, "affiliate")

	// The current week is not claimable before the Wednesday cutoff.
	_, err = d.Claim(affiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        100,
		Tier:          2,
		WeekNumber:    testWeek,
		ReferralCount: 1,
	})
	require.Equal(t, "The claim is not yet available", err.Error())

	// Past the cutoff it opens up.
	releaseCtx := testutil.MockContextAt(ctx, time.Unix(weekStart(testWeek)+dateutil.WednesdayOffset, 0))
	releaseAffiliateCtx := testutil.MockContextWithUserID(releaseCtx, "affiliate")
	resp, err := d.Claim(releaseAffiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        100,
		Tier:          2,
		WeekNumber:    testWeek,
		ReferralCount: 1,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(100), resp.Amount)

	require.Equal(t, uint64(100), testutil.VaultBalance(ctx, WalletVaultID("affiliate")))
	require.Equal(t, uint64(0), testutil.VaultBalance(ctx, pool.VaultID))

	pool, err = d.affiliateRepo.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(100), pool.TotalClaimed)
}

func Test_affiliateDomain_Claim_PastWeekAlwaysOpen(t *testing.T) {
	d := newTestAffiliateDomain(testutil.NewMockPublisher())
	ctx, poolID := setupAffiliate(t, d)
	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)

	_, err := d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      100,
		Tier:        1,
	})
	require.NoError(t, err)

	testutil.CreateVault(ctx, WalletVaultID("affiliate"), "affiliate", 0)
	pool, err := d.affiliateRepo.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.NoError(t, repository.NewVaultRepository().Credit(ctx, pool.VaultID, 100))

	affiliateCtx := testutil.MockContextWithUserID(ctx, "affiliate")

	// A previous week is claimable any time.
	resp, err := d.Claim(affiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        60,
		Tier:          1,
		WeekNumber:    testWeek - 1,
		ReferralCount: 1,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(60), resp.Amount)

	// One claim per (affiliate, week).
	_, err = d.Claim(affiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        40,
		Tier:          1,
		WeekNumber:    testWeek - 1,
		ReferralCount: 1,
	})
	require.Equal(t, "The rewards of this week were already claimed", err.Error())

	// A different week is a new claim.
	_, err = d.Claim(affiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        40,
		Tier:          1,
		WeekNumber:    testWeek - 2,
		ReferralCount: 1,
	})
	require.NoError(t, err)
}

func Test_affiliateDomain_Claim_Failures(t *testing.T) {
	d := newTestAffiliateDomain(testutil.NewMockPublisher())
	ctx, poolID := setupAffiliate(t, d)
	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)

	_, err := d.Accrue(authorityCtx, &model.AccrueCommissionRequest{
		PoolID:      poolID,
		AffiliateID: "affiliate",
		Amount:      50,
		Tier:        1,
	})
	require.NoError(t, err)

	affiliateCtx := testutil.MockContextWithUserID(ctx, "affiliate")

	_, err = d.Claim(affiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        50,
		Tier:          5,
		WeekNumber:    testWeek - 1,
		ReferralCount: 1,
	})
	require.Equal(t, "Invalid tier 5", err.Error())

	_, err = d.Claim(affiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        0,
		Tier:          1,
		WeekNumber:    testWeek - 1,
		ReferralCount: 1,
	})
	require.Equal(t, "Amount must be a positive number", err.Error())

	// More than the accumulator holds.
	_, err = d.Claim(affiliateCtx, &model.ClaimCommissionRequest{
		PoolID:        poolID,
		Amount:        80,
		Tier:          1,
		WeekNumber:    testWeek - 1,
		ReferralCount: 1,
	})
	require.Equal(t, "Insufficient pending rewards", err.Error())
}
