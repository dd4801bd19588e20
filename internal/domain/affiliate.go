package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/fatih/structs"
	"github.com/pkg/math"
	"github.com/solotto-lab/backend/internal/common"
	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/crypto"
	"github.com/solotto-lab/backend/pkg/dateutil"
	"github.com/solotto-lab/backend/pkg/errorx"
	"github.com/solotto-lab/backend/pkg/pubsub"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"github.com/solotto-lab/backend/pkg/xredis"
	"gorm.io/gorm"
)

// LeaderboardKey is the redis sorted set holding lifetime accrued commission
// per affiliate. The indexer maintains it from accrual events.
const LeaderboardKey = "affiliate_leaderboard"

// CommissionRate returns the commission percentage of a tier. This table is
// informational metadata for callers computing accrual amounts; the accrual
// itself trusts the caller-supplied amount.
func CommissionRate(tier int) uint64 {
	switch tier {
	case 1:
		return 5
	case 2:
		return 10
	case 3:
		return 20
	case 4:
		return 30
	}

	return 5
}

type AffiliateDomain interface {
	OpenPool(context.Context, *model.OpenAffiliatePoolRequest) (*model.OpenAffiliatePoolResponse, error)
	GetPool(context.Context, *model.GetAffiliatePoolRequest) (*model.GetAffiliatePoolResponse, error)
	Deposit(context.Context, *model.DepositAffiliateRequest) (*model.DepositAffiliateResponse, error)
	OpenAccumulator(context.Context, *model.OpenAccumulatorRequest) (*model.OpenAccumulatorResponse, error)
	GetAccumulator(context.Context, *model.GetAccumulatorRequest) (*model.GetAccumulatorResponse, error)
	Accrue(context.Context, *model.AccrueCommissionRequest) (*model.AccrueCommissionResponse, error)
	Claim(context.Context, *model.ClaimCommissionRequest) (*model.ClaimCommissionResponse, error)
	Leaderboard(context.Context, *model.AffiliateLeaderboardRequest) (*model.AffiliateLeaderboardResponse, error)
}

type affiliateDomain struct {
	affiliateRepo repository.AffiliateRepository
	vaultRepo     repository.VaultRepository
	eventRepo     repository.EventRepository
	publisher     pubsub.Publisher
	redisClient   xredis.Client
}

func NewAffiliateDomain(
	affiliateRepo repository.AffiliateRepository,
	vaultRepo repository.VaultRepository,
	eventRepo repository.EventRepository,
	publisher pubsub.Publisher,
	redisClient xredis.Client,
) *affiliateDomain {
	return &affiliateDomain{
		affiliateRepo: affiliateRepo,
		vaultRepo:     vaultRepo,
		eventRepo:     eventRepo,
		publisher:     publisher,
		redisClient:   redisClient,
	}
}

func accumulatorID(affiliateID string) string {
	return crypto.DeriveKey("accumulator", affiliateID)
}

func (d *affiliateDomain) OpenPool(
	ctx context.Context, req *model.OpenAffiliatePoolRequest,
) (*model.OpenAffiliatePoolResponse, error) {
	cfg := xcontext.Configs(ctx)
	if err := common.VerifyAuthority(ctx, cfg.Lottery.Authority); err != nil {
		return nil, err
	}

	// A single affiliate pool per deployment.
	id := crypto.DeriveKey("affiliate_pool")
	vaultID := crypto.DeriveKey("affiliate_vault")
	now := xcontext.Now(ctx).Unix()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	vault := &entity.Vault{Base: entity.Base{ID: vaultID}, OwnerID: id}
	if err := d.vaultRepo.Create(ctx, vault); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create affiliate vault: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The affiliate pool already exists")
	}

	pool := &entity.AffiliatePool{
		Base:          entity.Base{ID: id},
		Authority:     cfg.Lottery.Authority,
		VaultID:       vaultID,
		CurrentWeek:   dateutil.CurrentWeek(now),
		LastReleaseAt: now,
	}

	if err := d.affiliateRepo.CreatePool(ctx, pool); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create affiliate pool: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The affiliate pool already exists")
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.OpenAffiliatePoolResponse{ID: id}, nil
}

func (d *affiliateDomain) GetPool(
	ctx context.Context, req *model.GetAffiliatePoolRequest,
) (*model.GetAffiliatePoolResponse, error) {
	pool, err := d.affiliateRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found affiliate pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get affiliate pool: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetAffiliatePoolResponse{Pool: model.ConvertAffiliatePool(pool)}, nil
}

func (d *affiliateDomain) Deposit(
	ctx context.Context, req *model.DepositAffiliateRequest,
) (*model.DepositAffiliateResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	pool, err := d.affiliateRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found affiliate pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get affiliate pool: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.vaultRepo.Transfer(ctx, WalletVaultID(userID), pool.VaultID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "Insufficient balance")
		}

		xcontext.Logger(ctx).Errorf("Cannot transfer deposit: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.affiliateRepo.AddDeposit(ctx, pool.ID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ArithmeticOverflow, "Arithmetic overflow")
		}

		xcontext.Logger(ctx).Errorf("Cannot record deposit: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.DepositAffiliateResponse{}, nil
}

func (d *affiliateDomain) OpenAccumulator(
	ctx context.Context, req *model.OpenAccumulatorRequest,
) (*model.OpenAccumulatorResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	now := xcontext.Now(ctx).Unix()
	acc := &entity.AffiliateAccumulator{
		Base:        entity.Base{ID: accumulatorID(userID)},
		AffiliateID: userID,
		Tier:        1,
		WeekNumber:  dateutil.CurrentWeek(now),
		LastUpdated: now,
	}

	if err := d.affiliateRepo.CreateAccumulator(ctx, acc); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create accumulator: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The accumulator already exists")
	}

	return &model.OpenAccumulatorResponse{ID: acc.ID}, nil
}

func (d *affiliateDomain) GetAccumulator(
	ctx context.Context, req *model.GetAccumulatorRequest,
) (*model.GetAccumulatorResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	acc, err := d.affiliateRepo.GetAccumulator(ctx, accumulatorID(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found accumulator")
		}

		xcontext.Logger(ctx).Errorf("Cannot get accumulator: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetAccumulatorResponse{
		PendingAmount: acc.PendingAmount,
		Tier:          acc.Tier,
		ReferralCount: acc.ReferralCount,
		WeekNumber:    acc.WeekNumber,
	}, nil
}

// Accrue books commission earned by a qualifying ticket purchase. Pending
// balances persist across week rollovers, only the stored week index moves.
func (d *affiliateDomain) Accrue(
	ctx context.Context, req *model.AccrueCommissionRequest,
) (*model.AccrueCommissionResponse, error) {
	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	pool, err := d.affiliateRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found affiliate pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get affiliate pool: %v", err)
		return nil, errorx.Unknown
	}

	if err := common.VerifyAuthority(ctx, pool.Authority); err != nil {
		return nil, err
	}

	acc, err := d.affiliateRepo.GetAccumulator(ctx, accumulatorID(req.AffiliateID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found accumulator")
		}

		xcontext.Logger(ctx).Errorf("Cannot get accumulator: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx).Unix()
	currentWeek := dateutil.CurrentWeek(now)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.affiliateRepo.AccrueToAccumulator(ctx, acc.ID, req.Amount, req.Tier, currentWeek, now)
	if err != nil {
		// The accumulator was just read, a guard miss here means the
		// relative add would leave the stored range.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ArithmeticOverflow, "Arithmetic overflow")
		}

		xcontext.Logger(ctx).Errorf("Cannot update accumulator: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.affiliateRepo.AddDeposit(ctx, pool.ID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ArithmeticOverflow, "Arithmetic overflow")
		}

		xcontext.Logger(ctx).Errorf("Cannot record accrual deposit: %v", err)
		return nil, errorx.Unknown
	}

	if pool.CurrentWeek != currentWeek {
		if err := d.affiliateRepo.SetCurrentWeek(ctx, pool.ID, currentWeek, now); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot advance pool week: %v", err)
			return nil, errorx.Unknown
		}
	}

	// Re-read inside the transaction; the response and the event carry the
	// balance as committed, not as computed from a pre-transaction read.
	acc, err = d.affiliateRepo.GetAccumulator(ctx, acc.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload accumulator: %v", err)
		return nil, errorx.Unknown
	}

	ev := model.AffiliateAccruedEvent{
		AffiliateID:  req.AffiliateID,
		Amount:       req.Amount,
		Tier:         req.Tier,
		WeekNumber:   currentWeek,
		TotalPending: acc.PendingAmount,
		Timestamp:    now,
	}

	if err := recordEvent(ctx, d.eventRepo, model.AffiliateAccruedTopic, req.AffiliateID, structs.Map(ev)); err != nil {
		return nil, err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)
	publishEvent(ctx, d.publisher, model.AffiliateAccruedTopic, req.AffiliateID, ev)

	return &model.AccrueCommissionResponse{
		PendingAmount: acc.PendingAmount,
		Tier:          acc.Tier,
		WeekNumber:    acc.WeekNumber,
	}, nil
}

func (d *affiliateDomain) Claim(
	ctx context.Context, req *model.ClaimCommissionRequest,
) (*model.ClaimCommissionResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if req.Tier < 1 || req.Tier > 4 {
		return nil, errorx.New(errorx.BadRequest, "Invalid tier %d", req.Tier)
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	now := xcontext.Now(ctx).Unix()
	currentWeek := dateutil.CurrentWeek(now)
	if req.WeekNumber >= currentWeek && !dateutil.IsAfterRelease(now) {
		return nil, errorx.New(errorx.Unavailable, "The claim is not yet available")
	}

	pool, err := d.affiliateRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found affiliate pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get affiliate pool: %v", err)
		return nil, errorx.Unknown
	}

	acc, err := d.affiliateRepo.GetAccumulator(ctx, accumulatorID(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found accumulator")
		}

		xcontext.Logger(ctx).Errorf("Cannot get accumulator: %v", err)
		return nil, errorx.Unknown
	}

	if acc.PendingAmount < req.Amount {
		return nil, errorx.New(errorx.Unavailable, "Insufficient pending rewards")
	}

	claimID := crypto.DeriveKey(
		"affiliate_claim", userID, strconv.FormatUint(req.WeekNumber, 10))

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.affiliateRepo.AddClaimed(ctx, pool.ID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "Insufficient pool funds")
		}

		xcontext.Logger(ctx).Errorf("Cannot book affiliate claim: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.affiliateRepo.DebitPending(ctx, acc.ID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "Insufficient pending rewards")
		}

		xcontext.Logger(ctx).Errorf("Cannot debit pending rewards: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.vaultRepo.Transfer(ctx, pool.VaultID, WalletVaultID(userID), req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "Insufficient pool funds")
		}

		xcontext.Logger(ctx).Errorf("Cannot transfer rewards: %v", err)
		return nil, errorx.Unknown
	}

	claim := &entity.AffiliateClaim{
		Base:          entity.Base{ID: claimID},
		AffiliateID:   userID,
		Amount:        req.Amount,
		Tier:          req.Tier,
		WeekNumber:    req.WeekNumber,
		ReferralCount: req.ReferralCount,
		ClaimedAt:     now,
	}

	if err := d.affiliateRepo.CreateClaim(ctx, claim); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create affiliate claim: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The rewards of this week were already claimed")
	}

	ev := model.AffiliateClaimedEvent{
		AffiliateID:   userID,
		Amount:        req.Amount,
		Tier:          req.Tier,
		WeekNumber:    req.WeekNumber,
		ReferralCount: req.ReferralCount,
		Timestamp:     now,
	}

	if err := recordEvent(ctx, d.eventRepo, model.AffiliateClaimedTopic, userID, structs.Map(ev)); err != nil {
		return nil, err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)
	publishEvent(ctx, d.publisher, model.AffiliateClaimedTopic, userID, ev)

	return &model.ClaimCommissionResponse{ClaimID: claimID, Amount: req.Amount}, nil
}

func (d *affiliateDomain) Leaderboard(
	ctx context.Context, req *model.AffiliateLeaderboardRequest,
) (*model.AffiliateLeaderboardResponse, error) {
	if d.redisClient == nil {
		return nil, errorx.New(errorx.Unavailable, "Leaderboard is not available")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	limit = math.Min(limit, 100)

	zs, err := d.redisClient.ZRevRangeWithScores(ctx, LeaderboardKey, 0, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	entries := []model.AffiliateLeaderboardEntry{}
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		entries = append(entries, model.AffiliateLeaderboardEntry{
			AffiliateID: member,
			Total:       uint64(z.Score),
		})
	}

	return &model.AffiliateLeaderboardResponse{Entries: entries}, nil
}
