package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/fatih/structs"
	"github.com/solotto-lab/backend/internal/common"
	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/crypto"
	"github.com/solotto-lab/backend/pkg/errorx"
	"github.com/solotto-lab/backend/pkg/pubsub"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Payout tables in basis points of the prize pool. The grand prize pays three
// tiers, every other lottery type pays five.
var (
	grandPrizeTiers = map[int]uint64{1: 5000, 2: 3000, 3: 2000}
	defaultTiers    = map[int]uint64{1: 2000, 2: 1000, 3: 1250, 4: 2750, 5: 3000}
)

const grandPrizeLotteryType = 3

func PrizeTierTable(lotteryType int) map[int]uint64 {
	if lotteryType == grandPrizeLotteryType {
		return grandPrizeTiers
	}

	return defaultTiers
}

type PrizeDomain interface {
	OpenPool(context.Context, *model.OpenPrizePoolRequest) (*model.OpenPrizePoolResponse, error)
	GetPool(context.Context, *model.GetPrizePoolRequest) (*model.GetPrizePoolResponse, error)
	Deposit(context.Context, *model.DepositPrizeRequest) (*model.DepositPrizeResponse, error)
	SetDrawCompleted(context.Context, *model.SetDrawCompletedRequest) (*model.SetDrawCompletedResponse, error)
	Claim(context.Context, *model.ClaimPrizeRequest) (*model.ClaimPrizeResponse, error)
	GetTierTable(context.Context, *model.GetPrizeTierTableRequest) (*model.GetPrizeTierTableResponse, error)
	GetClaims(context.Context, *model.GetPrizeClaimsRequest) (*model.GetPrizeClaimsResponse, error)
}

type prizeDomain struct {
	prizeRepo repository.PrizeRepository
	vaultRepo repository.VaultRepository
	eventRepo repository.EventRepository
	publisher pubsub.Publisher
}

func NewPrizeDomain(
	prizeRepo repository.PrizeRepository,
	vaultRepo repository.VaultRepository,
	eventRepo repository.EventRepository,
	publisher pubsub.Publisher,
) *prizeDomain {
	return &prizeDomain{
		prizeRepo: prizeRepo,
		vaultRepo: vaultRepo,
		eventRepo: eventRepo,
		publisher: publisher,
	}
}

func (d *prizeDomain) OpenPool(
	ctx context.Context, req *model.OpenPrizePoolRequest,
) (*model.OpenPrizePoolResponse, error) {
	cfg := xcontext.Configs(ctx)
	if err := common.VerifyAuthority(ctx, cfg.Lottery.Authority); err != nil {
		return nil, err
	}

	if req.LotteryType <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid lottery type %d", req.LotteryType)
	}

	// One pool per lottery type.
	id := crypto.DeriveKey("prize_pool", strconv.Itoa(req.LotteryType))
	vaultID := crypto.DeriveKey("prize_vault", id)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	vault := &entity.Vault{Base: entity.Base{ID: vaultID}, OwnerID: id}
	if err := d.vaultRepo.Create(ctx, vault); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create prize vault: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The prize pool already exists")
	}

	pool := &entity.PrizePool{
		Base:        entity.Base{ID: id},
		Authority:   cfg.Lottery.Authority,
		LotteryType: req.LotteryType,
		VaultID:     vaultID,
	}

	if err := d.prizeRepo.CreatePool(ctx, pool); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create prize pool: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The prize pool already exists")
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.OpenPrizePoolResponse{ID: id}, nil
}

func (d *prizeDomain) GetPool(
	ctx context.Context, req *model.GetPrizePoolRequest,
) (*model.GetPrizePoolResponse, error) {
	pool, err := d.prizeRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found prize pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get prize pool: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetPrizePoolResponse{Pool: model.ConvertPrizePool(pool)}, nil
}

func (d *prizeDomain) Deposit(
	ctx context.Context, req *model.DepositPrizeRequest,
) (*model.DepositPrizeResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	pool, err := d.prizeRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found prize pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get prize pool: %v", err)
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

	if err := d.prizeRepo.AddDeposit(ctx, pool.ID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ArithmeticOverflow, "Arithmetic overflow")
		}

		xcontext.Logger(ctx).Errorf("Cannot record deposit: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.DepositPrizeResponse{}, nil
}

// SetDrawCompleted publishes the oracle result to the pool. Every call with
// completed=true advances the round, including repeated calls; callers own
// the idempotency of their submissions.
func (d *prizeDomain) SetDrawCompleted(
	ctx context.Context, req *model.SetDrawCompletedRequest,
) (*model.SetDrawCompletedResponse, error) {
	pool, err := d.prizeRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found prize pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get prize pool: %v", err)
		return nil, errorx.Unknown
	}

	if err := common.VerifyAuthority(ctx, pool.Authority); err != nil {
		return nil, err
	}

	if err := d.prizeRepo.SetDrawCompleted(ctx, pool.ID, req.Completed); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set draw completed: %v", err)
		return nil, errorx.Unknown
	}

	round := pool.CurrentRound
	if req.Completed {
		round++
	}

	return &model.SetDrawCompletedResponse{CurrentRound: round}, nil
}

func (d *prizeDomain) Claim(
	ctx context.Context, req *model.ClaimPrizeRequest,
) (*model.ClaimPrizeResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if req.Tier < 1 || req.Tier > 5 {
		return nil, errorx.New(errorx.BadRequest, "Invalid tier %d", req.Tier)
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	pool, err := d.prizeRepo.GetPool(ctx, req.PoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found prize pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get prize pool: %v", err)
		return nil, errorx.Unknown
	}

	if !pool.DrawCompleted {
		return nil, errorx.New(errorx.Unavailable, "The draw has not completed yet")
	}

	claimID := crypto.DeriveKey(
		"prize_claim", userID, pool.ID, strconv.FormatUint(req.Round, 10))

	if _, err := d.prizeRepo.GetClaim(ctx, claimID); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "The prize was already claimed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check prize claim: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx).Unix()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.prizeRepo.CheckAndClaim(ctx, pool.ID, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "Insufficient pool funds")
		}

		xcontext.Logger(ctx).Errorf("Cannot book prize claim: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.vaultRepo.Transfer(ctx, pool.VaultID, WalletVaultID(userID), req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "Insufficient pool funds")
		}

		xcontext.Logger(ctx).Errorf("Cannot transfer prize: %v", err)
		return nil, errorx.Unknown
	}

	claim := &entity.PrizeClaim{
		Base:      entity.Base{ID: claimID},
		ClaimerID: userID,
		PoolID:    pool.ID,
		Round:     req.Round,
		Tier:      req.Tier,
		Amount:    req.Amount,
		Verified:  true,
		ClaimedAt: now,
	}

	if err := d.prizeRepo.CreateClaim(ctx, claim); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create prize claim: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The prize was already claimed")
	}

	ev := model.PrizeClaimedEvent{
		ClaimerID:   userID,
		LotteryType: pool.LotteryType,
		Round:       req.Round,
		Tier:        req.Tier,
		Amount:      req.Amount,
		Timestamp:   now,
	}

	if err := recordEvent(ctx, d.eventRepo, model.PrizeClaimedTopic, userID, structs.Map(ev)); err != nil {
		return nil, err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)
	publishEvent(ctx, d.publisher, model.PrizeClaimedTopic, userID, ev)

	return &model.ClaimPrizeResponse{ClaimID: claimID, Amount: req.Amount}, nil
}

func (d *prizeDomain) GetTierTable(
	ctx context.Context, req *model.GetPrizeTierTableRequest,
) (*model.GetPrizeTierTableResponse, error) {
	return &model.GetPrizeTierTableResponse{Tiers: PrizeTierTable(req.LotteryType)}, nil
}

func (d *prizeDomain) GetClaims(
	ctx context.Context, req *model.GetPrizeClaimsRequest,
) (*model.GetPrizeClaimsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	claims, err := d.prizeRepo.GetClaimsByClaimer(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get prize claims: %v", err)
		return nil, errorx.Unknown
	}

	clientClaims := []model.PrizeClaim{}
	for i := range claims {
		clientClaims = append(clientClaims, model.ConvertPrizeClaim(&claims[i]))
	}

	return &model.GetPrizeClaimsResponse{Claims: clientClaims}, nil
}

