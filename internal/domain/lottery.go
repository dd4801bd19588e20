package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/solotto-lab/backend/internal/common"
	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/crypto"
	"github.com/solotto-lab/backend/pkg/enum"
	"github.com/solotto-lab/backend/pkg/errorx"
	"github.com/solotto-lab/backend/pkg/numberutil"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Ticket price split in percent. The three shares are computed with
// truncating division, so up to 2 base units per sale stay with the buyer.
const (
	prizeSharePercent     = 40
	treasurySharePercent  = 30
	affiliateSharePercent = 30
)

type LotteryDomain interface {
	Open(context.Context, *model.OpenLotteryRequest) (*model.OpenLotteryResponse, error)
	Get(context.Context, *model.GetLotteryRequest) (*model.GetLotteryResponse, error)
	PurchaseTicket(context.Context, *model.PurchaseTicketRequest) (*model.PurchaseTicketResponse, error)
	ExecuteDraw(context.Context, *model.ExecuteDrawRequest) (*model.ExecuteDrawResponse, error)
	Close(context.Context, *model.CloseLotteryRequest) (*model.CloseLotteryResponse, error)
	GetUserTickets(context.Context, *model.GetUserTicketsRequest) (*model.GetUserTicketsResponse, error)
	GetWinners(context.Context, *model.GetLotteryWinnersRequest) (*model.GetLotteryWinnersResponse, error)
}

type lotteryDomain struct {
	lotteryRepo repository.LotteryRepository
	ticketRepo  repository.TicketRepository
	vaultRepo   repository.VaultRepository
}

func NewLotteryDomain(
	lotteryRepo repository.LotteryRepository,
	ticketRepo repository.TicketRepository,
	vaultRepo repository.VaultRepository,
) *lotteryDomain {
	return &lotteryDomain{
		lotteryRepo: lotteryRepo,
		ticketRepo:  ticketRepo,
		vaultRepo:   vaultRepo,
	}
}

// lotteryID derives the record key from the lottery identity, so opening the
// same tri-daily round (or the same jackpot month) twice collides instead of
// creating a second record.
func lotteryID(kind entity.LotteryKindTag, round uint64, month, year int) (string, error) {
	switch kind {
	case entity.LotteryTriDaily:
		return crypto.DeriveKey("tri_daily", strconv.FormatUint(round, 10)), nil
	case entity.LotteryJackpot:
		return crypto.DeriveKey("jackpot", strconv.Itoa(month), strconv.Itoa(year)), nil
	case entity.LotteryGrandPrize:
		return crypto.DeriveKey("grand_prize", strconv.Itoa(year)), nil
	case entity.LotteryXmas:
		return crypto.DeriveKey("xmas", strconv.Itoa(year)), nil
	}

	return "", errors.New("unknown lottery kind")
}

func WalletVaultID(userID string) string {
	return crypto.DeriveKey("wallet", userID)
}

func (d *lotteryDomain) Open(
	ctx context.Context, req *model.OpenLotteryRequest,
) (*model.OpenLotteryResponse, error) {
	cfg := xcontext.Configs(ctx)
	if err := common.VerifyAuthority(ctx, cfg.Lottery.Authority); err != nil {
		return nil, err
	}

	kind, err := enum.ToEnum[entity.LotteryKindTag](req.Kind)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid lottery kind: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid lottery kind %s", req.Kind)
	}

	if req.TicketPrice == 0 {
		return nil, errorx.New(errorx.BadRequest, "Ticket price must be a positive number")
	}

	if req.MaxTickets == 0 {
		return nil, errorx.New(errorx.BadRequest, "Max tickets must be a positive number")
	}

	now := xcontext.Now(ctx).Unix()
	if req.DrawTimestamp <= now {
		return nil, errorx.New(errorx.BadRequest, "Draw timestamp must be in the future")
	}

	id, err := lotteryID(kind, req.Round, req.Month, req.Year)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid lottery kind %s", req.Kind)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	vaultID := crypto.DeriveKey("lottery_vault", id)
	vault := &entity.Vault{Base: entity.Base{ID: vaultID}, OwnerID: id}
	if err := d.vaultRepo.Create(ctx, vault); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create lottery vault: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The lottery already exists")
	}

	lottery := &entity.Lottery{
		Base:              entity.Base{ID: id},
		Authority:         cfg.Lottery.Authority,
		Kind:              kind,
		Round:             req.Round,
		Month:             req.Month,
		Year:              req.Year,
		TicketPrice:       req.TicketPrice,
		MaxTickets:        req.MaxTickets,
		CurrentTickets:    0,
		DrawTimestamp:     req.DrawTimestamp,
		IsDrawn:           false,
		WinningTickets:    entity.Array[uint32]{},
		VaultID:           vaultID,
		TreasuryVaultID:   cfg.Lottery.TreasuryVault,
		AffiliatesVaultID: cfg.Lottery.AffiliatesVault,
		PrizePool:         0,
	}

	if err := d.lotteryRepo.Create(ctx, lottery); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create lottery: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "The lottery already exists")
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.OpenLotteryResponse{ID: id}, nil
}

func (d *lotteryDomain) Get(
	ctx context.Context, req *model.GetLotteryRequest,
) (*model.GetLotteryResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetLotteryResponse{Lottery: model.ConvertLottery(lottery)}, nil
}

func (d *lotteryDomain) PurchaseTicket(
	ctx context.Context, req *model.PurchaseTicketRequest,
) (*model.PurchaseTicketResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if len(req.AffiliateCode) > entity.MaxAffiliateCodeLen {
		return nil, errorx.New(errorx.BadRequest,
			"Affiliate code must be at most %d bytes", entity.MaxAffiliateCodeLen)
	}

	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx).Unix()
	if lottery.IsDrawn || lottery.IsExpired(now) {
		return nil, errorx.New(errorx.Unavailable, "The lottery has expired")
	}

	if lottery.CurrentTickets >= lottery.MaxTickets {
		return nil, errorx.New(errorx.Unavailable, "The lottery is sold out")
	}

	prizeShare, err := splitShare(lottery.TicketPrice, prizeSharePercent)
	if err != nil {
		return nil, err
	}

	treasuryShare, err := splitShare(lottery.TicketPrice, treasurySharePercent)
	if err != nil {
		return nil, err
	}

	affiliateShare, err := splitShare(lottery.TicketPrice, affiliateSharePercent)
	if err != nil {
		return nil, err
	}

	ticketNumber, err := numberutil.CheckedAddUint32(lottery.CurrentTickets, 1)
	if err != nil {
		return nil, errorx.New(errorx.ArithmeticOverflow, "Arithmetic overflow")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	// Takes the slot and books the prize share, with the purchase
	// preconditions re-checked inside the statement.
	if err := d.lotteryRepo.CheckAndSellTicket(ctx, lottery.ID, now, prizeShare); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "The lottery is not open for purchase")
		}

		xcontext.Logger(ctx).Errorf("Cannot sell ticket: %v", err)
		return nil, errorx.Unknown
	}

	buyerVaultID := WalletVaultID(userID)
	transfers := []struct {
		to     string
		amount uint64
	}{
		{lottery.VaultID, prizeShare},
		{lottery.TreasuryVaultID, treasuryShare},
		{lottery.AffiliatesVaultID, affiliateShare},
	}

	for _, t := range transfers {
		if err := d.vaultRepo.Transfer(ctx, buyerVaultID, t.to, t.amount); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.Unavailable, "Insufficient balance")
			}

			xcontext.Logger(ctx).Errorf("Cannot transfer ticket funds: %v", err)
			return nil, errorx.Unknown
		}
	}

	ticket := &entity.Ticket{
		Base: entity.Base{
			ID: crypto.DeriveKey("ticket", lottery.ID, strconv.FormatUint(uint64(ticketNumber), 10)),
		},
		LotteryID:     lottery.ID,
		OwnerID:       userID,
		Number:        ticketNumber,
		PurchasedAt:   now,
		AffiliateCode: req.AffiliateCode,
	}

	if err := d.ticketRepo.Create(ctx, ticket); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ticket: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.appendUserTicket(ctx, userID, lottery.ID, ticketNumber); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.PurchaseTicketResponse{
		TicketID:     ticket.ID,
		TicketNumber: ticketNumber,
	}, nil
}

func (d *lotteryDomain) appendUserTicket(
	ctx context.Context, userID, lotteryID string, number uint32,
) error {
	userTickets, err := d.ticketRepo.GetUserTickets(ctx, userID, lotteryID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user tickets: %v", err)
			return errorx.Unknown
		}

		record := &entity.UserTickets{
			Base:          entity.Base{ID: crypto.DeriveKey("user_tickets", userID, lotteryID)},
			UserID:        userID,
			LotteryID:     lotteryID,
			TicketNumbers: entity.Array[uint32]{number},
			Count:         1,
		}

		if err := d.ticketRepo.CreateUserTickets(ctx, record); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create user tickets: %v", err)
			return errorx.Unknown
		}

		return nil
	}

	if len(userTickets.TicketNumbers) >= entity.MaxUserTicketNumbers {
		return errorx.New(errorx.Unavailable, "Too many tickets for this lottery")
	}

	numbers := append(userTickets.TicketNumbers, number)
	if err := d.ticketRepo.AppendUserTicket(ctx, userTickets.ID, numbers); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.Unavailable, "Too many tickets for this lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot append user ticket: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *lotteryDomain) ExecuteDraw(
	ctx context.Context, req *model.ExecuteDrawRequest,
) (*model.ExecuteDrawResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errorx.Unknown
	}

	if err := common.VerifyAuthority(ctx, lottery.Authority); err != nil {
		return nil, err
	}

	if lottery.IsDrawn {
		return nil, errorx.New(errorx.Unavailable, "The lottery was already drawn")
	}

	now := xcontext.Now(ctx).Unix()
	if !lottery.CanDraw(now) {
		return nil, errorx.New(errorx.Unavailable, "The lottery has not expired yet")
	}

	if len(req.WinningTickets) > entity.MaxWinningTickets {
		return nil, errorx.New(errorx.BadRequest,
			"The number of winning tickets must be at most %d", entity.MaxWinningTickets)
	}

	for _, number := range req.WinningTickets {
		if number == 0 || number > lottery.CurrentTickets {
			return nil, errorx.New(errorx.BadRequest, "Invalid winning ticket %d", number)
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.lotteryRepo.SetDrawn(ctx, lottery.ID, req.WinningTickets); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "The lottery was already drawn")
		}

		xcontext.Logger(ctx).Errorf("Cannot set lottery drawn: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.ticketRepo.MarkWinners(ctx, lottery.ID, req.WinningTickets); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark winning tickets: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.ExecuteDrawResponse{WinningTickets: req.WinningTickets}, nil
}

func (d *lotteryDomain) Close(
	ctx context.Context, req *model.CloseLotteryRequest,
) (*model.CloseLotteryResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errorx.Unknown
	}

	if err := common.VerifyAuthority(ctx, lottery.Authority); err != nil {
		return nil, err
	}

	if !lottery.IsDrawn {
		return nil, errorx.New(errorx.Unavailable, "The lottery has not been drawn yet")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	// Remaining custody funds go back to the authority when the record is
	// reclaimed.
	vault, err := d.vaultRepo.GetByID(ctx, lottery.VaultID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get lottery vault: %v", err)
		return nil, errorx.Unknown
	}

	if vault.Balance > 0 {
		err := d.vaultRepo.Transfer(ctx, vault.ID, WalletVaultID(lottery.Authority), vault.Balance)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot refund lottery vault: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := d.lotteryRepo.Delete(ctx, lottery.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "The lottery has not been drawn yet")
		}

		xcontext.Logger(ctx).Errorf("Cannot close lottery: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.CloseLotteryResponse{}, nil
}

func (d *lotteryDomain) GetUserTickets(
	ctx context.Context, req *model.GetUserTicketsRequest,
) (*model.GetUserTicketsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	userTickets, err := d.ticketRepo.GetUserTickets(ctx, userID, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found any tickets")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user tickets: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetUserTicketsResponse{
		TicketNumbers: userTickets.TicketNumbers,
		Count:         userTickets.Count,
	}, nil
}

func (d *lotteryDomain) GetWinners(
	ctx context.Context, req *model.GetLotteryWinnersRequest,
) (*model.GetLotteryWinnersResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errorx.Unknown
	}

	if !lottery.IsDrawn {
		return nil, errorx.New(errorx.Unavailable, "The lottery has not been drawn yet")
	}

	tickets, err := d.ticketRepo.GetByLotteryID(ctx, lottery.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get lottery tickets: %v", err)
		return nil, errorx.Unknown
	}

	winners := []model.WinningTicket{}
	for _, ticket := range tickets {
		if !ticket.IsWinner {
			continue
		}

		winners = append(winners, model.WinningTicket{
			Number:  ticket.Number,
			OwnerID: ticket.OwnerID,
		})
	}

	return &model.GetLotteryWinnersResponse{Winners: winners}, nil
}

func splitShare(price uint64, percent uint64) (uint64, error) {
	product, err := numberutil.CheckedMul(price, percent)
	if err != nil {
		return 0, errorx.New(errorx.ArithmeticOverflow, "Arithmetic overflow")
	}

	share, err := numberutil.CheckedDiv(product, 100)
	if err != nil {
		return 0, errorx.New(errorx.ArithmeticOverflow, "Arithmetic overflow")
	}

	return share, nil
}
