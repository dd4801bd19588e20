package domain

import (
	"context"
	"testing"
	"time"

	"github.com/solotto-lab/backend/internal/entity"
	"github.com/solotto-lab/backend/internal/model"
	"github.com/solotto-lab/backend/internal/repository"
	"github.com/solotto-lab/backend/pkg/testutil"
	"github.com/solotto-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

var testOpenTime = time.Unix(1700000000, 0)

func newLotteryTestContext(t *testing.T) context.Context {
	ctx := testutil.MockContext()
	ctx = testutil.MockContextAt(ctx, testOpenTime)

	cfg := xcontext.Configs(ctx)
	testutil.CreateVault(ctx, cfg.Lottery.TreasuryVault, "treasury", 0)
	testutil.CreateVault(ctx, cfg.Lottery.AffiliatesVault, "affiliates", 0)
	return ctx
}

func newTestLotteryDomain() *lotteryDomain {
	return NewLotteryDomain(
		repository.NewLotteryRepository(),
		repository.NewTicketRepository(),
		repository.NewVaultRepository(),
	)
}

func openTestLottery(
	t *testing.T, ctx context.Context, d *lotteryDomain, price uint64, maxTickets uint32,
) string {
	resp, err := d.Open(
		testutil.MockContextWithUserID(ctx, testutil.Authority),
		&model.OpenLotteryRequest{
			Kind:          "tri_daily",
			Round:         7,
			TicketPrice:   price,
			MaxTickets:    maxTickets,
			DrawTimestamp: testOpenTime.Unix() + 3600,
		})
	require.NoError(t, err)
	return resp.ID
}

func Test_lotteryDomain_PurchaseTicket_SplitsFunds(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 1000)
	buyerCtx := testutil.MockContextWithUserID(ctx, "buyer")

	resp, err := d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
	require.NoError(t, err)
	require.Equal(t, uint32(1), resp.TicketNumber)

	lottery, err := d.lotteryRepo.GetByID(ctx, lotteryID)
	require.NoError(t, err)
	require.Equal(t, uint32(1), lottery.CurrentTickets)
	require.Equal(t, uint64(40), lottery.PrizePool)

	cfg := xcontext.Configs(ctx)
	require.Equal(t, uint64(40), testutil.VaultBalance(ctx, lottery.VaultID))
	require.Equal(t, uint64(30), testutil.VaultBalance(ctx, cfg.Lottery.TreasuryVault))
	require.Equal(t, uint64(30), testutil.VaultBalance(ctx, cfg.Lottery.AffiliatesVault))
	require.Equal(t, uint64(900), testutil.VaultBalance(ctx, WalletVaultID("buyer")))
}

func Test_lotteryDomain_PurchaseTicket_TruncatesShares(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 101, 10)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 1000)
	buyerCtx := testutil.MockContextWithUserID(ctx, "buyer")

	_, err := d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
	require.NoError(t, err)

	// 101 * 40 / 100 = 40, the two 30% shares truncate to 30 each. Only 100
	// of the 101 price leave the buyer.
	lottery, err := d.lotteryRepo.GetByID(ctx, lotteryID)
	require.NoError(t, err)
	require.Equal(t, uint64(40), lottery.PrizePool)
	require.Equal(t, uint64(900), testutil.VaultBalance(ctx, WalletVaultID("buyer")))
}

func Test_lotteryDomain_PurchaseTicket_Numbering(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 1000)
	buyerCtx := testutil.MockContextWithUserID(ctx, "buyer")

	for i := uint32(1); i <= 3; i++ {
		resp, err := d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
		require.NoError(t, err)
		require.Equal(t, i, resp.TicketNumber)
	}

	tickets, err := d.GetUserTickets(buyerCtx, &model.GetUserTicketsRequest{LotteryID: lotteryID})
	require.NoError(t, err)
	require.Equal(t, uint32(3), tickets.Count)
	require.Equal(t, []uint32{1, 2, 3}, tickets.TicketNumbers)
}

func Test_lotteryDomain_PurchaseTicket_Failures(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 1)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 1000)
	buyerCtx := testutil.MockContextWithUserID(ctx, "buyer")

	longCode := make([]byte, entity.MaxAffiliateCodeLen+1)
	for i := range longCode {
		longCode[i] = 'a'
	}
	_, err := d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{
		LotteryID:     lotteryID,
		AffiliateCode: string(longCode),
	})
	require.Equal(t, "Affiliate code must be at most 32 bytes", err.Error())

	_, err = d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
	require.NoError(t, err)

	// The single slot is gone.
	_, err = d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
	require.Equal(t, "The lottery is sold out", err.Error())
}

func Test_lotteryDomain_PurchaseTicket_Expired(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 1000)

	// Exactly at the draw timestamp the lottery is already expired.
	lateCtx := testutil.MockContextAt(ctx, testOpenTime.Add(time.Hour))
	lateCtx = testutil.MockContextWithUserID(lateCtx, "buyer")
	_, err := d.PurchaseTicket(lateCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
	require.Equal(t, "The lottery has expired", err.Error())
}

func Test_lotteryDomain_PurchaseTicket_InsufficientBalance(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 50)
	buyerCtx := testutil.MockContextWithUserID(ctx, "buyer")

	_, err := d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
	require.Equal(t, "Insufficient balance", err.Error())

	// The failed purchase left nothing behind.
	lottery, err := d.lotteryRepo.GetByID(ctx, lotteryID)
	require.NoError(t, err)
	require.Equal(t, uint32(0), lottery.CurrentTickets)
	require.Equal(t, uint64(50), testutil.VaultBalance(ctx, WalletVaultID("buyer")))
}

func Test_lotteryDomain_ExecuteDraw(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 1000)
	buyerCtx := testutil.MockContextWithUserID(ctx, "buyer")
	for i := 0; i < 3; i++ {
		_, err := d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
		require.NoError(t, err)
	}

	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)

	// Too early.
	_, err := d.ExecuteDraw(authorityCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{1},
	})
	require.Equal(t, "The lottery has not expired yet", err.Error())

	lateCtx := testutil.MockContextAt(ctx, testOpenTime.Add(2*time.Hour))
	lateAuthorityCtx := testutil.MockContextWithUserID(lateCtx, testutil.Authority)

	// Only the authority draws.
	lateBuyerCtx := testutil.MockContextWithUserID(lateCtx, "buyer")
	_, err = d.ExecuteDraw(lateBuyerCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{1},
	})
	require.Equal(t, "Permission denied", err.Error())

	// Ticket numbers are 1-based and bounded by sold tickets.
	_, err = d.ExecuteDraw(lateAuthorityCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{0},
	})
	require.Equal(t, "Invalid winning ticket 0", err.Error())

	_, err = d.ExecuteDraw(lateAuthorityCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{4},
	})
	require.Equal(t, "Invalid winning ticket 4", err.Error())

	resp, err := d.ExecuteDraw(lateAuthorityCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{2, 3},
	})
	require.NoError(t, err)
	require.Equal(t, []uint32{2, 3}, resp.WinningTickets)

	ticket, err := d.ticketRepo.GetByNumber(ctx, lotteryID, 2)
	require.NoError(t, err)
	require.True(t, ticket.IsWinner)

	ticket, err = d.ticketRepo.GetByNumber(ctx, lotteryID, 1)
	require.NoError(t, err)
	require.False(t, ticket.IsWinner)

	// A drawn lottery cannot be drawn again.
	_, err = d.ExecuteDraw(lateAuthorityCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{1},
	})
	require.Equal(t, "The lottery was already drawn", err.Error())

	winners, err := d.GetWinners(ctx, &model.GetLotteryWinnersRequest{LotteryID: lotteryID})
	require.NoError(t, err)
	require.Equal(t, []model.WinningTicket{
		{Number: 2, OwnerID: "buyer"},
		{Number: 3, OwnerID: "buyer"},
	}, winners.Winners)
}

func Test_lotteryDomain_GetWinners_BeforeDraw(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	_, err := d.GetWinners(ctx, &model.GetLotteryWinnersRequest{LotteryID: lotteryID})
	require.Equal(t, "The lottery has not been drawn yet", err.Error())

	_, err = d.GetWinners(ctx, &model.GetLotteryWinnersRequest{LotteryID: "unknown"})
	require.Equal(t, "Not found lottery", err.Error())
}

func Test_lotteryDomain_ExecuteDraw_NoTicketsSold(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	lateCtx := testutil.MockContextAt(ctx, testOpenTime.Add(2*time.Hour))
	lateCtx = testutil.MockContextWithUserID(lateCtx, testutil.Authority)

	// With no tickets sold every winning number is invalid, but an empty
	// draw closes out the round.
	_, err := d.ExecuteDraw(lateCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{1},
	})
	require.Equal(t, "Invalid winning ticket 1", err.Error())

	resp, err := d.ExecuteDraw(lateCtx, &model.ExecuteDrawRequest{LotteryID: lotteryID})
	require.NoError(t, err)
	require.Empty(t, resp.WinningTickets)
}

func Test_lotteryDomain_Close(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	lotteryID := openTestLottery(t, ctx, d, 100, 10)

	testutil.CreateVault(ctx, WalletVaultID("buyer"), "buyer", 1000)
	testutil.CreateVault(ctx, WalletVaultID(testutil.Authority), testutil.Authority, 0)

	buyerCtx := testutil.MockContextWithUserID(ctx, "buyer")
	_, err := d.PurchaseTicket(buyerCtx, &model.PurchaseTicketRequest{LotteryID: lotteryID})
	require.NoError(t, err)

	authorityCtx := testutil.MockContextWithUserID(ctx, testutil.Authority)
	_, err = d.Close(authorityCtx, &model.CloseLotteryRequest{LotteryID: lotteryID})
	require.Equal(t, "The lottery has not been drawn yet", err.Error())

	lateCtx := testutil.MockContextAt(ctx, testOpenTime.Add(2*time.Hour))
	lateAuthorityCtx := testutil.MockContextWithUserID(lateCtx, testutil.Authority)
	_, err = d.ExecuteDraw(lateAuthorityCtx, &model.ExecuteDrawRequest{
		LotteryID:      lotteryID,
		WinningTickets: []uint32{1},
	})
	require.NoError(t, err)

	_, err = d.Close(lateAuthorityCtx, &model.CloseLotteryRequest{LotteryID: lotteryID})
	require.NoError(t, err)

	// Custody funds went back to the authority.
	require.Equal(t, uint64(40), testutil.VaultBalance(ctx, WalletVaultID(testutil.Authority)))

	_, err = d.Get(ctx, &model.GetLotteryRequest{LotteryID: lotteryID})
	require.Equal(t, "Not found lottery", err.Error())
}

func Test_lotteryDomain_Open_Duplicated(t *testing.T) {
	ctx := newLotteryTestContext(t)
	d := newTestLotteryDomain()
	openTestLottery(t, ctx, d, 100, 10)

	_, err := d.Open(
		testutil.MockContextWithUserID(ctx, testutil.Authority),
		&model.OpenLotteryRequest{
			Kind:          "tri_daily",
			Round:         7,
			TicketPrice:   200,
			MaxTickets:    5,
			DrawTimestamp: testOpenTime.Unix() + 7200,
		})
	require.Equal(t, "The lottery already exists", err.Error())
}
