package entity

import (
	"database/sql"

	"github.com/solotto-lab/backend/pkg/enum"
)

type LotteryKindTag string

var (
	LotteryTriDaily   = enum.New(LotteryKindTag("tri_daily"))
	LotteryJackpot    = enum.New(LotteryKindTag("jackpot"))
	LotteryGrandPrize = enum.New(LotteryKindTag("grand_prize"))
	LotteryXmas       = enum.New(LotteryKindTag("xmas"))
)

// PoolType is the numeric lottery-type discriminant used by prize pools. The
// grand prize value selects the 50/30/20 tier table.
func (t LotteryKindTag) PoolType() int {
	switch t {
	case LotteryTriDaily:
		return 1
	case LotteryJackpot:
		return 2
	case LotteryGrandPrize:
		return 3
	case LotteryXmas:
		return 4
	}

	return 0
}

// Capacity bounds of the variable-length record fields. Exceeding them is a
// clean failure, never silent truncation.
const (
	MaxWinningTickets    = 100
	MaxUserTicketNumbers = 1000
	MaxAffiliateCodeLen  = 32
)

// Lottery is one recurring drawing. Its identity (and record key) is derived
// from the kind plus payload, so opening the same lottery twice collides on
// the primary key.
type Lottery struct {
	Base

	Authority string

	Kind  LotteryKindTag
	Round uint64 // tri-daily only
	Month int    // jackpot only
	Year  int    // jackpot, grand prize, xmas

	TicketPrice    uint64
	MaxTickets     uint32
	CurrentTickets uint32
	DrawTimestamp  int64
	IsDrawn        bool
	WinningTickets Array[uint32]

	// VaultID is the lottery's own custody balance receiving the prize share
	// of every sale. PrizePool mirrors its accumulated total.
	VaultID           string
	TreasuryVaultID   string
	AffiliatesVaultID string
	PrizePool         uint64
}

func (l *Lottery) IsExpired(ts int64) bool {
	return ts >= l.DrawTimestamp
}

func (l *Lottery) CanPurchase(ts int64) bool {
	return !l.IsDrawn && l.CurrentTickets < l.MaxTickets && !l.IsExpired(ts)
}

func (l *Lottery) CanDraw(ts int64) bool {
	return !l.IsDrawn && l.IsExpired(ts)
}

type Ticket struct {
	Base

	LotteryID string  `gorm:"uniqueIndex:idx_tickets_lottery_number"`
	Lottery   Lottery `gorm:"foreignKey:LotteryID"`

	OwnerID string

	// Number is 1-based and strictly increasing per lottery.
	Number uint32 `gorm:"uniqueIndex:idx_tickets_lottery_number"`

	PurchasedAt   int64
	AffiliateCode string `gorm:"size:32"`
	IsWinner      bool
	Tier          sql.NullInt32
	Claimed       bool
}

// UserTickets indexes the ticket numbers one user owns in one lottery. It is
// append-only and capacity-bounded by MaxUserTicketNumbers.
type UserTickets struct {
	Base

	UserID string

	LotteryID string  `gorm:"index"`
	Lottery   Lottery `gorm:"foreignKey:LotteryID"`

	TicketNumbers Array[uint32]
	Count         uint32
}
