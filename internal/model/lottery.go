package model

type Lottery struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	Round          uint64   `json:"round,omitempty"`
	Month          int      `json:"month,omitempty"`
	Year           int      `json:"year,omitempty"`
	TicketPrice    uint64   `json:"ticket_price"`
	MaxTickets     uint32   `json:"max_tickets"`
	CurrentTickets uint32   `json:"current_tickets"`
	DrawTimestamp  int64    `json:"draw_timestamp"`
	IsDrawn        bool     `json:"is_drawn"`
	WinningTickets []uint32 `json:"winning_tickets"`
	PrizePool      uint64   `json:"prize_pool"`
}

type OpenLotteryRequest struct {
	Kind          string `json:"kind"`
	Round         uint64 `json:"round"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	TicketPrice   uint64 `json:"ticket_price"`
	MaxTickets    uint32 `json:"max_tickets"`
	DrawTimestamp int64  `json:"draw_timestamp"`
}

type OpenLotteryResponse struct {
	ID string `json:"id"`
}

type PurchaseTicketRequest struct {
	LotteryID     string `json:"lottery_id"`
	AffiliateCode string `json:"affiliate_code"`
}

type PurchaseTicketResponse struct {
	TicketID     string `json:"ticket_id"`
	TicketNumber uint32 `json:"ticket_number"`
}

type ExecuteDrawRequest struct {
	LotteryID      string   `json:"lottery_id"`
	WinningTickets []uint32 `json:"winning_tickets"`
}

type ExecuteDrawResponse struct {
	WinningTickets []uint32 `json:"winning_tickets"`
}

type CloseLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type CloseLotteryResponse struct{}

type GetLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type GetLotteryResponse struct {
	Lottery Lottery `json:"lottery"`
}

type GetUserTicketsRequest struct {
	LotteryID string `json:"lottery_id"`
}

type GetUserTicketsResponse struct {
	TicketNumbers []uint32 `json:"ticket_numbers"`
	Count         uint32   `json:"count"`
}

type GetLotteryWinnersRequest struct {
	LotteryID string `json:"lottery_id"`
}

type WinningTicket struct {
	Number  uint32 `json:"number"`
	OwnerID string `json:"owner_id"`
}

type GetLotteryWinnersResponse struct {
	Winners []WinningTicket `json:"winners"`
}
