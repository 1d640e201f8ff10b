package model

// Portfolio is the simulated trading account held by the service.
type Portfolio struct {
	UserID      string             `json:"user_id"`
	CashBalance float64            `json:"cash_balance"`
	Holdings    map[string]float64 `json:"holdings"`
	TotalValue  float64            `json:"total_value"`
	CreatedAt   Time               `json:"created_at"`
	UpdatedAt   Time               `json:"updated_at"`
}

// CreatePortfolioRequest creates or resets a portfolio.
type CreatePortfolioRequest struct {
	UserID         string  `json:"user_id"`
	InitialCapital float64 `json:"initial_capital"`
}

// Trade actions accepted by the service.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// TradeRequest is a market order against the simulated portfolio.
type TradeRequest struct {
	UserID   string `json:"user_id"`
	Symbol   string `json:"symbol"`
	Action   string `json:"action"`
	Quantity int    `json:"quantity"`
}

// TradeResult reports the portfolio after a trade.
type TradeResult struct {
	Success        bool               `json:"success"`
	NewCashBalance float64            `json:"new_cash_balance"`
	NewHoldings    map[string]float64 `json:"new_holdings"`
	TotalValue     float64            `json:"total_value"`
}

// PortfolioPerformance summarises returns since the portfolio was opened.
type PortfolioPerformance struct {
	InitialCapital     float64 `json:"initial_capital"`
	CurrentValue       float64 `json:"current_value"`
	TotalReturnPercent float64 `json:"total_return_percent"`
	TotalReturnDollar  float64 `json:"total_return_dollar"`
	CashBalance        float64 `json:"cash_balance"`
	NumberOfHoldings   int     `json:"number_of_holdings"`
	NumberOfTrades     int     `json:"number_of_trades"`
}
