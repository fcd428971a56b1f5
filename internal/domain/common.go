package domain

// TradeSide represents the direction of a trade. Only long positions are
// supported by the simulator.
type TradeSide string

const (
	SideLong TradeSide = "long"
)

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// CloseReason indicates which rule closed a trade.
type CloseReason string

const (
	CloseReasonTakeProfit   CloseReason = "TP"
	CloseReasonStopLoss     CloseReason = "SL"
	CloseReasonTrailingStop CloseReason = "TRAILING_SL"
	CloseReasonEndOfData    CloseReason = "END_OF_DATA" // Forced close on the final bar
)
