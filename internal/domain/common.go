package domain

// PositionStatus represents the status of a simulated position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// CloseReason indicates why a position was closed during replay.
type CloseReason string

const (
	CloseReasonStopLoss       CloseReason = "SL"
	CloseReasonTrailingStop   CloseReason = "TRAILING_SL"
	CloseReasonROI            CloseReason = "ROI"
	CloseReasonOppositeSignal CloseReason = "OPPOSITE_SIGNAL"
	CloseReasonEndOfData      CloseReason = "END_OF_DATA"
)
