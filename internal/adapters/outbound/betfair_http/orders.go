package betfair_http

import (
	"context"
	"time"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

const (
	SideBack = "BACK"
	SideLay  = "LAY"

	OrderTypeLimit = "LIMIT"

	// PersistenceLapse cancels the unmatched part when the market is suspended.
	PersistenceLapse = "LAPSE"
)

// Execution report statuses.
const (
	StatusSuccess             = "SUCCESS"
	StatusFailure             = "FAILURE"
	StatusProcessedWithErrors = "PROCESSED_WITH_ERRORS"
	StatusTimeout             = "TIMEOUT"
)

type LimitOrder struct {
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	PersistenceType string  `json:"persistenceType"`
}

type PlaceInstruction struct {
	OrderType   string      `json:"orderType"`
	SelectionID int64       `json:"selectionId"`
	Handicap    float64     `json:"handicap"`
	Side        string      `json:"side"`
	LimitOrder  *LimitOrder `json:"limitOrder,omitempty"`
}

// PlaceOrdersRequest is the payload for placeOrders.
type PlaceOrdersRequest struct {
	MarketID            string             `json:"marketId"`
	Instructions        []PlaceInstruction `json:"instructions"`
	CustomerRef         string             `json:"customerRef,omitempty"`
	CustomerStrategyRef string             `json:"customerStrategyRef,omitempty"`
}

type PlaceInstructionReport struct {
	Status              string           `json:"status"`
	ErrorCode           string           `json:"errorCode,omitempty"`
	OrderStatus         string           `json:"orderStatus,omitempty"`
	Instruction         PlaceInstruction `json:"instruction"`
	BetID               string           `json:"betId,omitempty"`
	PlacedDate          *time.Time       `json:"placedDate,omitempty"`
	AveragePriceMatched float64          `json:"averagePriceMatched,omitempty"`
	SizeMatched         float64          `json:"sizeMatched,omitempty"`
}

// PlaceExecutionReport is the exchange's raw confirmation of a placeOrders call.
type PlaceExecutionReport struct {
	CustomerRef        string                   `json:"customerRef,omitempty"`
	Status             string                   `json:"status"`
	ErrorCode          string                   `json:"errorCode,omitempty"`
	MarketID           string                   `json:"marketId"`
	InstructionReports []PlaceInstructionReport `json:"instructionReports"`
}

func (c *Client) PlaceOrders(ctx context.Context, sess betfair_auth.Session, req PlaceOrdersRequest) (*PlaceExecutionReport, error) {
	var report PlaceExecutionReport
	if err := c.call(ctx, sess, "placeOrders", true, req, &report); err != nil {
		telemetry.Metrics.OrderErrors.Inc()
		return nil, err
	}

	if report.Status == StatusSuccess {
		telemetry.Metrics.OrdersSent.Inc()
	} else {
		telemetry.Metrics.OrderErrors.Inc()
	}
	telemetry.Infof("betfair: placeOrders market=%s instructions=%d -> %s %s",
		req.MarketID, len(req.Instructions), report.Status, report.ErrorCode)

	return &report, nil
}
