package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
	"github.com/charleschow/bf-trading/internal/core/orderbook"
	"github.com/charleschow/bf-trading/internal/events"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

var _ BookFetcher = (*betfair_http.Client)(nil)
var _ OrderPlacer = (*betfair_http.Client)(nil)

var (
	ErrInvalidStake        = errors.New("stake must be positive")
	ErrUnexpectedBookCount = errors.New("unexpected market book count")
	ErrSelectionNotFound   = errors.New("selection not in market book")
	ErrSubmissionFailed    = errors.New("order submission failed")
)

// Service places single best-price back orders. It holds no per-call
// state, so independent calls may run concurrently.
//
// The price is read from the book and submitted in two separate calls; the
// market can move in between and no slippage bound is applied.
type Service struct {
	books       BookFetcher
	orders      OrderPlacer
	bus         *events.Bus
	strategyRef string
	newRef      func() string
}

// NewService wires the book fetcher and order placer. bus may be nil.
func NewService(books BookFetcher, orders OrderPlacer, bus *events.Bus, strategyRef string) *Service {
	return &Service{
		books:       books,
		orders:      orders,
		bus:         bus,
		strategyRef: strategyRef,
		newRef:      newCustomerRef,
	}
}

// newCustomerRef returns a 32-char ref, the longest placeOrders accepts.
func newCustomerRef() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// PlaceBestPriceBackOrder backs selectionID in marketID for stake at the
// best back price currently offered. The exchange report is returned as
// received; a report whose status is not SUCCESS comes back together with
// an ErrSubmissionFailed error.
func (s *Service) PlaceBestPriceBackOrder(ctx context.Context, stake float64, marketID string, selectionID int64, sess betfair_auth.Session) (*betfair_http.PlaceExecutionReport, error) {
	if !(stake > 0) || math.IsInf(stake, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStake, stake)
	}

	books, err := s.books.ListMarketBook(ctx, sess, []string{marketID}, betfair_http.BestOffers())
	if err != nil {
		return nil, fmt.Errorf("list market book %s: %w", marketID, err)
	}
	if len(books) != 1 {
		return nil, fmt.Errorf("%w: requested market %s, got %d books", ErrUnexpectedBookCount, marketID, len(books))
	}
	book := books[0]
	if book.IsMarketDataDelayed {
		telemetry.Warnf("execution: market %s data is delayed, best price may be stale", marketID)
	}

	table, err := orderbook.Normalize(book.Runners)
	if err != nil {
		return nil, fmt.Errorf("normalize market %s: %w", marketID, err)
	}

	row, ok := table.Lookup(selectionID)
	if !ok {
		return nil, fmt.Errorf("%w: selection %d, market %s (%d runners)", ErrSelectionNotFound, selectionID, marketID, table.Len())
	}
	observedAt := time.Now()

	req := BuildBackOrder(marketID, selectionID, row.BestBackPrice, stake)
	req.CustomerRef = s.newRef()
	req.CustomerStrategyRef = s.strategyRef

	telemetry.Infof("execution: placing order market=%s selection=%d side=%s price=%v size=%v ref=%s",
		marketID, selectionID, betfair_http.SideBack, row.BestBackPrice, stake, req.CustomerRef)

	report, err := s.orders.PlaceOrders(ctx, sess, req)
	telemetry.Metrics.OrderE2ELatency.Record(time.Since(observedAt))
	if err != nil {
		err = fmt.Errorf("%w: market %s selection %d: %w", ErrSubmissionFailed, marketID, selectionID, err)
		telemetry.Errorf("execution: %v", err)
		s.publish(events.EventOrderFailed, req, nil, err, observedAt)
		return nil, err
	}

	telemetry.Infof("execution: report %s", rawReport(report))

	if report.Status != betfair_http.StatusSuccess {
		err := fmt.Errorf("%w: status=%s%s", ErrSubmissionFailed, report.Status, reportErrors(report))
		s.publish(events.EventOrderFailed, req, report, err, observedAt)
		return report, err
	}

	s.publish(events.EventOrderPlaced, req, report, nil, observedAt)
	return report, nil
}

// BuildBackOrder constructs a single LIMIT BACK instruction that lapses on
// market suspension.
func BuildBackOrder(marketID string, selectionID int64, price, stake float64) betfair_http.PlaceOrdersRequest {
	return betfair_http.PlaceOrdersRequest{
		MarketID: marketID,
		Instructions: []betfair_http.PlaceInstruction{{
			OrderType:   betfair_http.OrderTypeLimit,
			SelectionID: selectionID,
			Side:        betfair_http.SideBack,
			LimitOrder: &betfair_http.LimitOrder{
				Size:            stake,
				Price:           price,
				PersistenceType: betfair_http.PersistenceLapse,
			},
		}},
	}
}

func (s *Service) publish(typ events.EventType, req betfair_http.PlaceOrdersRequest, report *betfair_http.PlaceExecutionReport, err error, observedAt time.Time) {
	s.bus.Publish(events.New(typ, req.MarketID, events.OrderOutcome{
		Request:    req,
		Report:     report,
		Err:        err,
		ObservedAt: observedAt,
	}))
}

func rawReport(report *betfair_http.PlaceExecutionReport) string {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Sprintf("%+v", *report)
	}
	return string(data)
}

func reportErrors(report *betfair_http.PlaceExecutionReport) string {
	var b strings.Builder
	if report.ErrorCode != "" {
		fmt.Fprintf(&b, " error=%s", report.ErrorCode)
	}
	for i, ir := range report.InstructionReports {
		if ir.ErrorCode != "" {
			fmt.Fprintf(&b, " instruction[%d]=%s", i, ir.ErrorCode)
		}
	}
	return b.String()
}
