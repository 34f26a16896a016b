package betfair_http

import (
	"context"
	"fmt"
	"time"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/core/orderbook"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

// --- Raw wire types ---
// Pointer fields distinguish "absent" from zero so malformed books are
// rejected here instead of surfacing as zero prices downstream.

type rawPriceSize struct {
	Price *float64 `json:"price"`
	Size  *float64 `json:"size"`
}

type rawExchangePrices struct {
	AvailableToBack []rawPriceSize `json:"availableToBack"`
	AvailableToLay  []rawPriceSize `json:"availableToLay"`
}

type rawRunner struct {
	SelectionID      *int64             `json:"selectionId"`
	Handicap         float64            `json:"handicap"`
	Status           string             `json:"status"`
	AdjustmentFactor *float64           `json:"adjustmentFactor"`
	LastPriceTraded  *float64           `json:"lastPriceTraded"`
	TotalMatched     float64            `json:"totalMatched"`
	RemovalDate      *time.Time         `json:"removalDate"`
	Ex               *rawExchangePrices `json:"ex"`
}

type rawMarketBook struct {
	MarketID            string      `json:"marketId"`
	IsMarketDataDelayed bool        `json:"isMarketDataDelayed"`
	Status              string      `json:"status"`
	TotalMatched        float64     `json:"totalMatched"`
	Runners             []rawRunner `json:"runners"`
}

type marketBookParams struct {
	MarketIDs       []string        `json:"marketIds"`
	PriceProjection PriceProjection `json:"priceProjection"`
}

// ListMarketBook fetches the books for marketIDs and maps them into typed
// orderbook.MarketBook values.
func (c *Client) ListMarketBook(ctx context.Context, sess betfair_auth.Session, marketIDs []string, projection PriceProjection) ([]orderbook.MarketBook, error) {
	var raw []rawMarketBook
	params := marketBookParams{MarketIDs: marketIDs, PriceProjection: projection}
	if err := c.call(ctx, sess, "listMarketBook", false, params, &raw); err != nil {
		return nil, err
	}

	books := make([]orderbook.MarketBook, 0, len(raw))
	for _, rb := range raw {
		book, err := rb.toMarketBook()
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", rb.MarketID, err)
		}
		books = append(books, book)
	}

	telemetry.Metrics.BooksFetched.Add(int64(len(books)))
	return books, nil
}

func (rb rawMarketBook) toMarketBook() (orderbook.MarketBook, error) {
	runners := make([]orderbook.RunnerBookEntry, 0, len(rb.Runners))
	for i, rr := range rb.Runners {
		entry, err := rr.toEntry()
		if err != nil {
			return orderbook.MarketBook{}, fmt.Errorf("runner %d: %w", i, err)
		}
		runners = append(runners, entry)
	}
	return orderbook.MarketBook{
		MarketID:            rb.MarketID,
		Status:              rb.Status,
		IsMarketDataDelayed: rb.IsMarketDataDelayed,
		TotalMatched:        rb.TotalMatched,
		Runners:             runners,
	}, nil
}

func (rr rawRunner) toEntry() (orderbook.RunnerBookEntry, error) {
	if rr.SelectionID == nil {
		return orderbook.RunnerBookEntry{}, fmt.Errorf("%w: missing selectionId", orderbook.ErrMalformedEntry)
	}

	entry := orderbook.RunnerBookEntry{
		SelectionID:      *rr.SelectionID,
		LastPriceTraded:  rr.LastPriceTraded,
		TotalMatched:     rr.TotalMatched,
		Status:           orderbook.RunnerStatus(rr.Status),
		RemovalDate:      rr.RemovalDate,
		AdjustmentFactor: rr.AdjustmentFactor,
	}
	if rr.Ex == nil {
		return entry, nil
	}

	var err error
	if entry.AvailableToBack, err = toLevels(rr.Ex.AvailableToBack); err != nil {
		return orderbook.RunnerBookEntry{}, fmt.Errorf("selection %d availableToBack: %w", entry.SelectionID, err)
	}
	if entry.AvailableToLay, err = toLevels(rr.Ex.AvailableToLay); err != nil {
		return orderbook.RunnerBookEntry{}, fmt.Errorf("selection %d availableToLay: %w", entry.SelectionID, err)
	}
	return entry, nil
}

func toLevels(raw []rawPriceSize) ([]orderbook.PriceSize, error) {
	levels := make([]orderbook.PriceSize, 0, len(raw))
	for i, r := range raw {
		if r.Price == nil {
			return nil, fmt.Errorf("%w: level %d missing price", orderbook.ErrMalformedEntry, i)
		}
		if r.Size == nil {
			return nil, fmt.Errorf("%w: level %d missing size", orderbook.ErrMalformedEntry, i)
		}
		levels = append(levels, orderbook.PriceSize{Price: *r.Price, Size: *r.Size})
	}
	return levels, nil
}
