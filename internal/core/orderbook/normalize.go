package orderbook

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedEntry is returned when a runner book does not have the shape
// the exchange contract promises (missing selection id, price or size).
var ErrMalformedEntry = errors.New("malformed runner book entry")

// Normalize converts runner books into a Table holding best back/lay price
// and size per runner. Empty ladders fall back to MinPrice / MaxPrice for
// price and FallbackSize for size. Rows keep input order.
func Normalize(entries []RunnerBookEntry) (Table, error) {
	t := Table{
		Rows:  make([]NormalizedRunnerRow, 0, len(entries)),
		index: make(map[int64]int, len(entries)),
	}

	for i, e := range entries {
		if err := validate(e); err != nil {
			return Table{}, fmt.Errorf("runner %d: %w", i, err)
		}
		if _, dup := t.index[e.SelectionID]; dup {
			return Table{}, fmt.Errorf("runner %d: %w: duplicate selection_id %d", i, ErrMalformedEntry, e.SelectionID)
		}

		backPrice, backSize := MinPrice, FallbackSize
		if len(e.AvailableToBack) > 0 {
			backPrice, backSize = e.AvailableToBack[0].Price, e.AvailableToBack[0].Size
		}
		layPrice, laySize := MaxPrice, FallbackSize
		if len(e.AvailableToLay) > 0 {
			layPrice, laySize = e.AvailableToLay[0].Price, e.AvailableToLay[0].Size
		}

		t.index[e.SelectionID] = len(t.Rows)
		t.Rows = append(t.Rows, NormalizedRunnerRow{
			SelectionID:      e.SelectionID,
			BestBackPrice:    backPrice,
			BestBackSize:     backSize,
			BestLayPrice:     layPrice,
			BestLaySize:      laySize,
			LastPriceTraded:  e.LastPriceTraded,
			TotalMatched:     e.TotalMatched,
			Status:           e.Status,
			RemovalDate:      e.RemovalDate,
			AdjustmentFactor: e.AdjustmentFactor,
		})
	}

	return t, nil
}

func validate(e RunnerBookEntry) error {
	if e.SelectionID <= 0 {
		return fmt.Errorf("%w: missing selection_id", ErrMalformedEntry)
	}
	if err := validateLadder(e.AvailableToBack); err != nil {
		return fmt.Errorf("selection %d available_to_back: %w", e.SelectionID, err)
	}
	if err := validateLadder(e.AvailableToLay); err != nil {
		return fmt.Errorf("selection %d available_to_lay: %w", e.SelectionID, err)
	}
	return nil
}

func validateLadder(levels []PriceSize) error {
	for i, l := range levels {
		if !present(l.Price) {
			return fmt.Errorf("%w: level %d missing price", ErrMalformedEntry, i)
		}
		if !present(l.Size) {
			return fmt.Errorf("%w: level %d missing size", ErrMalformedEntry, i)
		}
	}
	return nil
}

// present reports whether v looks like a value the exchange actually sent.
// Ladder levels always carry a positive price and size.
func present(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
