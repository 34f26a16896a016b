package orderbook

import "time"

// Exchange price bounds. Used as "no liquidity" fallbacks so a normalized
// row never carries an empty price.
const (
	MinPrice = 1.01
	MaxPrice = 1000.0

	// FallbackSize is reported as the best size on an empty ladder side.
	// It equals MinPrice rather than zero; downstream consumers rely on it.
	FallbackSize = 1.01
)

// RunnerStatus is the exchange-reported state of a runner.
type RunnerStatus string

const (
	RunnerActive        RunnerStatus = "ACTIVE"
	RunnerWinner        RunnerStatus = "WINNER"
	RunnerLoser         RunnerStatus = "LOSER"
	RunnerPlaced        RunnerStatus = "PLACED"
	RunnerRemovedVacant RunnerStatus = "REMOVED_VACANT"
	RunnerRemoved       RunnerStatus = "REMOVED"
	RunnerHidden        RunnerStatus = "HIDDEN"
)

// PriceSize is one ladder level.
type PriceSize struct {
	Price float64
	Size  float64
}

// RunnerBookEntry is the order-book snapshot for one selection in a market.
// Ladders are ordered best price first.
type RunnerBookEntry struct {
	SelectionID      int64
	AvailableToBack  []PriceSize
	AvailableToLay   []PriceSize
	LastPriceTraded  *float64
	TotalMatched     float64
	Status           RunnerStatus
	RemovalDate      *time.Time // set only for scratched runners
	AdjustmentFactor *float64
}

// MarketBook is a single market's book as returned by listMarketBook.
type MarketBook struct {
	MarketID            string
	Status              string
	IsMarketDataDelayed bool
	TotalMatched        float64
	Runners             []RunnerBookEntry
}

// NormalizedRunnerRow flattens a RunnerBookEntry to the top of each ladder.
type NormalizedRunnerRow struct {
	SelectionID      int64
	BestBackPrice    float64
	BestBackSize     float64
	BestLayPrice     float64
	BestLaySize      float64
	LastPriceTraded  *float64
	TotalMatched     float64
	Status           RunnerStatus
	RemovalDate      *time.Time
	AdjustmentFactor *float64
}

// Table is the normalized view of a market, one row per runner in input order.
type Table struct {
	Rows  []NormalizedRunnerRow
	index map[int64]int
}

// Lookup returns the row for selectionID.
func (t Table) Lookup(selectionID int64) (NormalizedRunnerRow, bool) {
	i, ok := t.index[selectionID]
	if !ok {
		return NormalizedRunnerRow{}, false
	}
	return t.Rows[i], true
}

func (t Table) Len() int { return len(t.Rows) }
