package betfair_http

import "time"

// PriceData values for PriceProjection.
const (
	PriceDataBestOffers = "EX_BEST_OFFERS"
	PriceDataAllOffers  = "EX_ALL_OFFERS"
	PriceDataTraded     = "EX_TRADED"
)

// MarketSort values for listMarketCatalogue.
const (
	SortMaximumTraded = "MAXIMUM_TRADED"
	SortFirstToStart  = "FIRST_TO_START"
)

// StartTimeLayout is the timestamp format the API accepts in filters.
const StartTimeLayout = "2006-01-02T15:04:05Z"

type MarketFilter struct {
	EventTypeIDs    []string   `json:"eventTypeIds,omitempty"`
	EventIDs        []string   `json:"eventIds,omitempty"`
	CompetitionIDs  []string   `json:"competitionIds,omitempty"`
	MarketIDs       []string   `json:"marketIds,omitempty"`
	MarketStartTime *TimeRange `json:"marketStartTime,omitempty"`
}

type TimeRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Until returns a TimeRange ending at t (UTC, second precision).
func Until(t time.Time) *TimeRange {
	return &TimeRange{To: t.UTC().Format(StartTimeLayout)}
}

type PriceProjection struct {
	PriceData []string `json:"priceData,omitempty"`
}

// BestOffers requests only the top of each ladder.
func BestOffers() PriceProjection {
	return PriceProjection{PriceData: []string{PriceDataBestOffers}}
}
