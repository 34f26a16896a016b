package betfair_http

import (
	"context"
	"strconv"
	"time"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
)

type Competition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CompetitionResult struct {
	Competition       Competition `json:"competition"`
	MarketCount       int         `json:"marketCount"`
	CompetitionRegion string      `json:"competitionRegion"`
}

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CountryCode string    `json:"countryCode"`
	Timezone    string    `json:"timezone"`
	Venue       string    `json:"venue"`
	OpenDate    time.Time `json:"openDate"`
}

type EventResult struct {
	Event       Event `json:"event"`
	MarketCount int   `json:"marketCount"`
}

type MarketCatalogue struct {
	MarketID     string  `json:"marketId"`
	MarketName   string  `json:"marketName"`
	TotalMatched float64 `json:"totalMatched"`
}

type filterParams struct {
	Filter MarketFilter `json:"filter"`
}

type catalogueParams struct {
	Filter     MarketFilter `json:"filter"`
	MaxResults string       `json:"maxResults"`
	Sort       string       `json:"sort,omitempty"`
}

func (c *Client) ListCompetitions(ctx context.Context, sess betfair_auth.Session, filter MarketFilter) ([]CompetitionResult, error) {
	var out []CompetitionResult
	if err := c.call(ctx, sess, "listCompetitions", false, filterParams{Filter: filter}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListEvents(ctx context.Context, sess betfair_auth.Session, filter MarketFilter) ([]EventResult, error) {
	var out []EventResult
	if err := c.call(ctx, sess, "listEvents", false, filterParams{Filter: filter}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMarketCatalogue(ctx context.Context, sess betfair_auth.Session, filter MarketFilter, maxResults int, sort string) ([]MarketCatalogue, error) {
	params := catalogueParams{
		Filter:     filter,
		MaxResults: strconv.Itoa(maxResults),
		Sort:       sort,
	}
	var out []MarketCatalogue
	if err := c.call(ctx, sess, "listMarketCatalogue", false, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
