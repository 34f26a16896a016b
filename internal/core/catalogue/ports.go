package catalogue

import (
	"context"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
)

// Lister abstracts the read-only catalogue operations. Satisfied by *betfair_http.Client.
type Lister interface {
	ListCompetitions(ctx context.Context, sess betfair_auth.Session, filter betfair_http.MarketFilter) ([]betfair_http.CompetitionResult, error)
	ListEvents(ctx context.Context, sess betfair_auth.Session, filter betfair_http.MarketFilter) ([]betfair_http.EventResult, error)
	ListMarketCatalogue(ctx context.Context, sess betfair_auth.Session, filter betfair_http.MarketFilter, maxResults int, sort string) ([]betfair_http.MarketCatalogue, error)
}

var _ Lister = (*betfair_http.Client)(nil)
