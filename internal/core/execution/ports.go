package execution

import (
	"context"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
	"github.com/charleschow/bf-trading/internal/core/orderbook"
)

// BookFetcher abstracts listMarketBook. Satisfied by *betfair_http.Client.
type BookFetcher interface {
	ListMarketBook(ctx context.Context, sess betfair_auth.Session, marketIDs []string, projection betfair_http.PriceProjection) ([]orderbook.MarketBook, error)
}

// OrderPlacer abstracts placeOrders. Satisfied by *betfair_http.Client.
type OrderPlacer interface {
	PlaceOrders(ctx context.Context, sess betfair_auth.Session, req betfair_http.PlaceOrdersRequest) (*betfair_http.PlaceExecutionReport, error)
}
