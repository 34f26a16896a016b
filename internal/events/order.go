package events

import (
	"time"

	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
)

// OrderOutcome is the payload of EventOrderPlaced / EventOrderFailed.
// Report is nil when the exchange never answered.
type OrderOutcome struct {
	Request    betfair_http.PlaceOrdersRequest
	Report     *betfair_http.PlaceExecutionReport
	Err        error
	ObservedAt time.Time // when the book price was read
}

// Instruction returns the single instruction of the request, if any.
func (o OrderOutcome) Instruction() (betfair_http.PlaceInstruction, bool) {
	if len(o.Request.Instructions) == 0 {
		return betfair_http.PlaceInstruction{}, false
	}
	return o.Request.Instructions[0], true
}
