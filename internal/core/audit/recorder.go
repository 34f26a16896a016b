package audit

import (
	"encoding/json"
	"fmt"

	"github.com/charleschow/bf-trading/internal/events"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

// Recorder writes one Placement per order outcome published on the bus.
type Recorder struct {
	store *Store
}

func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Attach subscribes the recorder to order outcome events.
func (r *Recorder) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventOrderPlaced, r.handle)
	bus.Subscribe(events.EventOrderFailed, r.handle)
}

func (r *Recorder) handle(e events.Event) error {
	out, ok := e.Payload.(events.OrderOutcome)
	if !ok {
		return fmt.Errorf("audit: unexpected payload %T for %s", e.Payload, e.Type)
	}

	p := placementFrom(e, out)
	id, err := r.store.Insert(p)
	if err != nil {
		return err
	}
	telemetry.Metrics.AuditWrites.Inc()
	telemetry.Debugf("audit: placement #%d recorded (%s market=%s selection=%d)", id, e.Type, p.MarketID, p.SelectionID)
	return nil
}

func placementFrom(e events.Event, out events.OrderOutcome) *Placement {
	p := &Placement{
		PlacedAt:    e.Timestamp,
		EventType:   string(e.Type),
		MarketID:    out.Request.MarketID,
		CustomerRef: out.Request.CustomerRef,
		StrategyRef: out.Request.CustomerStrategyRef,
	}
	if in, ok := out.Instruction(); ok {
		p.SelectionID = in.SelectionID
		p.Side = in.Side
		if in.LimitOrder != nil {
			p.Price = in.LimitOrder.Price
			p.Size = in.LimitOrder.Size
			p.Persistence = in.LimitOrder.PersistenceType
		}
	}
	if out.Err != nil {
		p.Error = out.Err.Error()
	}

	if rep := out.Report; rep != nil {
		p.ReportStatus = rep.Status
		p.ErrorCode = rep.ErrorCode
		if raw, err := json.Marshal(rep); err == nil {
			p.RawReport = string(raw)
		}
		if len(rep.InstructionReports) > 0 {
			ir := rep.InstructionReports[0]
			p.BetID = ir.BetID
			p.SizeMatched = ir.SizeMatched
			p.AvgPrice = ir.AveragePriceMatched
			if p.ErrorCode == "" {
				p.ErrorCode = ir.ErrorCode
			}
		}
	}
	return p
}
