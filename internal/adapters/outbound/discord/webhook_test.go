package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
	"github.com/charleschow/bf-trading/internal/events"
)

type captured struct {
	mu       sync.Mutex
	payloads []webhookPayload
}

func (c *captured) all() []webhookPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]webhookPayload(nil), c.payloads...)
}

func newWebhook(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		c.mu.Lock()
		c.payloads = append(c.payloads, p)
		c.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func outcome() events.OrderOutcome {
	return events.OrderOutcome{
		Request: betfair_http.PlaceOrdersRequest{
			MarketID: "1.23",
			Instructions: []betfair_http.PlaceInstruction{{
				SelectionID: 47972,
				Side:        betfair_http.SideBack,
				LimitOrder:  &betfair_http.LimitOrder{Price: 2.5, Size: 5},
			}},
		},
		Report: &betfair_http.PlaceExecutionReport{
			Status:             betfair_http.StatusSuccess,
			InstructionReports: []betfair_http.PlaceInstructionReport{{BetID: "31242604945"}},
		},
	}
}

func TestAttach_PostsOutcomeEmbeds(t *testing.T) {
	srv, got := newWebhook(t, http.StatusNoContent)
	bus := events.NewBus()
	NewNotifier(srv.URL).Attach(bus)

	bus.Publish(events.New(events.EventOrderPlaced, "1.23", outcome()))
	failed := outcome()
	failed.Report = nil
	failed.Err = errors.New("connection reset")
	bus.Publish(events.New(events.EventOrderFailed, "1.23", failed))

	payloads := got.all()
	if len(payloads) != 2 {
		t.Fatalf("expected 2 webhook posts, got %d", len(payloads))
	}
	placed := payloads[0].Embeds[0]
	if placed.Title != "Order Placed" || placed.Color != ColorGreen || placed.Timestamp == "" {
		t.Fatalf("unexpected placed embed: %+v", placed)
	}
	fields := map[string]string{}
	for _, f := range placed.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Selection"] != "47972" || fields["Price"] != "2.5" || fields["Stake"] != "5.00" || fields["Bet ID"] != "31242604945" {
		t.Fatalf("unexpected fields: %v", fields)
	}

	rejected := payloads[1].Embeds[0]
	if rejected.Title != "Order Rejected" || rejected.Color != ColorRed || rejected.Description != "connection reset" {
		t.Fatalf("unexpected rejected embed: %+v", rejected)
	}
}

func TestNotifier_DisabledIsNoop(t *testing.T) {
	n := NewNotifier("")
	if n.Enabled() {
		t.Fatal("notifier without URL should be disabled")
	}
	if err := n.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("disabled send should not fail: %v", err)
	}
}

func TestNotifier_StatusErrors(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusTooManyRequests)
	if err := NewNotifier(srv.URL).SendText(context.Background(), "hi"); err == nil {
		t.Fatal("expected rate limit error")
	}
}
