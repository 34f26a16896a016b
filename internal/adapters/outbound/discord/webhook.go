package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charleschow/bf-trading/internal/events"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

func (n *Notifier) SendText(ctx context.Context, msg string) error {
	return n.send(ctx, webhookPayload{Content: msg})
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}

// --- Order outcome alerts ---

const (
	ColorGreen = 0x2ECC71
	ColorRed   = 0xE74C3C
)

const alertTimeout = 5 * time.Second

// Attach posts an embed for every order outcome on the bus.
// Does nothing when no webhook is configured.
func (n *Notifier) Attach(bus *events.Bus) {
	if !n.Enabled() {
		return
	}
	handler := func(e events.Event) error {
		out, ok := e.Payload.(events.OrderOutcome)
		if !ok {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		return n.OrderOutcome(ctx, e.Type, out)
	}
	bus.Subscribe(events.EventOrderPlaced, handler)
	bus.Subscribe(events.EventOrderFailed, handler)
}

// OrderOutcome posts a green embed for a placed order and a red one otherwise.
func (n *Notifier) OrderOutcome(ctx context.Context, typ events.EventType, out events.OrderOutcome) error {
	embed := Embed{Title: "Order Placed", Color: ColorGreen}
	if typ != events.EventOrderPlaced {
		embed.Title, embed.Color = "Order Rejected", ColorRed
	}

	embed.Fields = append(embed.Fields, Field{Name: "Market", Value: out.Request.MarketID, Inline: true})
	if in, ok := out.Instruction(); ok {
		embed.Fields = append(embed.Fields,
			Field{Name: "Selection", Value: fmt.Sprint(in.SelectionID), Inline: true},
			Field{Name: "Side", Value: in.Side, Inline: true},
		)
		if lo := in.LimitOrder; lo != nil {
			embed.Fields = append(embed.Fields,
				Field{Name: "Price", Value: fmt.Sprint(lo.Price), Inline: true},
				Field{Name: "Stake", Value: fmt.Sprintf("%.2f", lo.Size), Inline: true},
			)
		}
	}

	if rep := out.Report; rep != nil {
		embed.Fields = append(embed.Fields, Field{Name: "Status", Value: rep.Status, Inline: true})
		if len(rep.InstructionReports) > 0 && rep.InstructionReports[0].BetID != "" {
			embed.Fields = append(embed.Fields, Field{Name: "Bet ID", Value: rep.InstructionReports[0].BetID})
		}
	}
	if out.Err != nil {
		embed.Description = out.Err.Error()
	}
	return n.SendEmbed(ctx, embed)
}
