package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
	"github.com/charleschow/bf-trading/internal/config"
	"github.com/charleschow/bf-trading/internal/core/catalogue"
	"github.com/charleschow/bf-trading/internal/core/orderbook"
	"github.com/charleschow/bf-trading/internal/process"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	kind := flag.String("kind", "competitions", "competitions | events | markets | book")
	sport := flag.String("sport", catalogue.SportSoccer, "event type id")
	days := flag.Int("days", cfg.CatalogueDays, "look-ahead window in days")
	eventIDs := flag.String("events", "", "comma-separated event ids (markets)")
	limit := flag.Int("limit", cfg.CatalogueLimit, "max markets to list")
	marketID := flag.String("market", "", "market id (book)")
	query := flag.String("q", "", "keep rows whose name contains this (accent and case-insensitive)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := process.Boot(ctx, cfg, process.Options{})
	if err != nil {
		telemetry.Errorf("Startup: %v", err)
		os.Exit(1)
	}
	defer rt.Close()

	if err := run(ctx, rt, *kind, *sport, *days, splitIDs(*eventIDs), *limit, *marketID, *query); err != nil {
		telemetry.Errorf("%s: %v", *kind, err)
		rt.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, rt *process.Runtime, kind, sport string, days int, eventIDs []string, limit int, marketID, query string) error {
	svc := catalogue.NewService(rt.Client)

	switch kind {
	case "competitions":
		rows, err := svc.Competitions(ctx, rt.Session, sport, days)
		if err != nil {
			return err
		}
		return catalogue.WriteCompetitions(os.Stdout, catalogue.FilterByName(rows, query))

	case "events":
		rows, err := svc.Events(ctx, rt.Session, sport, days)
		if err != nil {
			return err
		}
		return catalogue.WriteEvents(os.Stdout, catalogue.FilterByName(rows, query))

	case "markets":
		if len(eventIDs) == 0 {
			return fmt.Errorf("-events is required")
		}
		rows, err := svc.Markets(ctx, rt.Session, eventIDs, limit)
		if err != nil {
			return err
		}
		return catalogue.WriteMarkets(os.Stdout, catalogue.FilterByName(rows, query))

	case "book":
		if marketID == "" {
			return fmt.Errorf("-market is required")
		}
		books, err := rt.Client.ListMarketBook(ctx, rt.Session, []string{marketID}, betfair_http.BestOffers())
		if err != nil {
			return err
		}
		for _, b := range books {
			table, err := orderbook.Normalize(b.Runners)
			if err != nil {
				return fmt.Errorf("market %s: %w", b.MarketID, err)
			}
			fmt.Printf("%s  status=%s  delayed=%t\n", b.MarketID, b.Status, b.IsMarketDataDelayed)
			if err := orderbook.WriteTable(os.Stdout, table); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown -kind %q", kind)
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
