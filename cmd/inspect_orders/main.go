package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/bf-trading/internal/config"
	"github.com/charleschow/bf-trading/internal/core/audit"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	n := flag.Int("n", 10, "max results to return")
	market := flag.String("market", "", "filter by market id")
	pretty := flag.Bool("pretty", false, "pretty-print the raw exchange report")
	dbPath := flag.String("db", cfg.AuditDBPath, "path to the order audit store")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "audit store %s: %v\n", *dbPath, err)
		os.Exit(1)
	}

	store, err := audit.OpenStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	rows, err := store.Recent(*n, *market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		os.Exit(1)
	}

	for _, p := range rows {
		fmt.Printf("--- #%d %s %s (%s) ---\n", p.ID, p.EventType, p.PlacedAt.Format("2006-01-02 15:04:05"), humanize.Time(p.PlacedAt))
		fmt.Printf("market=%s selection=%d %s %s @ %v  persistence=%s  ref=%s strategy=%s\n",
			p.MarketID, p.SelectionID, p.Side, humanize.CommafWithDigits(p.Size, 2), p.Price,
			p.Persistence, p.CustomerRef, p.StrategyRef)
		if p.ReportStatus != "" {
			fmt.Printf("status=%s bet=%s matched=%s @ %v", p.ReportStatus, p.BetID, humanize.CommafWithDigits(p.SizeMatched, 2), p.AvgPrice)
			if p.ErrorCode != "" {
				fmt.Printf(" error_code=%s", p.ErrorCode)
			}
			fmt.Println()
		}
		if p.Error != "" {
			fmt.Printf("error: %s\n", p.Error)
		}
		if p.RawReport != "" {
			raw := p.RawReport
			if *pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, []byte(raw), "", "  "); err == nil {
					raw = buf.String()
				}
			}
			fmt.Println(raw)
		}
		fmt.Println()
	}

	if len(rows) == 0 {
		fmt.Println("(no placements recorded)")
	} else {
		fmt.Printf("(%d results)\n", len(rows))
	}
}
