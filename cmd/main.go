package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/bf-trading/internal/config"
	"github.com/charleschow/bf-trading/internal/core/execution"
	"github.com/charleschow/bf-trading/internal/process"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	planPath := flag.String("plan", cfg.OrderPlanPath, "order plan YAML (stake, market_id, selection_id)")
	stake := flag.Float64("stake", 0, "stake to back; overrides the plan")
	marketID := flag.String("market", "", "market id; overrides the plan")
	selectionID := flag.Int64("selection", 0, "selection id; overrides the plan")
	flag.Parse()

	plan, err := loadPlan(*planPath, *stake, *marketID, *selectionID)
	if err != nil {
		telemetry.Errorf("Order plan: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := process.Boot(ctx, cfg, process.Options{Audit: true, Alerts: true})
	if err != nil {
		telemetry.Errorf("Startup: %v", err)
		os.Exit(1)
	}

	svc := execution.NewService(rt.Client, rt.Client, rt.Bus, cfg.StrategyRef)
	report, err := svc.PlaceBestPriceBackOrder(ctx, plan.Stake, plan.MarketID, plan.SelectionID, rt.Session)
	rt.Close()

	if err != nil {
		if report != nil {
			telemetry.Errorf("Order rejected by exchange: %v", err)
		} else {
			telemetry.Errorf("Order failed: %v", err)
		}
		os.Exit(1)
	}

	if len(report.InstructionReports) > 0 {
		ir := report.InstructionReports[0]
		telemetry.Infof("Order placed  bet=%s  status=%s  matched=%.2f @ %v",
			ir.BetID, ir.OrderStatus, ir.SizeMatched, ir.AveragePriceMatched)
	}
}

// loadPlan reads the plan file and applies flag overrides. A missing plan
// file is fine when every field comes from flags.
func loadPlan(path string, stake float64, marketID string, selectionID int64) (config.OrderPlan, error) {
	plan, err := config.LoadOrderPlan(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return config.OrderPlan{}, err
		}
		plan = config.OrderPlan{}
	}

	if stake != 0 {
		plan.Stake = stake
	}
	if marketID != "" {
		plan.MarketID = marketID
	}
	if selectionID != 0 {
		plan.SelectionID = selectionID
	}
	return plan, plan.Validate()
}
