package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// OrderPlan is a single back order to place, usually read from YAML:
//
//	stake: 5
//	market_id: "1.207303789"
//	selection_id: 47972
type OrderPlan struct {
	Stake       float64 `yaml:"stake"`
	MarketID    string  `yaml:"market_id"`
	SelectionID int64   `yaml:"selection_id"`
}

func LoadOrderPlan(path string) (OrderPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return OrderPlan{}, fmt.Errorf("read order plan: %w", err)
	}

	var plan OrderPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return OrderPlan{}, fmt.Errorf("parse order plan: %w", err)
	}

	return plan, nil
}

// Validate reports every missing or out-of-range field.
func (p OrderPlan) Validate() error {
	var errs []error
	if !(p.Stake > 0) || math.IsInf(p.Stake, 0) {
		errs = append(errs, fmt.Errorf("stake must be positive, got %v", p.Stake))
	}
	if p.MarketID == "" {
		errs = append(errs, errors.New("market_id is required"))
	}
	if p.SelectionID <= 0 {
		errs = append(errs, fmt.Errorf("selection_id must be positive, got %d", p.SelectionID))
	}
	return errors.Join(errs...)
}
