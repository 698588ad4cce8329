package riskrule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type tickSizeBand struct {
	MaxPrice decimal.Decimal `json:"maxPrice"` // zero = no upper bound
	Step     decimal.Decimal `json:"step"`
}

// TickSizeRule rejects limit prices off the symbol's tick grid.
// Bands are checked in order; the first band whose MaxPrice covers
// the order price decides the step.
type TickSizeRule struct {
	Config map[string][]tickSizeBand
}

func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg map[string][]tickSizeBand
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &TickSizeRule{Config: cfg}, nil
}

func (r *TickSizeRule) Check(order *model.Order) error {
	if order.Type != model.OrderTypeLimit {
		// Market orders carry no limit price to grid-check.
		return nil
	}
	bands, ok := r.Config[order.Symbol]
	if !ok { // no config, no rule
		return nil
	}

	for _, band := range bands {
		if band.MaxPrice.IsZero() || order.Price.LessThanOrEqual(band.MaxPrice) {
			if !order.Price.Mod(band.Step).IsZero() {
				return fmt.Errorf("price %s off tick step %s", order.Price, band.Step)
			}
			return nil
		}
	}

	return nil
}
