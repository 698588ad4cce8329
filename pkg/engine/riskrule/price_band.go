package riskrule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type PriceBand struct {
	Floor decimal.Decimal
	Ceil  decimal.Decimal
}

// PriceBandRule rejects limit prices outside the per-symbol band.
// Symbols without a band are unrestricted.
type PriceBandRule struct {
	Bands map[string]PriceBand
}

func NewPriceBandRule(bands map[string]PriceBand) *PriceBandRule {
	return &PriceBandRule{Bands: bands}
}

func (r *PriceBandRule) Check(order *model.Order) error {
	if order.Type != model.OrderTypeLimit {
		// Market orders carry no limit price to band-check.
		return nil
	}
	band, ok := r.Bands[order.Symbol]
	if !ok {
		return nil
	}
	if order.Price.LessThan(band.Floor) || order.Price.GreaterThan(band.Ceil) {
		return fmt.Errorf("price %s outside band [%s, %s]", order.Price, band.Floor, band.Ceil)
	}
	return nil
}
