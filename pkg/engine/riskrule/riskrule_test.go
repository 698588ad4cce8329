package riskrule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func orderAt(symbol, price string) *model.Order {
	return &model.Order{Symbol: symbol, Type: model.OrderTypeLimit, Price: dec(price)}
}

func marketOrder(symbol string) *model.Order {
	return &model.Order{Symbol: symbol, Type: model.OrderTypeMarket}
}

func TestTickSizeRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.json")
	cfg := `{
		"BTCUSD": [
			{"maxPrice": "100", "step": "0.01"},
			{"maxPrice": "0", "step": "0.05"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	rule, err := NewTickSizeRuleFromFile(path)
	require.NoError(t, err)

	// Below 100 the step is 0.01.
	assert.NoError(t, rule.Check(orderAt("BTCUSD", "99.99")))
	assert.Error(t, rule.Check(orderAt("BTCUSD", "99.995")))

	// Above 100 the unbounded band applies with step 0.05.
	assert.NoError(t, rule.Check(orderAt("BTCUSD", "101.05")))
	assert.Error(t, rule.Check(orderAt("BTCUSD", "101.02")))

	// Unconfigured symbols are unrestricted.
	assert.NoError(t, rule.Check(orderAt("ETHUSD", "0.001")))

	// Market orders have no limit price to grid-check.
	assert.NoError(t, rule.Check(marketOrder("BTCUSD")))
}

func TestTickSizeRuleBadFile(t *testing.T) {
	_, err := NewTickSizeRuleFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = NewTickSizeRuleFromFile(path)
	assert.Error(t, err)
}

func TestPriceBandRule(t *testing.T) {
	rule := NewPriceBandRule(map[string]PriceBand{
		"BTCUSD": {Floor: dec("90"), Ceil: dec("110")},
	})

	assert.NoError(t, rule.Check(orderAt("BTCUSD", "90")))
	assert.NoError(t, rule.Check(orderAt("BTCUSD", "110")))
	assert.Error(t, rule.Check(orderAt("BTCUSD", "89.99")))
	assert.Error(t, rule.Check(orderAt("BTCUSD", "110.01")))

	assert.NoError(t, rule.Check(orderAt("ETHUSD", "5000")))

	// A market order's zero price sits below any floor; it must not
	// be band-checked.
	assert.NoError(t, rule.Check(marketOrder("BTCUSD")))
}
