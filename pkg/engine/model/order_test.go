package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyFill(t *testing.T) {
	o := &Order{
		Quantity:       decimal.NewFromInt(10),
		LeavesQuantity: decimal.NewFromInt(10),
		Status:         OrderStatusNew,
	}

	o.ApplyFill(decimal.NewFromInt(100), decimal.NewFromInt(4))
	assert.Equal(t, OrderStatusPartiallyFilled, o.Status)
	assert.Equal(t, ExecTypeTrade, o.ExecType)
	assert.True(t, o.CumQuantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, o.LeavesQuantity.Equal(decimal.NewFromInt(6)))

	o.ApplyFill(decimal.NewFromInt(101), decimal.NewFromInt(6))
	assert.Equal(t, OrderStatusFilled, o.Status)
	assert.True(t, o.LeavesQuantity.IsZero())
	assert.True(t, o.LastPrice.Equal(decimal.NewFromInt(101)))
	assert.True(t, o.LastQuantity.Equal(decimal.NewFromInt(6)))
}

func TestCanCancel(t *testing.T) {
	cancellable := []OrderStatus{OrderStatusPendingNew, OrderStatusNew, OrderStatusPartiallyFilled}
	for _, st := range cancellable {
		assert.True(t, (&Order{Status: st}).CanCancel(), "status %s", st)
	}

	terminal := []OrderStatus{OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected}
	for _, st := range terminal {
		assert.False(t, (&Order{Status: st}).CanCancel(), "status %s", st)
	}
}
