// Package riskrule holds pre-trade checks run before an order ever
// reaches the book. A failed check rejects the order; the book is not
// touched.
package riskrule

import "github.com/joripage/matching-engine/pkg/engine/model"

type RiskRule interface {
	Check(order *model.Order) error
}
