package engine

import "errors"

var (
	errRiskRejected       = errors.New("order rejected by risk rule")
	errInvalidOrderStatus = errors.New("invalid order status")
)
