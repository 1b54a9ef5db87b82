package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// SubmitOrder freezes a draft. Notes are replaced only when a value is given.
func SubmitOrder(order Order, notes *string) (Order, error) {
	if order.Status != OrderStatusDraft {
		return order, fmt.Errorf("submit order %s from %s: %w", order.ID, order.Status, ErrInvalidTransition)
	}
	order.Status = OrderStatusSubmitted
	if notes != nil {
		n := *notes
		order.Notes = &n
	}
	return order, nil
}

// UpdateStatus returns a copy of orders with the matching order's status
// replaced. Every other field and order is left as is.
func UpdateStatus(orders []Order, orderID string, status OrderStatus) []Order {
	out := make([]Order, len(orders))
	copy(out, orders)
	for i := range out {
		if out[i].ID == orderID {
			out[i].Status = status
			break
		}
	}
	return out
}
