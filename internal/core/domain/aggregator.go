package domain

import "github.com/shopspring/decimal"

// The functions below never touch the caller's Items backing array; each
// returns an Order with a freshly allocated item slice and a recomputed total.

func AddOrUpdateItem(order Order, newItem OrderItem) Order {
	items := make([]OrderItem, 0, len(order.Items)+1)
	merged := false
	for _, it := range order.Items {
		if !merged && it.ItemID == newItem.ItemID {
			// the price recorded at first add stays authoritative
			it.Quantity += newItem.Quantity
			it.Total = lineTotal(it.Quantity, it.Price)
			merged = true
		}
		items = append(items, it)
	}
	if !merged {
		newItem.Total = lineTotal(newItem.Quantity, newItem.Price)
		items = append(items, newItem)
	}
	return withItems(order, items)
}

func RemoveItem(order Order, itemID string) Order {
	if _, ok := order.FindItem(itemID); !ok {
		return order
	}
	items := make([]OrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		if it.ItemID != itemID {
			items = append(items, it)
		}
	}
	return withItems(order, items)
}

// UpdateItemQuantity rejects quantities below one by returning the order
// unchanged. Lines are removed only through RemoveItem.
func UpdateItemQuantity(order Order, itemID string, quantity int) Order {
	if quantity < 1 {
		return order
	}
	if _, ok := order.FindItem(itemID); !ok {
		return order
	}
	items := make([]OrderItem, len(order.Items))
	for i, it := range order.Items {
		if it.ItemID == itemID {
			it.Quantity = quantity
			it.Total = lineTotal(quantity, it.Price)
		}
		items[i] = it
	}
	return withItems(order, items)
}

func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total)
	}
	return total
}

func withItems(order Order, items []OrderItem) Order {
	order.Items = items
	order.Total = OrderTotal(items)
	return order
}

func lineTotal(quantity int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
