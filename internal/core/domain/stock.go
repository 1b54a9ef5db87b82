package domain

type StockStatus string

const (
	StockStatusNormal   StockStatus = "normal"
	StockStatusLow      StockStatus = "low"
	StockStatusCritical StockStatus = "critical"
)

// EvaluateStatus is the only source of an item's stock status.
// A negative minStock behaves like zero: it can never produce low.
func EvaluateStatus(inStock, minStock int) StockStatus {
	if inStock <= 0 {
		return StockStatusCritical
	}
	if inStock < minStock {
		return StockStatusLow
	}
	return StockStatusNormal
}
