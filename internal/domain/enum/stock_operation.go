package enum

import "fmt"

// StockOperation is the direction of a stock adjustment
type StockOperation string

const (
	StockOperationAdd      StockOperation = "add"
	StockOperationSubtract StockOperation = "subtract"
)

// ParseStockOperation converts a raw value into a StockOperation.
// An empty value means subtract.
func ParseStockOperation(s string) (StockOperation, error) {
	switch StockOperation(s) {
	case "":
		return StockOperationSubtract, nil
	case StockOperationAdd, StockOperationSubtract:
		return StockOperation(s), nil
	}
	return "", fmt.Errorf("invalid stock operation %q", s)
}
