package cart

import "fmt"

// Validate checks a cart snapshot before checkout. An empty cart is valid;
// the first failing rule decides the result.
func Validate(items []Item) Result {
	if len(items) == 0 {
		return Result{Valid: true}
	}

	supplier := items[0].SupplierID
	for _, it := range items[1:] {
		if it.SupplierID != supplier {
			return Result{Error: msgMixedSuppliers}
		}
	}

	for _, it := range items {
		if it.Quantity < it.MinOrderQuantity {
			return Result{Error: fmt.Sprintf("Minimum order quantity for %s is %d", it.Name, it.MinOrderQuantity)}
		}
	}

	return Result{Valid: true}
}
