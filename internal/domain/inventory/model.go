package inventory

import "time"

// Item is a stocked inventory entry. Quantity is the only field mutated
// after creation, always through the inventory agent.
type Item struct {
	ID           string
	Name         string
	Quantity     int
	UnitPrice    float64
	Supplier     string
	Category     string
	MinimumStock int
	Metadata     map[string]string
	UpdatedAt    time.Time
}

// LowStock reports whether the item is at or below its minimum stock level.
// Items without a configured minimum never alert.
func (i Item) LowStock() bool {
	return i.MinimumStock > 0 && i.Quantity <= i.MinimumStock
}

// Shortage is the number of units below the minimum stock level.
func (i Item) Shortage() int {
	if !i.LowStock() {
		return 0
	}
	return i.MinimumStock - i.Quantity
}

// CategorySummary aggregates items within one category.
type CategorySummary struct {
	Count         int     `json:"count"`
	TotalValue    float64 `json:"total_value"`
	TotalQuantity int     `json:"total_quantity"`
}

// Report summarizes the full inventory.
type Report struct {
	TotalItems    int                        `json:"total_items"`
	TotalValue    float64                    `json:"total_value"`
	LowStockCount int                        `json:"low_stock_alerts"`
	Categories    map[string]CategorySummary `json:"category_breakdown"`
	LowStockItems []Item                     `json:"low_stock_items"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}
