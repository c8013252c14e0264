package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// StockSortFields contains allowed sort fields for stock listings
var StockSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"on_hand":    true,
	"orderable":  true,
	"ecom_stock": true,
}

// MovementSortFields contains allowed sort fields for ledger listings
var MovementSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"movement_date": true,
	"quantity":      true,
	"status":        true,
}

// OrderSortFields contains allowed sort fields for order listings
var OrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"grand_total":     true,
	"tracking_status": true,
	"kind":            true,
}

// CreditSortFields contains allowed sort fields for credit listings
var CreditSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"term_date":    true,
	"open_balance": true,
}
