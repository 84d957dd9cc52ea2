package entities

import "github.com/shopspring/decimal"

// AccountStats aggregates accounts by state
type AccountStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	Admins    int64 `json:"admins"`
}

// AdminStats is the dashboard projection
type AdminStats struct {
	Accounts             AccountStats            `json:"accounts"`
	Tontines             map[TontineStatus]int64 `json:"tontines"`
	Payments             map[PaymentStatus]int64 `json:"payments"`
	Revenue              decimal.Decimal         `json:"revenue"`
	PendingVerifications int64                   `json:"pendingVerifications"`
}
