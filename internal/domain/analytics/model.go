package analytics

import "time"

// StatusCount is one slice of the claim status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ErrorBucket aggregates claims sharing an error category.
type ErrorBucket struct {
	ErrorType  string  `json:"error_type"`
	Count      int64   `json:"count"`
	PaidAmount float64 `json:"paid_amount"`
	Percentage float64 `json:"percentage"`
}

// ChartPoint is a label/value pair shaped for front-end chart rendering.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Report is the full analytics payload for one tenant. Zero-valued slices
// are returned (not nil) when the tenant has no claims, so consumers always
// see well-formed structures.
type Report struct {
	TenantID        string        `json:"tenant_id"`
	TotalClaims     int64         `json:"total_claims"`
	TotalPaidAmount float64       `json:"total_paid_amount"`
	StatusSummary   []StatusCount `json:"status_summary"`
	ErrorSummary    []ErrorBucket `json:"error_summary"`
	ClaimsByError   []ChartPoint  `json:"claims_by_error"`
	AmountByError   []ChartPoint  `json:"amount_by_error"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// Snapshot is the persisted form of a report, written to claim_analytics on
// each generation so dashboards can read the latest aggregate without
// re-scanning the claims table.
type Snapshot struct {
	TenantID        string    `json:"tenant_id"`
	TotalClaims     int64     `json:"total_claims"`
	TotalPaidAmount float64   `json:"total_paid_amount"`
	NotValidated    int64     `json:"not_validated"`
	GeneratedAt     time.Time `json:"generated_at"`
}
