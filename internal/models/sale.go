package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical key format for record dates.
const DateLayout = time.DateOnly

type SalesRecord struct {
	Branch   string          `json:"sucursal"`
	Product  string          `json:"producto"`
	Date     time.Time       `json:"fecha"`
	Pending  decimal.Decimal `json:"importe_pendiente"`
	Total    decimal.Decimal `json:"importe_total"`
	Quantity decimal.Decimal `json:"cantidad_surtida"`
}

// DateKey returns the record date in DateLayout.
func (r SalesRecord) DateKey() string {
	return r.Date.Format(DateLayout)
}

// Table is the loaded sheet. Records must not be modified after load.
type Table struct {
	Records  []SalesRecord `json:"records"`
	Source   string        `json:"source"`
	Sheet    string        `json:"sheet"`
	LoadedAt time.Time     `json:"loaded_at"`
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Options lists the distinct values of each filter dimension in first-seen order.
type Options struct {
	Branches []string `json:"sucursal"`
	Products []string `json:"producto"`
	Dates    []string `json:"fecha"`
}

// Selection holds the values a user allows per dimension. A nil slice means the
// dimension was not chosen and resolves to every observed value; an empty
// non-nil slice allows nothing.
type Selection struct {
	Branches []string `json:"sucursal"`
	Products []string `json:"producto"`
	Dates    []string `json:"fecha"`
}

type KPIs struct {
	TotalPending  int64 `json:"total_pending"`
	TotalAmount   int64 `json:"total_amount"`
	TotalQuantity int64 `json:"total_quantity"`
}

// Point is one (category, value) pair handed to a chart.
type Point struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

type Summary struct {
	KPIs             KPIs    `json:"kpis"`
	RowCount         int     `json:"row_count"`
	ByDate           []Point `json:"by_date"`
	ByProduct        []Point `json:"by_product"`
	PendingByProduct []Point `json:"pending_by_product"`
}
