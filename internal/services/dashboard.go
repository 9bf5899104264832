package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ventas-dashboard/internal/models"
)

// TableSource produces the sales table. Implementations are expected to
// memoize so repeated calls do not re-read the spreadsheet.
type TableSource interface {
	Load(ctx context.Context) (*models.Table, error)
}

type Dashboard struct {
	mu      sync.RWMutex
	table   *models.Table
	options models.Options
	source  TableSource
	logger  *slog.Logger
}

func NewDashboard(source TableSource) *Dashboard {
	return &Dashboard{
		source:  source,
		options: DistinctOptions(nil),
		logger:  slog.Default(),
	}
}

// Load fetches the table from the source and publishes it for readers.
func (d *Dashboard) Load(ctx context.Context) error {
	if d.source == nil {
		return errors.New("no table source configured")
	}

	table, err := d.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}

	d.publish(table)

	options := d.Options()
	d.logger.Info("dashboard ready",
		"records", table.Len(),
		"branches", len(options.Branches),
		"products", len(options.Products),
		"dates", len(options.Dates),
	)
	return nil
}

// SetData installs records directly, bypassing the source.
func (d *Dashboard) SetData(records []models.SalesRecord) {
	d.publish(&models.Table{
		Records:  records,
		Source:   "memory",
		LoadedAt: time.Now(),
	})
}

func (d *Dashboard) publish(table *models.Table) {
	options := DistinctOptions(table.Records)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.table = table
	d.options = options
}

func (d *Dashboard) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table != nil
}

func (d *Dashboard) Table() *models.Table {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table
}

func (d *Dashboard) Options() models.Options {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.options
}

func (d *Dashboard) records() ([]models.SalesRecord, models.Options) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.table == nil {
		return nil, d.options
	}
	return d.table.Records, d.options
}

// Records returns the rows allowed by sel, in table order.
func (d *Dashboard) Records(sel models.Selection) []models.SalesRecord {
	records, options := d.records()
	return Filter(records, Resolve(options, sel))
}

// Summary filters by sel and aggregates the result.
func (d *Dashboard) Summary(sel models.Selection) models.Summary {
	return Aggregate(d.Records(sel))
}

func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := map[string]any{
		"ready":    d.table != nil,
		"branches": len(d.options.Branches),
		"products": len(d.options.Products),
		"dates":    len(d.options.Dates),
	}
	if d.table != nil {
		stats["record_count"] = d.table.Len()
		stats["source"] = d.table.Source
		stats["sheet"] = d.table.Sheet
		stats["loaded_at"] = d.table.LoadedAt
	}
	return stats
}
