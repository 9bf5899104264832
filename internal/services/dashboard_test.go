package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ventas-dashboard/internal/models"
)

type fakeSource struct {
	table *models.Table
	err   error
	calls int
}

func (f *fakeSource) Load(ctx context.Context) (*models.Table, error) {
	f.calls++
	return f.table, f.err
}

func TestNewDashboard(t *testing.T) {
	d := NewDashboard(nil)
	if d == nil {
		t.Fatal("NewDashboard() returned nil")
	}
	if d.Ready() {
		t.Error("new dashboard should not be ready")
	}
	if d.logger == nil {
		t.Error("logger should be initialized")
	}
}

func TestDashboard_Load(t *testing.T) {
	src := &fakeSource{table: &models.Table{Records: createTestRecords(), Source: "datos.xlsx", Sheet: "ventas", LoadedAt: time.Now()}}
	d := NewDashboard(src)

	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !d.Ready() {
		t.Error("dashboard should be ready after Load")
	}
	if d.Table() != src.table {
		t.Error("Table() should return the loaded table")
	}
	if got := len(d.Options().Branches); got != 3 {
		t.Errorf("expected 3 branches, got %d", got)
	}
}

func TestDashboard_LoadErrors(t *testing.T) {
	if err := NewDashboard(nil).Load(context.Background()); err == nil {
		t.Error("expected error with no source")
	}

	boom := errors.New("boom")
	d := NewDashboard(&fakeSource{err: boom})
	if err := d.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped source error, got %v", err)
	}
	if d.Ready() {
		t.Error("dashboard should not be ready after a failed load")
	}
}

func TestDashboard_Summary(t *testing.T) {
	d := NewDashboard(nil)
	d.SetData(createTestRecords())

	all := d.Summary(models.Selection{})
	if all.KPIs.TotalAmount != 450 || all.RowCount != 5 {
		t.Errorf("expected total 450 over 5 rows, got %d over %d", all.KPIs.TotalAmount, all.RowCount)
	}

	centro := d.Summary(models.Selection{Branches: []string{"Centro"}})
	if centro.KPIs.TotalAmount != 150 || centro.KPIs.TotalQuantity != 4 {
		t.Errorf("unexpected Centro KPIs: %+v", centro.KPIs)
	}

	none := d.Summary(models.Selection{Dates: []string{}})
	if none.RowCount != 0 || len(none.ByDate) != 0 {
		t.Errorf("expected empty summary, got %+v", none)
	}
}

func TestDashboard_Records(t *testing.T) {
	d := NewDashboard(nil)
	d.SetData(createTestRecords())

	got := d.Records(models.Selection{Products: []string{"Hielo"}})
	if len(got) != 2 || got[0].Branch != "Norte" || got[1].Branch != "Centro" {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestDashboard_EmptyData(t *testing.T) {
	d := NewDashboard(nil)

	if got := d.Records(models.Selection{}); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
	summary := d.Summary(models.Selection{})
	if summary.KPIs != (models.KPIs{}) {
		t.Errorf("expected zero KPIs, got %+v", summary.KPIs)
	}
	if d.Options().Branches == nil {
		t.Error("options should be empty slices, not nil")
	}
}

func TestDashboard_Stats(t *testing.T) {
	d := NewDashboard(nil)
	if ready := d.Stats()["ready"]; ready != false {
		t.Errorf("expected ready=false, got %v", ready)
	}

	d.SetData(createTestRecords())
	stats := d.Stats()
	if stats["record_count"] != 5 {
		t.Errorf("expected record_count 5, got %v", stats["record_count"])
	}
	if stats["products"] != 2 {
		t.Errorf("expected 2 products, got %v", stats["products"])
	}
}

func TestDashboard_ConcurrentAccess(t *testing.T) {
	d := NewDashboard(nil)
	d.SetData(createTestRecords())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Summary(models.Selection{Branches: []string{"Norte"}})
			_ = d.Options()
			_ = d.Stats()
		}()
	}
	wg.Wait()
}
