package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"ventas-dashboard/internal/models"
)

func points(pairs ...any) []models.Point {
	out := []models.Point{}
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, models.Point{
			Label: pairs[i].(string),
			Value: decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	return out
}

func TestAggregate_WorkedExample(t *testing.T) {
	table := []models.SalesRecord{
		record("A", "X", 1, 10, 100, 1),
		record("B", "Y", 2, 20, 200, 2),
	}

	filtered := Filter(table, Resolve(DistinctOptions(table), models.Selection{Branches: []string{"A"}}))
	if len(filtered) != 1 || filtered[0].Branch != "A" {
		t.Fatalf("expected only row 1, got %+v", filtered)
	}

	got := Aggregate(filtered)
	want := models.Summary{
		KPIs:             models.KPIs{TotalPending: 10, TotalAmount: 100, TotalQuantity: 1},
		RowCount:         1,
		ByDate:           points("2024-01-01", 100),
		ByProduct:        points("X", 100),
		PendingByProduct: points("X", 10),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Ordering(t *testing.T) {
	got := Aggregate(createTestRecords())

	// Totals: 01 -> 130, 02 -> 250, 03 -> 70.
	if diff := cmp.Diff(points("2024-01-03", 70, "2024-01-01", 130, "2024-01-02", 250), got.ByDate); diff != "" {
		t.Errorf("by date should ascend by value (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(points("Agua", 200, "Hielo", 250), got.ByProduct); diff != "" {
		t.Errorf("by product mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(points("Agua", 18, "Hielo", 25), got.PendingByProduct); diff != "" {
		t.Errorf("pending by product mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_PartitionsMatchTotal(t *testing.T) {
	records := createTestRecords()
	opts := DistinctOptions(records)

	selections := []models.Selection{
		{},
		{Branches: []string{"Centro"}},
		{Products: []string{"Agua"}, Dates: []string{"2024-01-01", "2024-01-03"}},
	}

	for _, sel := range selections {
		summary := Aggregate(Filter(records, Resolve(opts, sel)))
		total := decimal.NewFromInt(summary.KPIs.TotalAmount)

		if !Sum(summary.ByProduct).Equal(total) {
			t.Errorf("%+v: sum by product %s != total %s", sel, Sum(summary.ByProduct), total)
		}
		if !Sum(summary.ByDate).Equal(total) {
			t.Errorf("%+v: sum by date %s != total %s", sel, Sum(summary.ByDate), total)
		}
	}
}

func TestAggregate_TruncatesKPIs(t *testing.T) {
	r := record("A", "X", 1, 0, 0, 0)
	r.Pending = decimal.RequireFromString("10.99")
	r.Total = decimal.RequireFromString("99.5")
	r.Quantity = decimal.RequireFromString("1.2")
	s := r
	s.Total = decimal.RequireFromString("0.6")

	got := Aggregate([]models.SalesRecord{r, s})

	want := models.KPIs{TotalPending: 21, TotalAmount: 100, TotalQuantity: 2}
	if got.KPIs != want {
		t.Errorf("expected %+v, got %+v", want, got.KPIs)
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)

	if got.KPIs != (models.KPIs{}) || got.RowCount != 0 {
		t.Errorf("expected zero summary, got %+v", got)
	}
	if got.ByDate == nil || got.ByProduct == nil || got.PendingByProduct == nil {
		t.Error("series should be empty slices, not nil")
	}
}

func BenchmarkAggregate(b *testing.B) {
	records := make([]models.SalesRecord, 1000)
	for i := range records {
		records[i] = record("Centro", "Producto"+string(rune('A'+i%20)), 1+i%28, i, i*10, 1)
	}

	b.ResetTimer()
	for b.Loop() {
		_ = Aggregate(records)
	}
}
