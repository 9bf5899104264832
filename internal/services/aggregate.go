package services

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"ventas-dashboard/internal/models"
)

// Aggregate computes the KPIs and grouped sums of records. Empty input yields
// zero KPIs and empty series.
func Aggregate(records []models.SalesRecord) models.Summary {
	var pending, total, quantity decimal.Decimal

	byDate := make(map[string]decimal.Decimal)
	byProduct := make(map[string]decimal.Decimal)
	pendingByProduct := make(map[string]decimal.Decimal)

	for _, r := range records {
		pending = pending.Add(r.Pending)
		total = total.Add(r.Total)
		quantity = quantity.Add(r.Quantity)

		date := r.DateKey()
		byDate[date] = byDate[date].Add(r.Total)
		byProduct[r.Product] = byProduct[r.Product].Add(r.Total)
		pendingByProduct[r.Product] = pendingByProduct[r.Product].Add(r.Pending)
	}

	return models.Summary{
		KPIs: models.KPIs{
			TotalPending:  pending.IntPart(),
			TotalAmount:   total.IntPart(),
			TotalQuantity: quantity.IntPart(),
		},
		RowCount:         len(records),
		ByDate:           sortByValue(byDate),
		ByProduct:        sortByLabel(byProduct),
		PendingByProduct: sortByLabel(pendingByProduct),
	}
}

func toPoints(groups map[string]decimal.Decimal) []models.Point {
	points := make([]models.Point, 0, len(groups))
	for label, value := range groups {
		points = append(points, models.Point{Label: label, Value: value})
	}
	return points
}

// sortByValue orders ascending by value, then by label.
func sortByValue(groups map[string]decimal.Decimal) []models.Point {
	points := toPoints(groups)
	slices.SortFunc(points, func(a, b models.Point) int {
		if c := a.Value.Cmp(b.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return points
}

func sortByLabel(groups map[string]decimal.Decimal) []models.Point {
	points := toPoints(groups)
	slices.SortFunc(points, func(a, b models.Point) int {
		return strings.Compare(a.Label, b.Label)
	})
	return points
}

// Sum adds up the values of a series.
func Sum(points []models.Point) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Value)
	}
	return sum
}
