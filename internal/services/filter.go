package services

import "ventas-dashboard/internal/models"

// Set is an allowed-value set for one filter dimension.
type Set map[string]struct{}

func NewSet(values []string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Allowed holds the resolved sets for branch, product and date (DateLayout keys).
type Allowed struct {
	Branches Set
	Products Set
	Dates    Set
}

// DistinctOptions lists each dimension's distinct values in first-seen order.
func DistinctOptions(records []models.SalesRecord) models.Options {
	opts := models.Options{
		Branches: []string{},
		Products: []string{},
		Dates:    []string{},
	}
	seenBranch, seenProduct, seenDate := Set{}, Set{}, Set{}

	appendNew := func(seen Set, list *[]string, v string) {
		if !seen.Has(v) {
			seen[v] = struct{}{}
			*list = append(*list, v)
		}
	}

	for _, r := range records {
		appendNew(seenBranch, &opts.Branches, r.Branch)
		appendNew(seenProduct, &opts.Products, r.Product)
		appendNew(seenDate, &opts.Dates, r.DateKey())
	}
	return opts
}

// Resolve fills every unchosen (nil) dimension of sel with all observed values.
func Resolve(opts models.Options, sel models.Selection) Allowed {
	pick := func(chosen, all []string) Set {
		if chosen == nil {
			return NewSet(all)
		}
		return NewSet(chosen)
	}
	return Allowed{
		Branches: pick(sel.Branches, opts.Branches),
		Products: pick(sel.Products, opts.Products),
		Dates:    pick(sel.Dates, opts.Dates),
	}
}

// Filter returns the records whose branch, product and date are all allowed,
// in their original order. The input slice is never modified.
func Filter(records []models.SalesRecord, allowed Allowed) []models.SalesRecord {
	out := []models.SalesRecord{}
	if len(allowed.Branches) == 0 || len(allowed.Products) == 0 || len(allowed.Dates) == 0 {
		return out
	}

	for _, r := range records {
		if allowed.Branches.Has(r.Branch) && allowed.Products.Has(r.Product) && allowed.Dates.Has(r.DateKey()) {
			out = append(out, r)
		}
	}
	return out
}
