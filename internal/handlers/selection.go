package handlers

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"ventas-dashboard/internal/errors"
	"ventas-dashboard/internal/models"
)

const (
	paramBranch  = "sucursal"
	paramProduct = "producto"
	paramDate    = "fecha"
)

// selectionFromQuery reads the three dimensions from repeated query
// parameters. An absent parameter selects everything; a parameter present
// with only empty values selects nothing.
func selectionFromQuery(q url.Values) (models.Selection, error) {
	sel := models.Selection{
		Branches: dimension(q, paramBranch),
		Products: dimension(q, paramProduct),
		Dates:    dimension(q, paramDate),
	}
	return sel, validateSelection(sel)
}

func dimension(q url.Values, key string) []string {
	values, ok := q[key]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validateSelection(sel models.Selection) error {
	for _, d := range sel.Dates {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return errors.ValidationWrap(err, fmt.Sprintf("invalid %s %q, expected YYYY-MM-DD", paramDate, d))
		}
	}
	return nil
}
