package templates

import (
	"encoding/json"

	"ventas-dashboard/internal/charts"
	"ventas-dashboard/internal/models"
)

// PageData is everything the dashboard page needs for its first render.
type PageData struct {
	Options models.Options
	Summary models.Summary
}

// Signals is the initial Datastar signal store: the full selection plus the
// three chart figures.
func Signals(opts models.Options, figures charts.Set) ([]byte, error) {
	return json.Marshal(struct {
		models.Options
		charts.Set
	}{opts, figures})
}

func pageSignals(data PageData) (string, error) {
	raw, err := Signals(data.Options, charts.Build(data.Summary))
	return string(raw), err
}
