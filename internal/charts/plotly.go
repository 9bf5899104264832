// Package charts builds Plotly figure specs for the dashboard. The browser
// draws them with Plotly.react; no numeric work happens here.
package charts

import "ventas-dashboard/internal/models"

const (
	barColor    = "#0083B8"
	template    = "plotly_white"
	transparent = "rgba(0,0,0,0)"
	donutHole   = 0.3
)

// aggrnylR is Plotly's sequential Aggrnyl palette, reversed.
var aggrnylR = []string{"#EDEF5D", "#A9DC67", "#6EC574", "#39AB7E", "#0D8F81", "#0F7279", "#245668"}

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type        string    `json:"type"`
	Orientation string    `json:"orientation,omitempty"`
	X           []any     `json:"x"`
	Y           []any     `json:"y"`
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	Hole        float64   `json:"hole,omitempty"`
	Marker      *Marker   `json:"marker,omitempty"`
}

type Marker struct {
	Color  string   `json:"color,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

type Layout struct {
	Title        Title  `json:"title"`
	Template     string `json:"template"`
	PlotBGColor  string `json:"plot_bgcolor,omitempty"`
	PaperBGColor string `json:"paper_bgcolor,omitempty"`
	XAxis        *Axis  `json:"xaxis,omitempty"`
	YAxis        *Axis  `json:"yaxis,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	ShowGrid *bool  `json:"showgrid,omitempty"`
	TickMode string `json:"tickmode,omitempty"`
	Type     string `json:"type,omitempty"`
	Title    *Title `json:"title,omitempty"`
}

// Set is the three figures the page shows. Keys carry a leading underscore so
// Datastar keeps them client-side instead of echoing them back on every request.
type Set struct {
	DateChart    Figure `json:"_dateChart"`
	ProductChart Figure `json:"_productChart"`
	PendingChart Figure `json:"_pendingChart"`
}

func Build(s models.Summary) Set {
	return Set{
		DateChart:    DateBar(s.ByDate),
		ProductChart: ProductBar(s.ByProduct),
		PendingChart: PendingPie(s.PendingByProduct),
	}
}

// DateBar is a horizontal bar of total amount per date, in the order given.
func DateBar(points []models.Point) Figure {
	labels, values := split(points)
	return Figure{
		Data: []Trace{{
			Type:        "bar",
			Orientation: "h",
			X:           values,
			Y:           labels,
			Marker:      &Marker{Color: barColor},
		}},
		Layout: Layout{
			Title:       Title{Text: "<b>Ganancias por fecha</b>"},
			Template:    template,
			PlotBGColor: transparent,
			XAxis:       &Axis{ShowGrid: off(), Title: &Title{Text: "Importe Total"}},
			YAxis:       &Axis{Type: "category", Title: &Title{Text: "Fecha"}},
		},
	}
}

// ProductBar is a vertical bar of total amount per product.
func ProductBar(points []models.Point) Figure {
	labels, values := split(points)
	return Figure{
		Data: []Trace{{
			Type:   "bar",
			X:      labels,
			Y:      values,
			Marker: &Marker{Color: barColor},
		}},
		Layout: Layout{
			Title:       Title{Text: "<b>Ganancias por producto</b>"},
			Template:    template,
			PlotBGColor: transparent,
			XAxis:       &Axis{TickMode: "linear", Title: &Title{Text: "Producto"}},
			YAxis:       &Axis{ShowGrid: off(), Title: &Title{Text: "Importe Total"}},
		},
	}
}

// PendingPie is a donut of each product's share of the pending amount.
func PendingPie(points []models.Point) Figure {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	colors := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = p.Value.InexactFloat64()
		colors[i] = aggrnylR[i%len(aggrnylR)]
	}

	return Figure{
		Data: []Trace{{
			Type:   "pie",
			Labels: labels,
			Values: values,
			Hole:   donutHole,
			Marker: &Marker{Colors: colors},
		}},
		Layout: Layout{
			Title:    Title{Text: "Ventas totales"},
			Template: template,
		},
	}
}

func split(points []models.Point) (labels, values []any) {
	labels = make([]any, len(points))
	values = make([]any, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = p.Value.InexactFloat64()
	}
	return labels, values
}

func off() *bool {
	b := false
	return &b
}
