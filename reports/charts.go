package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"listing-search/models"
	"listing-search/services"
)

const maxLocationBars = 15

// RenderHTML writes an HTML page with charts for the report.
func RenderHTML(w io.Writer, r *models.InsightReport) error {
	page := components.NewPage()
	page.PageTitle = "Listing insights"
	page.AddCharts(priceRangePie(r), locationBar(r), featureBar(r))
	return page.Render(w)
}

// WriteHTMLFile renders the report to path, creating parent directories.
func WriteHTMLFile(path string, r *models.InsightReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create file %q: %w", path, err)
	}
	defer f.Close()

	if err := RenderHTML(f, r); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

func priceRangePie(r *models.InsightReport) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Listings by price range"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	items := make([]opts.PieData, 0, len(models.PriceRangeOptions))
	for _, opt := range models.PriceRangeOptions {
		items = append(items, opts.PieData{Name: opt, Value: r.ListingsByPriceRange[opt]})
	}
	pie.AddSeries("Listings", items)
	return pie
}

func locationBar(r *models.InsightReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Top locations"}))

	locs := services.SortedLocations(r.ListingsByLocation)
	if len(locs) > maxLocationBars {
		locs = locs[:maxLocationBars]
	}

	x := make([]string, 0, len(locs))
	y := make([]opts.BarData, 0, len(locs))
	for _, lc := range locs {
		x = append(x, lc.Location)
		y = append(y, opts.BarData{Value: lc.Count})
	}
	bar.SetXAxis(x).AddSeries("Listings", y)
	return bar
}

func featureBar(r *models.InsightReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Top features"}))

	x := make([]string, 0, len(r.TopFeatures))
	y := make([]opts.BarData, 0, len(r.TopFeatures))
	for _, fc := range r.TopFeatures {
		x = append(x, fc.Feature)
		y = append(y, opts.BarData{Value: fc.Count})
	}
	bar.SetXAxis(x).AddSeries("Listings", y)
	return bar
}
