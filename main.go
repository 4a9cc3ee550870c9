package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"listing-search/config"
	"listing-search/models"
	"listing-search/reports"
	"listing-search/services"
	"listing-search/source"
	"listing-search/storage"
	"listing-search/utils"
)

const usage = `usage: listing-search <command> [flags]

commands:
  search      load listings, filter and print one page
  report      like search, then write an HTML chart report of the result
  scrape      ask the backend to scrape one city (-city)
  scrape-all  ask the backend to scrape every US state and Canadian province
  import      load a JSON listing file into postgres or mongo (-file, -target)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "search":
		err = runSearch(ctx, cfg, logger, args, false)
	case "report":
		err = runSearch(ctx, cfg, logger, args, true)
	case "scrape":
		err = runScrape(ctx, cfg, logger, args)
	case "scrape-all":
		err = runScrapeAll(ctx, cfg, logger)
	case "import":
		err = runImport(ctx, cfg, logger, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func runSearch(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string, withReport bool) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	city := fs.String("city", "", "server-side city filter for the fetch")
	term := fs.String("q", "", "text matched against location, region, state, province and country")
	page := fs.String("page", "1", "page to show")
	perPage := fs.Int("per-page", cfg.ItemsPerPage, "listings per page")
	server := fs.Bool("server", false, "let the backend pre-filter by -city and -feature")
	csvOut := fs.Bool("csv", false, "export the filtered listings to CSV_OUTPUT_PATH")
	var features, prices, locations multiFlag
	fs.Var(&features, "feature", "required feature (repeatable, all must match)")
	fs.Var(&prices, "price", `price range, one of "$0-$50" "$51-$100" "$101-$200" "$201+" (repeatable)`)
	fs.Var(&locations, "location", "exact location (repeatable)")
	_ = fs.Parse(args)

	src, err := source.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	session := services.NewSession(src.Fetcher, src.Trigger, *perPage, logger)
	if *server {
		session.LoadFiltered(ctx, *city, features)
	} else {
		session.Load(ctx, *city)
	}

	session.SetSearchTerm(*term)
	for _, f := range features {
		session.Select(models.FacetFeatures, f)
	}
	for _, p := range prices {
		session.Select(models.FacetPriceRange, p)
	}
	for _, l := range locations {
		session.Select(models.FacetLocation, l)
	}
	if !session.GoToPageInput(*page) && *page != "1" {
		logger.Warn("Page %q does not exist, showing page 1 of %d", *page, session.TotalPages())
	}

	printPage(os.Stdout, session)

	if *csvOut {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			return err
		}
		if err := export(w, session.Filtered()); err != nil {
			return err
		}
		logger.Info("Filtered listings saved to %s", cfg.CSVOutputPath)
	}

	if withReport {
		insights := services.NewInsightService(logger)
		report := insights.Generate(session.Filtered())
		insights.Print(os.Stdout, report)
		if err := reports.WriteHTMLFile(cfg.ReportOutputPath, report); err != nil {
			return err
		}
		logger.Info("Chart report saved to %s", cfg.ReportOutputPath)
	}
	return nil
}

func printPage(w io.Writer, s *services.Session) {
	if msg := s.Message(); msg != "" {
		fmt.Fprintf(w, "\n  %s\n", msg)
	}

	listings := s.Listings()
	offset := (s.CurrentPage() - 1) * s.ItemsPerPage()
	if len(listings) > 0 {
		fmt.Fprintln(w)
	}
	for i, l := range listings {
		fmt.Fprintf(w, "  %3d. %s\n", offset+i+1, l.Title)
		fmt.Fprintf(w, "       %s · %s · %s\n", l.Price, l.Location, l.URL)
		if len(l.Features) > 0 {
			fmt.Fprintf(w, "       %s\n", strings.Join(l.Features, ", "))
		}
	}

	left, right := s.Window()
	var buttons []string
	for p := left; p < right; p++ {
		if p == s.CurrentPage() {
			buttons = append(buttons, fmt.Sprintf("[%d]", p))
		} else {
			buttons = append(buttons, fmt.Sprintf("%d", p))
		}
	}
	fmt.Fprintf(w, "\n  %d results · page %d of %d  %s\n",
		len(s.Filtered()), s.CurrentPage(), s.TotalPages(), strings.Join(buttons, " "))

	if opts := s.Options(); len(opts[models.FacetFeatures]) > 0 {
		fmt.Fprintf(w, "  features: %s\n", strings.Join(opts[models.FacetFeatures], ", "))
	}
	if vocab := s.Vocabulary(); len(vocab) > 0 {
		fmt.Fprintf(w, "  server features: %s\n", strings.Join(vocab, ", "))
	}
}

func export(out storage.ListingExporter, listings []*models.Listing) error {
	if err := out.WriteListings(listings); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func runScrape(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	city := fs.String("city", "", "city to scrape")
	_ = fs.Parse(args)

	src, err := source.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	session := services.NewSession(src.Fetcher, src.Trigger, cfg.ItemsPerPage, logger)
	res, ok := session.Scrape(ctx, *city)
	fmt.Printf("\n  %s\n", session.Message())
	if !ok {
		return fmt.Errorf("scrape %q did not complete", *city)
	}

	for _, p := range res.Places {
		fmt.Printf("  %s\n    Price: %s · Rating: %s\n    %s\n", p.Title, p.Price, p.Rating, p.URL)
	}
	return nil
}

func runScrapeAll(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	src, err := source.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	session := services.NewSession(src.Fetcher, src.Trigger, cfg.ItemsPerPage, logger)
	_, ok := session.ScrapeAll(ctx)
	fmt.Printf("\n  %s\n", session.Message())
	if !ok {
		return fmt.Errorf("bulk scrape did not complete")
	}
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "JSON file holding an array of listings")
	target := fs.String("target", config.ModePostgres, "postgres or mongo")
	_ = fs.Parse(args)

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("import: read %q: %w", *file, err)
	}
	raw, err := models.ListingsFromJSON(data)
	if err != nil {
		return fmt.Errorf("import: decode %q: %w", *file, err)
	}
	listings := services.NewCleaner(logger).Clean(raw)

	var importer storage.ListingImporter
	switch *target {
	case config.ModePostgres:
		importer, err = storage.NewPostgresStore(ctx, cfg.DSN())
	case config.ModeMongo:
		importer, err = storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)
	default:
		return fmt.Errorf("import: unknown target %q (use 'postgres' or 'mongo')", *target)
	}
	if err != nil {
		return err
	}
	defer importer.Close()

	n, err := importer.Import(ctx, listings)
	if err != nil {
		return err
	}
	logger.Info("Imported %d of %d listings into %s", n, len(listings), *target)
	return nil
}
