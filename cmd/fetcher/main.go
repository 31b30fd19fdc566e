package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/infrastructure"
)

// portalURL is the federal highway police open-data page listing the yearly
// accident extracts.
const portalURL = "https://www.gov.br/prf/pt-br/acesso-a-informacao/dados-abertos/dados-abertos-da-prf"

// extractLinkPattern matches download links for yearly extracts, e.g.
// .../datatran2023.csv or an archive carrying the year in its name.
var extractLinkPattern = regexp.MustCompile(`(?i)datatran[^"']*?(\d{4})[^"']*?\.(csv|zip)`)

func main() {
	yearsFlag := flag.String("years", "", "comma-separated years to fetch (default: configured years)")
	outDir := flag.String("out", "", "directory to save extracts (default: data directory)")
	headless := flag.Bool("headless", true, "run browser headless")
	timeout := flag.Duration("timeout", 3*time.Minute, "overall portal navigation timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.GetPaths(cfg)
	if err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to ensure directories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *outDir == "" {
		*outDir = paths.DataDir
	}

	wanted := make(map[int]bool)
	years := cfg.Data.DefaultYears
	if *yearsFlag != "" {
		years = nil
		for _, p := range strings.Split(*yearsFlag, ",") {
			year, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				logger.Error("invalid --years", slog.String("error", err.Error()))
				os.Exit(1)
			}
			years = append(years, year)
		}
	}
	for _, y := range years {
		wanted[y] = true
	}

	logger.Info("fetching yearly extracts",
		slog.Any("years", years),
		slog.String("out", *outDir),
		slog.String("portal", portalURL))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", *headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	links, err := collectExtractLinks(ctx, wanted)
	if err != nil {
		logger.Error("portal navigation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(links) == 0 {
		logger.Error("no extract links found for the requested years", slog.Any("years", years))
		os.Exit(1)
	}

	downloaded := 0
	for year, url := range links {
		name := fmt.Sprintf("datatran%d.csv", year)
		if strings.HasSuffix(strings.ToLower(url), ".zip") {
			name = fmt.Sprintf("datatran%d.zip", year)
		}
		dest := filepath.Join(*outDir, name)

		logger.Info("downloading extract",
			slog.Int("year", year),
			slog.String("url", url),
			slog.String("dest", dest))
		if err := download(ctx, url, dest); err != nil {
			logger.Error("download failed",
				slog.Int("year", year),
				slog.String("error", err.Error()))
			continue
		}
		downloaded++
	}

	fmt.Printf("downloaded %d of %d extracts to %s\n", downloaded, len(links), *outDir)
	if downloaded < len(wanted) {
		for y := range wanted {
			if _, ok := links[y]; !ok {
				fmt.Printf("  year %d: no link found on the portal page\n", y)
			}
		}
	}
}

// collectExtractLinks loads the portal page and resolves one download URL per
// requested year. The first matching link on the page wins when a year
// appears more than once.
func collectExtractLinks(ctx context.Context, wanted map[int]bool) (map[int]string, error) {
	var hrefs []string
	err := chromedp.Run(ctx,
		chromedp.Navigate(portalURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`, &hrefs),
	)
	if err != nil {
		return nil, fmt.Errorf("loading portal page: %w", err)
	}

	links := make(map[int]string)
	for _, href := range hrefs {
		m := extractLinkPattern.FindStringSubmatch(href)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil || !wanted[year] {
			continue
		}
		if _, seen := links[year]; !seen {
			links[year] = href
		}
	}
	return links, nil
}

// download fetches one extract over plain HTTP. The portal serves the files
// directly once the link is resolved, so the browser is not needed here.
func download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
