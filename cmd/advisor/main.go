package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tyreadvisor/internal/advisor"
	"tyreadvisor/internal/community"
	"tyreadvisor/internal/config"
	"tyreadvisor/internal/model"
	"tyreadvisor/internal/scraper"
	"tyreadvisor/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Error("open store", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	adv := newAdvisor(cfg, store, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, adv, args); err != nil {
		log.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, adv *advisor.Advisor, args []string) error {
	switch args[0] {
	case "refresh":
		result, err := adv.RefreshAll(ctx)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "recommend":
		prefs, question, err := parseRecommendArgs(args[1:])
		if err != nil {
			return err
		}
		result := adv.Recommendations(ctx, prefs, question, nil)
		return printJSON(result.Recommendations)

	case "stats":
		stats, err := adv.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)

	case "popular":
		location := "Unknown"
		if len(args) > 1 {
			location = args[1]
		}
		records, err := adv.PopularTyres(ctx, location, 10)
		if err != nil {
			return err
		}
		return printJSON(records)

	case "search":
		if len(args) < 2 {
			return fmt.Errorf("search requires a query")
		}
		records, err := adv.Search(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return printJSON(records)

	case "seed":
		return adv.Seed(ctx)
	}

	usage()
	return fmt.Errorf("unknown command: %s", args[0])
}

func parseRecommendArgs(args []string) (model.UserPreferences, string, error) {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	style := fs.String("style", "", "riding style (e.g. Trail, Enduro, Downhill)")
	terrain := fs.String("terrain", "", "typical terrain (e.g. Rocky trails)")
	weather := fs.String("weather", "", "weather conditions (e.g. Wet conditions)")
	skill := fs.String("skill", "", "skill level")
	budget := fs.String("budget", "", "budget")
	question := fs.String("question", "", "free-text refinement question")
	if err := fs.Parse(args); err != nil {
		return model.UserPreferences{}, "", err
	}

	return model.UserPreferences{
		RidingStyle:       *style,
		Terrain:           *terrain,
		WeatherConditions: *weather,
		SkillLevel:        *skill,
		Budget:            *budget,
	}, *question, nil
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemory(), nil

	case config.BackendFile:
		return storage.NewFile(cfg.DatabasePath), nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		return storage.NewSQLite(cfg.DatabasePath)

	case config.BackendGist:
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		return storage.NewGist(client, cfg.GistID, cfg.GistToken), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func newAdvisor(cfg *config.Config, store storage.Store, log *slog.Logger) *advisor.Advisor {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	client := scraper.NewClient(httpClient)

	agg := scraper.NewAggregator(log,
		scraper.NewBikeRadar(client, log),
		scraper.NewSingletracks(client, log),
		scraper.NewMTBR(client, log),
		scraper.NewVitalMTB(client, log),
		scraper.NewPinkbike(client, log),
		scraper.NewReviewFeed(client, log, "Singletracks Feed", "https://www.singletracks.com/feed/"),
	)

	comm := community.New(httpClient, log, cfg.RequestDelay)
	enricher := advisor.NewEnricher(store, comm, log, 2*cfg.RequestDelay, cfg.DefaultLocation)

	return advisor.New(agg, enricher, store, log)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: advisor <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  refresh                      Rebuild the database from a full scrape")
	fmt.Fprintln(os.Stderr, "  recommend [flags]            Answer the rider questionnaire")
	fmt.Fprintln(os.Stderr, "  stats                        Show database statistics")
	fmt.Fprintln(os.Stderr, "  popular <location>           Show the best community-scored tyres for a location")
	fmt.Fprintln(os.Stderr, "  search <query>               Search stored tyres by model or brand")
	fmt.Fprintln(os.Stderr, "  seed                         Fill an empty database from the static catalog")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
