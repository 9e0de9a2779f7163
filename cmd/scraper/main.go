package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/cache"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/classifier"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/db"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/scraper"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/internal/twitter"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/config"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/logging"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/telemetry"
)

const usage = `Usage: scraper <command>

Commands:
  new               sync every configured author, pulling only new tweets
  update            re-fetch all stored tweets and refresh media and category
  import <author>   ingest an offline archive for one author
  export            dump the store as a JSON document
`

func main() {
	// A .env file is optional; environment takes precedence
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()
	logger := logging.GetLogger()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	command := strings.ToLower(strings.TrimSpace(os.Args[1]))

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	switch command {
	case "new":
		requireBearer(cfg)
		err = run(cfg, func(ctx context.Context, engine *scraper.Engine, cls *classifier.Classifier) error {
			return engine.SyncAll(ctx, cls.Authors())
		})
	case "update":
		requireBearer(cfg)
		err = run(cfg, func(ctx context.Context, engine *scraper.Engine, _ *classifier.Classifier) error {
			return engine.RefreshAll(ctx)
		})
	case "import":
		if len(os.Args) < 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(1)
		}
		requireBearer(cfg)
		author := os.Args[2]
		err = run(cfg, func(ctx context.Context, engine *scraper.Engine, _ *classifier.Classifier) error {
			path := filepath.Join(cfg.Watchlist.ArchiveDir, author+".json")
			entries, loadErr := scraper.LoadArchive(path)
			if loadErr != nil {
				if errors.Is(loadErr, os.ErrNotExist) {
					logger.Warn("No archive found, try syncing via the API instead",
						zap.String("path", path))
					return nil
				}
				return loadErr
			}
			return engine.SyncAuthorFromArchive(ctx, author, entries)
		})
	case "export":
		err = exportStore(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s", command, usage)
		os.Exit(1)
	}

	if err != nil {
		logger.Error("Command failed", zap.String("command", command), zap.Error(err))
		logging.GetLogger().Sync()
		os.Exit(1)
	}
}

// requireBearer hard-exits before any work when the API credential is missing
func requireBearer(cfg *config.Config) {
	if cfg.Twitter.BearerToken == "" {
		fmt.Fprintln(os.Stderr, "A valid Twitter API bearer token is required (RTT_TWITTER_BEARER_TOKEN)")
		os.Exit(1)
	}
}

// run wires the store, watchlist, feed and cache for one command. The store
// is opened per invocation and closed on every exit path.
func run(cfg *config.Config, fn func(ctx context.Context, engine *scraper.Engine, cls *classifier.Classifier) error) error {
	cls, err := classifier.Load(cfg.Watchlist.Path)
	if err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}

	client, err := twitter.New(&cfg.Twitter)
	if err != nil {
		return fmt.Errorf("failed to create Twitter client: %w", err)
	}

	userCache, err := cache.New(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer userCache.Close()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	repo := db.NewTweetRepository(database.DB)
	engine := scraper.New(client, repo, cls, userCache, &cfg.Twitter)

	return fn(context.Background(), engine, cls)
}

func exportStore(cfg *config.Config, logger *zap.Logger) error {
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	repo := db.NewTweetRepository(database.DB)
	if err := scraper.ExportToFile(context.Background(), repo, cfg.Export.Path); err != nil {
		return err
	}

	logger.Info("Store exported", zap.String("path", cfg.Export.Path))
	return nil
}
