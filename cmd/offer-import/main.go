// Command offer-import bulk-loads offers from gzip JSON-lines files.
//
//	offer-import --database-url postgres://... offers-1.jsonl.gz offers-2.jsonl.gz
//
// Without file arguments every *.jsonl.gz file in --data-dir is imported.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/unimart/storefront/internal/offerimport"
	"github.com/unimart/storefront/internal/repository"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		batchSize   int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory with *.jsonl.gz files, used when no files are given")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&batchSize, "batch-size", 500, "offers written per batch")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, flag.Args(), dataDir, databaseURL, batchSize); err != nil {
		slog.Error("offer import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, files []string, dataDir, databaseURL string, batchSize int) error {
	if len(files) == 0 {
		matches, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
		if err != nil {
			return errors.Wrap(err, "list data dir")
		}
		files = matches
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	im := offerimport.New(repository.NewOfferRepository(pool), offerimport.Config{
		BatchSize: batchSize,
		Logger:    slog.Default(),
	})
	report, err := im.Run(ctx, files)
	if err != nil {
		return err
	}

	slog.Info("offer import completed",
		slog.Int("records", report.Records),
		slog.Int("written", report.Written),
		slog.Int("rejected", report.Rejected),
		slog.Int("skipped", report.Skipped),
		slog.Int("conflicts", len(report.Conflicts)),
	)
	for _, code := range report.Conflicts {
		slog.Warn("coupon code defined in several files", slog.String("code", code))
	}
	return nil
}
