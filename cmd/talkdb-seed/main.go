package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talkdb/talkdb/internal/archive"
	"github.com/talkdb/talkdb/internal/config"
	"github.com/talkdb/talkdb/internal/migrations"
	"github.com/talkdb/talkdb/internal/observability"
	"github.com/talkdb/talkdb/internal/seed"
	s3store "github.com/talkdb/talkdb/internal/storage/s3"
	"github.com/talkdb/talkdb/internal/store"
)

const sampleRows = 10

func main() {
	listFixtures := flag.Bool("list-fixtures", false, "list archived fixture runs and exit")
	skipArchive := flag.Bool("no-archive", false, "skip the fixture archive even when enabled in config")
	restoreRun := flag.String("restore-fixtures", "", "reload an archived run id into an empty database instead of seeding")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", slog.Any("error", err))
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv("talkdb-seed")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialect, err := store.Lookup(cfg.Database.Driver)
	if err != nil {
		logger.Error("unsupported database driver", slog.Any("error", err))
		os.Exit(1)
	}
	db, err := store.Open(ctx, store.Options{Dialect: dialect, DSN: cfg.Database.DSN})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var archiver *archive.Archiver
	if (cfg.Archive.Enabled && !*skipArchive) || *listFixtures || *restoreRun != "" {
		objectStore, err := s3store.New(ctx, cfg.ObjectStore)
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = archive.New(db, objectStore, cfg.Archive.Prefix, logger)
	}

	if *listFixtures {
		runs, err := archiver.Runs(ctx)
		if err != nil {
			logger.Error("failed to list fixture runs", slog.Any("error", err))
			os.Exit(1)
		}
		for _, run := range runs {
			fmt.Println(run)
		}
		return
	}

	if *restoreRun != "" {
		runner, err := migrations.NewRunner(dialect.Name)
		if err != nil {
			logger.Error("migration setup failed", slog.Any("error", err))
			os.Exit(1)
		}
		if _, err := runner.Up(ctx, db, 0); err != nil {
			logger.Error("apply schema failed", slog.Any("error", err))
			os.Exit(1)
		}
		restored, err := archiver.Restore(ctx, *restoreRun)
		if err != nil {
			logger.Error("fixture restore failed", slog.String("run_id", *restoreRun), slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("restored run %s: %d users, %d posts, %d comments\n", *restoreRun,
			restored["users"], restored["posts"], restored["comments"])
		return
	}

	seeder := seed.NewSeeder(db, dialect.Name, cfg.Seed.Random, logger)
	summary, err := seeder.Run(ctx, seed.Counts{
		Users:    cfg.Seed.Users,
		Posts:    cfg.Seed.Posts,
		Comments: cfg.Seed.Comments,
	})
	if err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Printf("users: %d inserted, %d skipped\n", summary.Users.Inserted, summary.Users.Skipped)
	fmt.Printf("posts: %d inserted, %d skipped\n", summary.Posts.Inserted, summary.Posts.Skipped)
	fmt.Printf("comments: %d inserted, %d skipped\n", summary.Comments.Inserted, summary.Comments.Skipped)

	pairs, err := seeder.Sample(ctx, sampleRows)
	if err != nil {
		logger.Error("failed to read sample", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println("sample user/post pairs:")
	for _, pair := range pairs {
		fmt.Printf("  %s: %s\n", pair.Name, pair.Title)
	}

	if archiver == nil {
		return
	}
	manifest, err := archiver.Archive(ctx)
	if err != nil {
		logger.Error("fixture archive failed", slog.Any("error", err))
		os.Exit(1)
	}
	for _, object := range manifest.Objects {
		fmt.Printf("archived %s (%d bytes)\n", object.Key, object.Size)
	}
}
