package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bookcomments/internal/book"
	"bookcomments/internal/config"
	"bookcomments/internal/platform/logger"
	"bookcomments/internal/platform/openlibrary"
	"bookcomments/internal/platform/storage"

	"go.uber.org/zap"
)

func main() {
	var (
		subject = flag.String("subject", "science_fiction", "Open Library subject to pull titles from")
		limit   = flag.Int("limit", 25, "Maximum number of search results")
		titles  = flag.String("titles", "", "Comma-separated titles to seed instead of searching")
		baseURL = flag.String("openlibrary-url", openlibrary.DefaultBaseURL, "Open Library base URL")
	)
	flag.Parse()

	if err := run(*subject, *limit, *titles, *baseURL); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

type titleSource interface {
	SearchTitles(ctx context.Context, subject string, limit int) ([]string, error)
}

func run(subject string, limit int, titleList, baseURL string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	client := openlibrary.NewClient(baseURL, "bookcomments-seed/1.0", 2, 3)
	n, err := seed(ctx, book.NewService(store.Repo, nil), client, subject, limit, titleList, log)
	if err != nil {
		return err
	}
	log.Info("seed complete", zap.Int("books", n))
	return nil
}

// seed creates one book per title. Creation is idempotent, so reruns do
// not duplicate titles.
func seed(ctx context.Context, service *book.Service, src titleSource, subject string, limit int, titleList string, log *zap.Logger) (int, error) {
	var titles []string
	if titleList != "" {
		for _, t := range strings.Split(titleList, ",") {
			if t = strings.TrimSpace(t); t != "" {
				titles = append(titles, t)
			}
		}
	} else {
		found, err := src.SearchTitles(ctx, subject, limit)
		if err != nil {
			return 0, fmt.Errorf("search open library: %w", err)
		}
		titles = found
	}

	for _, title := range titles {
		b, err := service.Create(ctx, title)
		if err != nil {
			return 0, fmt.Errorf("seed %q: %w", title, err)
		}
		log.Debug("seeded", zap.String("id", b.ID), zap.String("title", b.Title))
	}
	return len(titles), nil
}
