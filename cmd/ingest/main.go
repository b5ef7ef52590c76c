// One-shot populator: fills a file-backed card store and exits. Useful for
// preparing a snapshot the server can start from, or for cron-driven
// refreshes outside the server process.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"cardmirror/internal/catalog"
	"cardmirror/internal/ingest"
	"cardmirror/internal/upstream"
	"cardmirror/pkg/database"
	"cardmirror/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	dsn := flag.String("db", "cards.db", "sqlite database path")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run deadline")
	flag.Parse()

	cfg := utils.LoadServerConfig()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.Config{DSN: *dsn})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	tracker := ingest.NewTracker(nil)
	repo := catalog.NewRepo(db)
	source := upstream.NewClient(cfg.UpstreamURL, cfg.FetchTimeout)
	pipeline := ingest.NewPipeline(repo, source, tracker, cfg.ChunkSize)

	if err := pipeline.Run(ctx); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("count failed: %v", err)
	}
	log.Printf("database populated at %s (%d cards)", *dsn, count)
}
