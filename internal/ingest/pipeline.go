package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"cardmirror/internal/catalog"
	"cardmirror/internal/upstream"
	"cardmirror/pkg/database"
	"cardmirror/pkg/models"
)

const defaultChunkSize = 100

// Pipeline populates the card store from the upstream catalog: one fetch,
// then chunked upserts with progress published through the tracker.
type Pipeline struct {
	Repo      *catalog.Repo
	Source    *upstream.Client
	Tracker   *Tracker
	ChunkSize int
}

func NewPipeline(repo *catalog.Repo, source *upstream.Client, tracker *Tracker, chunkSize int) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Pipeline{
		Repo:      repo,
		Source:    source,
		Tracker:   tracker,
		ChunkSize: chunkSize,
	}
}

// Run performs the initial ingestion. It is single-flight: the first caller
// does the work, concurrent and repeat callers return nil immediately. A
// failed run is terminal until re-triggered; there is no automatic retry.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	if !p.Tracker.BeginRun(runID) {
		return nil
	}

	log.Printf("[ingest] run %s starting", runID)
	stored, err := p.populate(ctx)
	if err != nil {
		log.Printf("[ingest] run %s failed: %v", runID, err)
		p.Tracker.Fail(err)
		return err
	}

	p.Tracker.Complete(stored)
	log.Printf("[ingest] run %s complete, %d cards stored", runID, stored)
	return nil
}

// Refresh re-fetches the catalog and upserts it over a ready store. Reads
// keep being served the whole time; only the first run gates them.
func (p *Pipeline) Refresh(ctx context.Context) error {
	runID := uuid.NewString()
	if !p.Tracker.BeginRefresh(runID) {
		return nil
	}

	log.Printf("[ingest] refresh %s starting", runID)
	stored, err := p.populate(ctx)
	p.Tracker.EndRefresh(stored, err)
	if err != nil {
		log.Printf("[ingest] refresh %s failed: %v", runID, err)
		return err
	}
	log.Printf("[ingest] refresh %s complete, %d cards stored", runID, stored)
	return nil
}

func (p *Pipeline) populate(ctx context.Context) (int, error) {
	if err := database.Migrate(p.Repo.DB); err != nil {
		return 0, fmt.Errorf("ensure schema: %w", err)
	}

	p.Tracker.Fetching()
	records, err := p.Source.FetchAll(ctx)
	if err != nil {
		return 0, err
	}

	p.Tracker.SetTotal(len(records))
	log.Printf("[ingest] received %d cards from upstream", len(records))

	stored := 0
	skipped := 0
	for start := 0; start < len(records); start += p.ChunkSize {
		end := start + p.ChunkSize
		if end > len(records) {
			end = len(records)
		}

		chunk := make([]models.Card, 0, end-start)
		for _, rec := range records[start:end] {
			card, err := rec.Project()
			if err != nil {
				// a malformed record is skipped, not fatal for the run
				log.Printf("[ingest] skipping record: %v", err)
				skipped++
				continue
			}
			chunk = append(chunk, card)
		}

		if err := p.Repo.UpsertChunk(ctx, chunk); err != nil {
			return stored, err
		}
		stored += len(chunk)
		p.Tracker.Advance(end, skipped)
	}

	return stored, nil
}
