package rssfeeds

import (
	"context"
	"log"
	"sync"

	"articlevault/pipeline"
	"articlevault/types"
)

const WorkerCount = 5

// Ingester is the pipeline surface the feed worker needs.
type Ingester interface {
	Ingest(ctx context.Context, sub types.Submission) (*pipeline.Result, error)
}

// Summary counts outcomes of a feed ingestion run.
type Summary struct {
	Persisted  int `json:"persisted"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// IngestAll pushes submissions through the pipeline using a worker pool.
// Individual failures are logged and counted, never fatal: a feed item that
// cannot be extracted should not stop the rest of the feed.
func IngestAll(ctx context.Context, ing Ingester, subs []types.Submission, workers int) Summary {
	if workers <= 0 {
		workers = WorkerCount
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		summary Summary
	)
	subChan := make(chan types.Submission, len(subs))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for sub := range subChan {
				result, err := ing.Ingest(ctx, sub)

				mu.Lock()
				switch {
				case err != nil:
					summary.Failed++
				case result.Status == pipeline.StatusDuplicate:
					summary.Duplicates++
				default:
					summary.Persisted++
				}
				mu.Unlock()

				if err != nil {
					log.Printf("[worker %d] failed to ingest %s: %v", workerID, sub.URL, err)
				}
			}
		}(i)
	}

	for _, sub := range subs {
		subChan <- sub
	}
	close(subChan)
	wg.Wait()

	return summary
}
