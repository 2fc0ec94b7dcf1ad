package pipeline

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/source"
)

// ReadOptions bounds a ReadEntries pass.
type ReadOptions struct {
	MaxAgeDays int       // 0 = unbounded
	Now        time.Time // reference for the age cutoff; zero means time.Now()
	Progress   ProgressFunc
}

// ReadStats counts what a ReadEntries pass saw and skipped.
type ReadStats struct {
	Files        int
	ParsedFiles  int
	FileErrors   int // files that could not be opened or read to the end
	PartialFiles int // files with a read error after some lines; their records are kept
	Lines        int
	Oversized    int
	Records      int
	Duplicates   int
	Expired      int
	Projects     int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// ReadEntries discovers and parses every session file under root and returns
// the deduplicated usage records sorted by timestamp, oldest first.
//
// Files are parsed by a bounded worker pool but merged in scanner order
// (most recently modified first), so the first occurrence of a unique id in
// that order is the one kept. Records with an empty id are always kept.
func ReadEntries(root string, registry source.Registry, opts ReadOptions) ([]model.UsageRecord, ReadStats) {
	files := source.Scan(root, registry)

	stats := ReadStats{
		Files:    len(files),
		Projects: source.CountProjects(files),
	}
	if len(files) == 0 {
		return nil, stats
	}

	results := parseAll(files, opts.Progress)

	var cutoff time.Time
	if opts.MaxAgeDays > 0 {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		cutoff = now.Add(-time.Duration(opts.MaxAgeDays) * 24 * time.Hour)
	}

	entries := mergeResults(results, cutoff, &stats)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	stats.Records = len(entries)

	return entries, stats
}

// mergeResults folds per-file results in order, dropping expired and
// duplicate records. A file that failed partway keeps the records read
// before the error.
func mergeResults(results []source.ParseResult, cutoff time.Time, stats *ReadStats) []model.UsageRecord {
	seen := make(map[string]struct{})
	var entries []model.UsageRecord

	for _, pr := range results {
		if pr.Err != nil {
			stats.FileErrors++
			if pr.Lines == 0 && len(pr.Records) == 0 {
				continue
			}
			stats.PartialFiles++
		}
		stats.ParsedFiles++
		stats.Lines += pr.Lines
		stats.Oversized += pr.Oversized

		for _, rec := range pr.Records {
			if !cutoff.IsZero() && rec.Timestamp.Before(cutoff) {
				stats.Expired++
				continue
			}
			if rec.UniqueID != "" {
				if _, dup := seen[rec.UniqueID]; dup {
					stats.Duplicates++
					continue
				}
				seen[rec.UniqueID] = struct{}{}
			}
			entries = append(entries, rec)
		}
	}
	return entries
}

// parseAll parses files in parallel. results[i] belongs to files[i].
func parseAll(files []source.DiscoveredFile, progressFn ProgressFunc) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
