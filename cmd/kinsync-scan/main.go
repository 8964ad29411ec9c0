// Command kinsync-scan runs a one-shot duplicate scan over the roster and
// prints the flagged pairs. With -apply, pairs recommended for merge are
// folded together (the earlier-created record wins). With -blocking, the
// pgvector name index narrows candidate pairs before scoring instead of
// comparing every pair; this needs the postgres backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/kinsync/kinsync/internal/config"
	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/internal/storage"
	"github.com/kinsync/kinsync/internal/storage/postgres"
	"github.com/kinsync/kinsync/internal/storage/sqlite"
	"github.com/kinsync/kinsync/pkg/types"
)

// neighborLimit bounds how many nearest neighbors are considered per record
// when blocking is enabled.
const neighborLimit = 10

func main() {
	kind := flag.String("kind", "all", "What to scan: persons, tasks, or all")
	apply := flag.Bool("apply", false, "Apply merges for pairs recommended as merge")
	blocking := flag.Bool("blocking", false, "Narrow candidate pairs with the pgvector name index (postgres only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	var index storage.BlockingIndex
	if *blocking {
		pg, ok := store.(*postgres.RosterStore)
		if !ok {
			log.Fatal("-blocking requires the postgres storage engine")
		}
		if !pg.PgvectorAvailable() {
			log.Fatal("-blocking requires the pgvector extension")
		}
		index = postgres.NewBlockingIndex(pg.GetDB())
	}

	ctx := context.Background()
	detector := match.NewDetector(cfg.Matching)

	if *kind == "persons" || *kind == "all" {
		if err := scanPersons(ctx, store, detector, index, *apply); err != nil {
			log.Fatalf("Person scan failed: %v", err)
		}
	}
	if *kind == "tasks" || *kind == "all" {
		if err := scanTasks(ctx, store, detector, index, *apply); err != nil {
			log.Fatalf("Task scan failed: %v", err)
		}
	}
}

func scanPersons(ctx context.Context, store storage.RosterStore, detector *match.Detector, index storage.BlockingIndex, apply bool) error {
	pool, err := store.AllPersons(ctx)
	if err != nil {
		return err
	}

	var pairs []types.DuplicatePair[*types.Person]
	if index != nil {
		pairs, err = blockedPersonScan(ctx, detector, index, pool)
		if err != nil {
			return err
		}
	} else {
		pairs = detector.FindDuplicatePersons(pool)
	}
	fmt.Printf("Scanned %d persons: %d duplicate pair(s)\n", len(pool), len(pairs))

	gone := make(map[string]bool)
	for _, pair := range pairs {
		printPair(pair.A.ID+" "+pair.A.Name, pair.B.ID+" "+pair.B.Name, pair.Similarity, pair.Recommendation, pair.Evidence)

		if apply && pair.Recommendation == types.RecommendMerge {
			// With three or more copies of one record, later pairs can name a
			// record an earlier merge already deleted.
			if gone[pair.A.ID] || gone[pair.B.ID] {
				fmt.Printf("  skipped %s <> %s: record already merged away\n", pair.A.ID, pair.B.ID)
				continue
			}
			primary, duplicate := orderPersons(pair.A, pair.B)
			// Re-read the primary so fields filled by earlier merges survive.
			current, err := store.GetPerson(ctx, primary.ID)
			if err != nil {
				return fmt.Errorf("load merge primary %s: %w", primary.ID, err)
			}
			merged, _ := match.MergePersons(current, duplicate)
			if err := store.ApplyPersonMerge(ctx, merged, duplicate.ID); err != nil {
				return fmt.Errorf("merge %s into %s: %w", duplicate.ID, primary.ID, err)
			}
			gone[duplicate.ID] = true
			fmt.Printf("  merged %s into %s\n", duplicate.ID, primary.ID)
		}
	}
	return nil
}

func scanTasks(ctx context.Context, store storage.RosterStore, detector *match.Detector, index storage.BlockingIndex, apply bool) error {
	pool, err := store.AllTasks(ctx)
	if err != nil {
		return err
	}

	var pairs []types.DuplicatePair[*types.Task]
	if index != nil {
		pairs, err = blockedTaskScan(ctx, detector, index, pool)
		if err != nil {
			return err
		}
	} else {
		pairs = detector.FindDuplicateTasks(pool)
	}
	fmt.Printf("Scanned %d tasks: %d duplicate pair(s)\n", len(pool), len(pairs))

	gone := make(map[string]bool)
	for _, pair := range pairs {
		printPair(pair.A.ID+" "+pair.A.Title, pair.B.ID+" "+pair.B.Title, pair.Similarity, pair.Recommendation, pair.Evidence)

		if apply && pair.Recommendation == types.RecommendMerge {
			if gone[pair.A.ID] || gone[pair.B.ID] {
				fmt.Printf("  skipped %s <> %s: record already merged away\n", pair.A.ID, pair.B.ID)
				continue
			}
			primary, duplicate := orderTasks(pair.A, pair.B)
			current, err := store.GetTask(ctx, primary.ID)
			if err != nil {
				return fmt.Errorf("load merge primary %s: %w", primary.ID, err)
			}
			merged, _ := match.MergeTasks(current, duplicate)
			if err := store.ApplyTaskMerge(ctx, merged, duplicate.ID); err != nil {
				return fmt.Errorf("merge %s into %s: %w", duplicate.ID, primary.ID, err)
			}
			gone[duplicate.ID] = true
			fmt.Printf("  merged %s into %s\n", duplicate.ID, primary.ID)
		}
	}
	return nil
}

// blockedPersonScan refreshes the name index, then scores only the pairs that
// land near each other in embedding space. Each candidate pair is scored with
// the same detector as the full scan, so blocking changes recall, never
// scoring.
func blockedPersonScan(ctx context.Context, detector *match.Detector, index storage.BlockingIndex, pool []*types.Person) ([]types.DuplicatePair[*types.Person], error) {
	byID := make(map[string]*types.Person, len(pool))
	for _, p := range pool {
		byID[p.ID] = p
		if err := index.StoreNameVector(ctx, postgres.KindPerson, p.ID, match.NameVector(p.Name)); err != nil {
			return nil, err
		}
	}

	var pairs []types.DuplicatePair[*types.Person]
	seen := make(map[string]bool)
	for _, p := range pool {
		neighbors, err := index.NearestNeighbors(ctx, postgres.KindPerson, match.NameVector(p.Name), neighborLimit)
		if err != nil {
			return nil, err
		}
		for _, id := range neighbors {
			other, ok := byID[id]
			if !ok || id == p.ID {
				continue
			}
			key := pairKey(p.ID, id)
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, detector.FindDuplicatePersons([]*types.Person{p, other})...)
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Similarity > pairs[j].Similarity })
	return pairs, nil
}

func blockedTaskScan(ctx context.Context, detector *match.Detector, index storage.BlockingIndex, pool []*types.Task) ([]types.DuplicatePair[*types.Task], error) {
	byID := make(map[string]*types.Task, len(pool))
	for _, t := range pool {
		byID[t.ID] = t
		if err := index.StoreNameVector(ctx, postgres.KindTask, t.ID, match.NameVector(t.Title)); err != nil {
			return nil, err
		}
	}

	var pairs []types.DuplicatePair[*types.Task]
	seen := make(map[string]bool)
	for _, t := range pool {
		neighbors, err := index.NearestNeighbors(ctx, postgres.KindTask, match.NameVector(t.Title), neighborLimit)
		if err != nil {
			return nil, err
		}
		for _, id := range neighbors {
			other, ok := byID[id]
			if !ok || id == t.ID {
				continue
			}
			key := pairKey(t.ID, id)
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, detector.FindDuplicateTasks([]*types.Task{t, other})...)
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Similarity > pairs[j].Similarity })
	return pairs, nil
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func printPair(a, b string, similarity float64, rec types.Recommendation, evidence []string) {
	fmt.Printf("- [%s] %.2f  %s <> %s\n", rec, similarity, a, b)
	for _, e := range evidence {
		fmt.Printf("    %s\n", e)
	}
}

// orderPersons picks the older record as the merge primary.
func orderPersons(a, b *types.Person) (primary, duplicate *types.Person) {
	if b.CreatedAt.Before(a.CreatedAt) {
		return b, a
	}
	return a, b
}

// orderTasks picks the older record as the merge primary.
func orderTasks(a, b *types.Task) (primary, duplicate *types.Task) {
	if b.CreatedAt.Before(a.CreatedAt) {
		return b, a
	}
	return a, b
}

func openStore(cfg *config.Config) (storage.RosterStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		return postgres.NewRosterStore(cfg.Storage.PostgresURL)
	default:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, err
		}
		return sqlite.NewRosterStore(cfg.Storage.DataPath + "/kinsync.db")
	}
}
