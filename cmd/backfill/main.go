// cmd/backfill recomputes index records from observations already in SQLite,
// without touching the data providers or Redis. Useful after changing the
// index size or repairing stored observations.
//
// Usage:
//
//	go run ./cmd/backfill --db=data/index.db --from=2025-01-01 --to=2025-06-30 --k=10
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"index-systemv1/internal/index"
	sqlitestore "index-systemv1/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	dbPath := flag.String("db", "data/index.db", "Path to SQLite database")
	from := flag.String("from", "", "First date to recompute, YYYY-MM-DD (empty = earliest)")
	to := flag.String("to", "", "Last date to recompute, YYYY-MM-DD (empty = latest)")
	k := flag.Int("k", 10, "Number of index constituents")
	flag.Parse()

	store, err := sqlitestore.New(sqlitestore.Config{Path: *dbPath})
	if err != nil {
		log.Fatalf("[backfill] sqlite open failed: %v", err)
	}
	defer store.Close()

	dates, err := store.ObservationDates(*from, *to)
	if err != nil {
		log.Fatalf("[backfill] list dates failed: %v", err)
	}
	if len(dates) == 0 {
		log.Fatal("[backfill] no observation dates in range; run the engine first")
	}
	log.Printf("[backfill] recomputing %d dates (%s .. %s), K=%d", len(dates), dates[0], dates[len(dates)-1], *k)

	engine := index.NewEngine(store, store, index.Config{ConstituentCount: *k})

	start := time.Now()
	records, err := engine.ComputeRange(dates)
	if err != nil {
		log.Fatalf("[backfill] compute failed: %v", err)
	}
	elapsed := time.Since(start)

	changes := index.ChangeDates(records)

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        BACKFILL COMPLETE             ║")
	fmt.Println("╠══════════════════════════════════════╣")
	fmt.Printf("║  Dates scanned:     %-16d ║\n", len(dates))
	fmt.Printf("║  Records written:   %-16d ║\n", len(records))
	fmt.Printf("║  Composition moves: %-16d ║\n", len(changes))
	fmt.Printf("║  Elapsed:           %-16v ║\n", elapsed.Round(time.Millisecond))
	fmt.Println("╚══════════════════════════════════════╝")

	if len(records) > 0 {
		last := records[len(records)-1]
		fmt.Printf("latest: %s value=%.4f constituents=%d\n", last.Date, last.IndexValue, len(last.Composition))
	}
}
