// Package main seeds a sqlite catalog with a small sample library.
//
// Usage:
//
//	go run ./cmd/seed --db ~/Shelfboard/catalog.db
//	go run ./cmd/seed --db ./catalog.db --reset   # Clear existing rows first
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/listenupapp/shelfboard/internal/logger"
	"github.com/listenupapp/shelfboard/internal/store/sqlite"
)

var (
	dbPath = flag.String("db", "", "Path to the sqlite catalog (default: $SOURCE_DSN or ~/Shelfboard/catalog.db)")
	reset  = flag.Bool("reset", false, "Delete existing catalog rows before seeding")
)

func main() {
	flag.Parse()

	path := *dbPath
	if path == "" {
		path = os.Getenv("SOURCE_DSN")
	}
	if path == "" {
		path = os.ExpandEnv("$HOME/Shelfboard/catalog.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create catalog directory: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Environment: "development"})

	fmt.Printf("Opening catalog at: %s\n", path)

	st, err := sqlite.Open(path, log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()

	if *reset {
		if err := st.Reset(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reset catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cleared existing catalog rows")
	}

	sample := sqlite.SampleCatalog()
	if err := st.SeedCatalog(ctx, sample); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d series, %d aliases, %d categories, %d books\n",
		len(sample.Series), len(sample.Aliases), len(sample.Categories), len(sample.Books))
}
