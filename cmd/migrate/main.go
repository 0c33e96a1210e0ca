package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samirrijal/akureroute/internal/adapters/gazetteer"
	"github.com/samirrijal/akureroute/internal/adapters/postgres"
	"github.com/samirrijal/akureroute/internal/pkg/config"
	"github.com/samirrijal/akureroute/internal/pkg/logging"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed>")
	}

	cfg, err := config.Load("akureroute-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		err = runMigrations(ctx, db)
	case "down":
		err = execFile(ctx, db, filepath.Join(migrationsDir, "down.sql"))
	case "seed":
		err = seed(ctx, db)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runMigrations applies every numbered migration in name order.
func runMigrations(ctx context.Context, db *postgres.DB) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "[0-9]*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %s", migrationsDir)
	}
	sort.Strings(files)

	for _, f := range files {
		if err := execFile(ctx, db, f); err != nil {
			return err
		}
	}

	log.Println("all migrations applied")
	return nil
}

func execFile(ctx context.Context, db *postgres.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	fmt.Printf("OK  %s\n", path)
	return nil
}

// seed copies the bundled gazetteer into the places table.
func seed(ctx context.Context, db *postgres.DB) error {
	places, err := gazetteer.BundledPlaces()
	if err != nil {
		return err
	}
	if err := postgres.NewPlaceRepo(db).UpsertBatch(ctx, places); err != nil {
		return fmt.Errorf("seed places: %w", err)
	}
	fmt.Printf("OK  seeded %d places\n", len(places))
	return nil
}
