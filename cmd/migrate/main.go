package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/azhar1598/xplore-be/internal/config"
	"github.com/azhar1598/xplore-be/internal/service/database"
	"go.uber.org/zap"
)

// CLI flags
var (
	dryRun  = flag.Bool("dry-run", false, "Print the schema without touching the database")
	dsn     = flag.String("dsn", "", "PostgreSQL connection string (defaults to DATABASE_URL / POSTGRES_*)")
	timeout = flag.Duration("timeout", 30*time.Second, "Migration timeout")
)

func main() {
	flag.Parse()

	log.Println("===========================")
	log.Println("business_insights schema")
	log.Println("===========================")

	if *dryRun {
		log.Println("[DRY RUN MODE] No database changes will be made")
		for i, stmt := range database.Schema {
			log.Printf("-- statement %d\n%s;", i+1, stmt)
		}
		return
	}

	target := *dsn
	if target == "" {
		pgCfg, err := config.LoadPostgres()
		if err != nil {
			log.Fatalf("Failed to load database config: %v", err)
		}
		target = pgCfg.DSN()
	}

	pg, err := database.NewPostgresService(target, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := database.ApplySchema(ctx, pg.GetDB()); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Printf("✓ Applied %d schema statements", len(database.Schema))
}
