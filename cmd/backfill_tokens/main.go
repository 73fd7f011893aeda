package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/trix-studio/trix/pkg/backfill"
	"github.com/trix-studio/trix/pkg/logging"
	"github.com/trix-studio/trix/pkg/trix/database"
	"github.com/trix-studio/trix/pkg/trix/repositories"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "list designs without an identifier without writing to the database")
	batchSize := flag.Int("batch-size", 100, "number of designs loaded per query")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	_, flush, err := logging.Init()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer flush()

	db, err := database.ConnectFromEnv()
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}

	result, err := backfill.Run(context.Background(), repositories.NewDesignRepository(db), backfill.Options{
		DryRun:    *dryRun,
		BatchSize: *batchSize,
	})
	if err != nil {
		zap.L().Fatal("backfill failed", zap.Error(err))
	}
	if result.Failed > 0 {
		flush()
		os.Exit(1)
	}
}
