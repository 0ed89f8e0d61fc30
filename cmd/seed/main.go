package main

import (
	"context"
	"log"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"quote_backend/internal/feature/candlesticks/adapters"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/db"
	"quote_backend/internal/platform/logger"
)

func main() {
	file := flag.String("file", "fixtures/candlesticks.csv", "CSV fixture to import")
	cfgPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	logger.Init("seed", cfg.Log.Level, cfg.Log.Format, os.Stderr)

	// seedは常にスキーマを作成する
	cfg.DB.Migrate = true
	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Println("[ERROR] Failed to close fixture:", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := adapters.NewCandlestickStore(gdb).ImportCSV(ctx, f)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("seed ok: %d rows from %s", n, *file)
}
