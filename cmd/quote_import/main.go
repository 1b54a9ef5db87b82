package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rl1809/workshop-parts/config"
	"github.com/rl1809/workshop-parts/internal/adapter/storage"
	"github.com/rl1809/workshop-parts/internal/core/catalog"
	"github.com/rl1809/workshop-parts/internal/core/service"
	"github.com/rl1809/workshop-parts/internal/logger"
)

func main() {
	file := flag.String("file", "", "path to an EzyParts quote (.json or .xlsx)")
	dryRun := flag.Bool("dry-run", false, "map the quote and print the items without saving them")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: quote_import -file quote.json|quote.xlsx [-dry-run]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger, err := logger.New(logger.Config{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	quote, err := readQuote(*file)
	if err != nil {
		appLogger.Fatal("failed to read quote", zap.String("file", *file), zap.Error(err))
	}

	mapper := catalog.NewMapper(catalog.Config{
		CodePrefix:      cfg.Catalog.CodePrefix,
		DefaultCategory: cfg.Catalog.DefaultCategory,
		DefaultMinStock: cfg.Catalog.DefaultMinStock,
		SupplierID:      cfg.Catalog.SupplierID,
		SupplierName:    cfg.Catalog.SupplierName,
	})

	if *dryRun {
		printJSON(mapper.MapQuoteToInventoryItems(quote))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlx.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		appLogger.Fatal("failed to connect mysql", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		appLogger.Fatal("failed to ping mysql", zap.Error(err))
	}

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if cfg.MySQL.Migrate {
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			appLogger.Fatal("failed to migrate schema", zap.Error(err))
		}
	}

	svc := service.NewInventoryService(mysqlAdapter, mapper, appLogger)
	items, err := svc.ImportQuote(ctx, quote)
	if err != nil {
		appLogger.Error("import incomplete", zap.Int("imported", len(items)), zap.Error(err))
		printJSON(items)
		os.Exit(1)
	}

	printJSON(items)
}

func readQuote(path string) (*catalog.Quote, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return catalog.ReadQuoteSheet(f)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var quote catalog.Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return &quote, nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("failed to encode output: %v", err)
	}
}
