package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/archive"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/database"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/env"
)

func main() {
	fromFlag := flag.String("from", "", "first day to export (YYYY-MM-DD, inclusive)")
	toFlag := flag.String("to", "", "day to stop at (YYYY-MM-DD, exclusive)")
	overwrite := flag.Bool("overwrite", false, "replace an existing archive object")
	batchSize := flag.Int("batch", 500, "rows read per query")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" {
		fmt.Println("Usage: ledger-archive -from YYYY-MM-DD -to YYYY-MM-DD [-overwrite] [-batch N]")
		os.Exit(1)
	}
	from, err := archive.ParseDay(*fromFlag)
	if err != nil {
		log.Fatalf("Invalid -from: %v", err)
	}
	to, err := archive.ParseDay(*toFlag)
	if err != nil {
		log.Fatalf("Invalid -to: %v", err)
	}

	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	cfg, err := archive.LoadConfig()
	if err != nil {
		log.Fatalf("Archive configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := archive.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("S3: %v", err)
	}

	exporter := archive.NewExporter(repository.GetGlobalFactory().GetPaymentOrderRepository(), client, cfg)
	exporter.BatchSize = *batchSize
	exporter.Overwrite = *overwrite

	res, err := exporter.Export(ctx, from, to)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Archived %d rows to s3://%s/%s (%d bytes)", res.Rows, cfg.BucketName, res.ObjectKey, res.Bytes)
}
