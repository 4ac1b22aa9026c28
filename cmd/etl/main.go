package main

import (
	"context"
	"log"
	"time"

	"commerce-etl/config"
	"commerce-etl/internal/broker"
	"commerce-etl/internal/dataset"
	"commerce-etl/internal/export"
	"commerce-etl/internal/fetch"
	"commerce-etl/internal/store"
	"commerce-etl/internal/synth"
	"commerce-etl/internal/transform"
	"commerce-etl/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.Load("commerce-etl")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	runID := uuid.New().String()
	logger.Info("Starting ETL run", zap.String("run_id", runID))

	if cfg.Observ.JaegerEndpoint != "" {
		tp, err := util.InitTracer("commerce-etl", cfg.Observ.JaegerEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	ctx := context.Background()
	start := time.Now()

	bundle, err := acquire(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to acquire dataset: %v", err)
	}

	result, err := transform.Run(ctx, bundle)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	tables := result.Tables()

	if cfg.Output.Dir != "" {
		if err := export.NewCSVWriter(cfg.Output.Dir).WriteAll(tables); err != nil {
			log.Fatalf("CSV export failed: %v", err)
		}
	}

	if cfg.Output.Workbook != "" {
		if err := export.WriteWorkbook(cfg.Output.Workbook, tables); err != nil {
			log.Fatalf("Workbook export failed: %v", err)
		}
	}

	if cfg.Database.URL != "" {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to warehouse: %v", err)
		}
		if err := db.Publish(ctx, tables); err != nil {
			db.Close()
			log.Fatalf("Warehouse publish failed: %v", err)
		}
		db.Close()
		logger.Info("Derived tables published to warehouse")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher := broker.NewEventPublisher(producer)

		rowCounts := make(map[string]int, len(tables))
		for name, t := range tables {
			rowCounts[name] = t.Len()
		}
		if err := publisher.PublishTablesRefreshed(ctx, runID, rowCounts, time.Since(start)); err != nil {
			logger.Error("Failed to publish refresh event", zap.Error(err))
		}
		producer.Close()
	}

	if cfg.Observ.PushgatewayAddr != "" {
		if err := util.PushMetrics(cfg.Observ.PushgatewayAddr, cfg.Observ.PushJob); err != nil {
			logger.Error("Failed to push metrics", zap.Error(err))
		}
	}

	logger.Info("ETL run completed",
		zap.String("run_id", runID),
		zap.Duration("elapsed", time.Since(start)))
}

// acquire returns the raw table bundle from the configured source.
func acquire(ctx context.Context, cfg *config.Config) (*dataset.Bundle, error) {
	if cfg.Data.Source == "hub" {
		return fetch.New(cfg.Data.RawDataPath, cfg.Data.DatasetURL).Fetch(ctx)
	}
	return synth.Generate(synthOptions(cfg.Synthetic)), nil
}

func synthOptions(sc config.SynthConfig) synth.Options {
	opts := synth.Default()
	if sc.Seed != 0 {
		opts.Seed = sc.Seed
	}
	if sc.Customers > 0 {
		opts.Customers = sc.Customers
	}
	if sc.Sellers > 0 {
		opts.Sellers = sc.Sellers
	}
	if sc.Products > 0 {
		opts.Products = sc.Products
	}
	if sc.Orders > 0 {
		opts.Orders = sc.Orders
	}
	if t, err := time.Parse("2006-01-02", sc.StartDate); err == nil {
		opts.Start = t
	}
	if t, err := time.Parse("2006-01-02", sc.EndDate); err == nil {
		opts.End = t
	}
	return opts
}
