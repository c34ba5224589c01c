package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"cryptoSignalEngine/config"
	"cryptoSignalEngine/internal/adapters/binanceclient"
	"cryptoSignalEngine/internal/adapters/logger"
	"cryptoSignalEngine/internal/adapters/sqlite"
	"cryptoSignalEngine/internal/ports"
	"cryptoSignalEngine/internal/utils"
)

func main() {
	days := flag.Int("days", 60, "number of days of history to fetch")
	writeCSV := flag.Bool("csv", false, "additionally write fetched candles to CSV files under data/")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := newLogger(cfg)
	ctx := context.Background()

	client, err := binanceclient.New(binanceclient.Config{
		APIKey:               cfg.APIKey,
		SecretKey:            cfg.SecretKey,
		UseTestnet:           cfg.IsTestnet,
		Logger:               appLogger,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize candle cache: %v", err)
	}
	defer repo.Close()

	end := time.Now()
	start := end.AddDate(0, 0, -*days)

	for _, interval := range []string{cfg.PrimaryInterval, cfg.HigherInterval} {
		appLogger.Info(ctx, "Fetching candles", map[string]interface{}{
			"symbol": cfg.Symbol, "interval": interval,
			"start": start.Format(time.RFC3339), "end": end.Format(time.RFC3339),
		})
		candles, err := client.GetCandlesRange(ctx, cfg.Symbol, interval, start, end)
		if err != nil {
			log.Fatalf("FATAL: Error fetching %s candles: %v", interval, err)
		}

		inserted, err := repo.StoreCandles(ctx, candles)
		if err != nil {
			log.Fatalf("FATAL: Error caching %s candles: %v", interval, err)
		}
		appLogger.Info(ctx, "Cached candles", map[string]interface{}{
			"interval": interval, "fetched": len(candles), "inserted": inserted,
		})

		if *writeCSV {
			filename := fmt.Sprintf("data/%s_%s_%s_to_%s.csv",
				cfg.Symbol, interval, start.Format("20060102"), end.Format("20060102"))
			if err := utils.WriteCandlesToCSV(candles, filename); err != nil {
				log.Fatalf("FATAL: Error writing CSV: %v", err)
			}
			appLogger.Info(ctx, "Wrote CSV", map[string]interface{}{"filename": filename})
		}
	}
}

func newLogger(cfg *config.Config) ports.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		l, err := logger.NewZapLogger(cfg.LogLevel)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize zap logger: %v", err)
		}
		return l
	}
	return logger.NewStdLogger(cfg.LogLevel)
}
