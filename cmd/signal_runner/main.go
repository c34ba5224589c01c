package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptoSignalEngine/config"
	"cryptoSignalEngine/internal/adapters/binanceclient"
	"cryptoSignalEngine/internal/adapters/logger"
	"cryptoSignalEngine/internal/adapters/sqlite"
	"cryptoSignalEngine/internal/domain"
	"cryptoSignalEngine/internal/metrics"
	"cryptoSignalEngine/internal/ports"
	"cryptoSignalEngine/internal/replay"
	"cryptoSignalEngine/internal/risk"
	sigengine "cryptoSignalEngine/internal/signal"
	"cryptoSignalEngine/internal/tuning"
)

func main() {
	live := flag.Bool("live", false, "evaluate the live candle stream instead of replaying the cache")
	tune := flag.Bool("tune", false, "sweep RSI thresholds over the cached history and print the best settings")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := newLogger(cfg)
	ctx := context.Background()

	engine, err := sigengine.New(cfg.Engine, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize signal engine: %v", err)
	}

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				appLogger.Error(ctx, err, "metrics server stopped")
			}
		}()
	}

	switch {
	case *live:
		runLive(ctx, cfg, engine, appLogger)
	case *tune:
		runTune(ctx, cfg, engine, appLogger)
	default:
		runReplay(ctx, cfg, engine, appLogger)
	}
}

func loadCachedSeries(ctx context.Context, cfg *config.Config, appLogger ports.Logger) (primary, higher []*domain.Candle) {
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open candle cache: %v", err)
	}
	defer repo.Close()

	count, err := repo.CountBySymbol(ctx, cfg.Symbol, cfg.PrimaryInterval)
	if err != nil {
		log.Fatalf("FATAL: Failed to inspect candle cache: %v", err)
	}
	if count == 0 {
		log.Fatalf("FATAL: No cached %s %s candles; run fetch_candles first", cfg.Symbol, cfg.PrimaryInterval)
	}

	primary, err = repo.FindLatest(ctx, cfg.Symbol, cfg.PrimaryInterval, count)
	if err != nil {
		log.Fatalf("FATAL: Failed to load primary candles: %v", err)
	}
	higher, err = repo.FindLatest(ctx, cfg.Symbol, cfg.HigherInterval, count)
	if err != nil {
		log.Fatalf("FATAL: Failed to load higher-timeframe candles: %v", err)
	}
	return primary, higher
}

func runReplay(ctx context.Context, cfg *config.Config, engine *sigengine.Engine, appLogger ports.Logger) {
	primary, higher := loadCachedSeries(ctx, cfg, appLogger)

	result, err := replay.Run(ctx, engine, primary, higher, replay.Config{
		Symbol:             cfg.Symbol,
		InitialFunds:       cfg.ReplayInitialFunds,
		ROITable:           risk.DefaultROITable(),
		TrailingActivation: cfg.TrailingActivation,
		TrailingDistance:   cfg.TrailingDistance,
	}, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Replay failed: %v", err)
	}

	appLogger.Info(ctx, "Replay finished", map[string]interface{}{
		"trades":       result.TotalTrades,
		"winRate":      result.WinRate,
		"profitFactor": result.ProfitFactor,
		"maxDrawdown":  result.MaxDrawdown,
		"finalBalance": result.FinalBalance,
		"roi":          result.ReturnOnInvestment,
	})
}

func runTune(ctx context.Context, cfg *config.Config, engine *sigengine.Engine, appLogger ports.Logger) {
	primary, higher := loadCachedSeries(ctx, cfg, appLogger)

	tuner, err := tuning.NewTuner(tuning.Config{
		Base: engine.Config(),
		Ranges: []tuning.ParameterRange{
			{Name: tuning.ParamRSIOversold, Min: 20, Max: 40, Step: 5},
			{Name: tuning.ParamRSIOverbought, Min: 60, Max: 80, Step: 5},
		},
		Replay: replay.Config{
			Symbol:             cfg.Symbol,
			InitialFunds:       cfg.ReplayInitialFunds,
			ROITable:           risk.DefaultROITable(),
			TrailingActivation: cfg.TrailingActivation,
			TrailingDistance:   cfg.TrailingDistance,
		},
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to build tuner: %v", err)
	}

	results, err := tuner.Optimize(ctx, primary, higher, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Tuning failed: %v", err)
	}

	top := results
	if len(top) > 5 {
		top = top[:5]
	}
	for i, r := range top {
		appLogger.Info(ctx, "Tuning result", map[string]interface{}{
			"rank":       i + 1,
			"parameters": r.Parameters,
			"score":      r.Score,
			"roi":        r.Replay.ReturnOnInvestment,
			"trades":     r.Replay.TotalTrades,
		})
	}
}

func runLive(ctx context.Context, cfg *config.Config, engine *sigengine.Engine, appLogger ports.Logger) {
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

	// Seed the rolling windows with recent history.
	maxWindow := engine.RequiredDataPoints() * 4
	window, err := client.GetCandles(ctx, cfg.Symbol, cfg.PrimaryInterval, maxWindow)
	if err != nil {
		log.Fatalf("FATAL: Failed to seed primary window: %v", err)
	}
	window = domain.TrimForming(window, time.Now())
	higher, err := client.GetCandles(ctx, cfg.Symbol, cfg.HigherInterval, engine.HigherTFRequiredDataPoints()*4)
	if err != nil {
		log.Fatalf("FATAL: Failed to seed higher-timeframe window: %v", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	candleCh := make(chan *domain.Candle, 16)
	doneCh, stopCh, err := client.StreamCandles(streamCtx, cfg.Symbol, cfg.PrimaryInterval,
		func(c *domain.Candle) {
			if c.IsFinal {
				candleCh <- c
			}
		},
		func(err error) {
			appLogger.Warn(streamCtx, "candle stream error", map[string]interface{}{"error": err.Error()})
		})
	if err != nil {
		log.Fatalf("FATAL: Failed to start candle stream: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	appLogger.Info(ctx, "Live evaluation started", map[string]interface{}{
		"symbol": cfg.Symbol, "interval": cfg.PrimaryInterval, "higher": cfg.HigherInterval,
	})

	for {
		select {
		case <-sigCh:
			appLogger.Info(ctx, "Shutting down")
			close(stopCh)
			<-doneCh
			return
		case <-doneCh:
			appLogger.Warn(ctx, "Candle stream ended")
			return
		case candle := <-candleCh:
			window = domain.AppendToWindow(window, candle, maxWindow)
			// Refresh the higher timeframe; it moves slowly, so the latest
			// closed candles are enough.
			refreshed, err := client.GetCandles(ctx, cfg.Symbol, cfg.HigherInterval, engine.HigherTFRequiredDataPoints()*4)
			if err != nil {
				appLogger.Warn(ctx, "higher-timeframe refresh failed, reusing previous window",
					map[string]interface{}{"error": err.Error()})
			} else {
				higher = refreshed
			}

			sig := engine.Evaluate(ctx, window, higher)
			metrics.EvaluationsTotal.Inc()
			metrics.SignalsEmitted.WithLabelValues(string(sig.Direction)).Inc()
			fields := map[string]interface{}{
				"direction": sig.Direction,
				"close":     candle.Close,
				"rsi":       sig.Snapshot.RSI,
				"htfRSI":    sig.Snapshot.HigherTFRSI,
				"atrFrac":   sig.Snapshot.ATRFraction,
			}
			if sig.IsDirectional() {
				fields["leverage"] = sig.Leverage
				fields["stoploss"] = sig.Stoploss
				appLogger.Info(ctx, "Signal", fields)
			} else {
				appLogger.Debug(ctx, "Signal", fields)
			}
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
