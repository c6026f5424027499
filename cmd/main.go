package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"seeding-auction/internal/adapter/csvio"
	"seeding-auction/internal/adapter/postgres"
	"seeding-auction/internal/adapter/solver"
	"seeding-auction/internal/adapter/usecase"
	"seeding-auction/internal/config"
	"seeding-auction/internal/config/configs"
	"seeding-auction/internal/core/port"
	"seeding-auction/internal/db"
)

// main loads configuration, reads the advertiser tables, runs the requested
// number of auction trials and appends the results to the configured sink.
// An interrupt cancels the run between trials.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		exitCode = 0
		return
	}
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	var logger *slog.Logger
	{
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Input.Generate > 0 {
		synth := csvio.DefaultSynthetic(cfg.Input.Generate, cfg.Input.GenerateSeed)
		if err = csvio.Generate(cfg.Input.Path, cfg.Input.Spread, cfg.Input.Advertisers, synth); err != nil {
			logger.Error("generate input", slog.Any("error", err))
			return
		}
		logger.Info("synthetic input written",
			slog.String("path", cfg.Input.Path),
			slog.Int("advertisers", synth.Advertisers),
			slog.Int64("seed", synth.Seed))
	}

	loader := csvio.NewLoader(cfg.Input.Path, cfg.Input.Spread, cfg.Input.Advertisers, cfg.Input.CountSeeder)
	pool, err := loader.Load(ctx)
	if err != nil {
		logger.Error("load input", slog.Any("error", err))
		return
	}

	var results port.ResultWriter
	switch cfg.Output.SinkName() {
	case configs.SinkPostgres:
		if cfg.Psql.RunMigrations {
			from, err := db.Migrate(cfg.Psql.Addr.String())
			if err != nil {
				logger.Error("migration error", slog.Any("error", err))
				return
			}
			logger.Info("migrations applied successfully", slog.Uint64("from_version", uint64(from)))
		}
		pg, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			return
		}
		defer pg.Close()
		results = postgres.NewResultRepository(pg)
	default:
		results = csvio.NewFileWriter(cfg.Output.File)
	}

	opts := solver.DefaultOptions()
	opts.MaxNodes = cfg.Solver.MaxNodes
	opts.TimeLimit = cfg.Solver.TimeLimit

	svc := usecase.NewAuctionUseCase(
		solver.NewBranchAndBound(opts),
		results,
		usecase.Options{
			Weighted:             cfg.Auction.Weighted,
			Extended:             cfg.Auction.Extended,
			NonTruthful:          cfg.Auction.NonTruthful,
			Tolerance:            cfg.Auction.Tolerance,
			DegradeOnSolverError: cfg.Auction.DegradeOnSolverError,
		},
		logger,
	)

	summary, err := svc.Run(ctx, pool, port.RunReq{
		AdvertiserSource: cfg.Input.Advertisers,
		SpreadSource:     cfg.Input.Spread,
		Iterations:       cfg.Auction.Iterations,
		GroupSeed:        *cfg.Auction.GroupSeed,
		AllocationSeed:   *cfg.Auction.AllocationSeed,
	})
	if err != nil {
		logger.Error("auction run failed", slog.Any("error", err))
		if ctx.Err() != nil {
			exitCode = 130
		}
		return
	}

	logger.Info("run complete",
		slog.String("run_id", summary.RunID.String()),
		slog.Int("trials", summary.Trials),
		slog.Int("degraded", summary.Degraded),
		slog.Float64("revenue_mean", summary.MeanRevenue),
		slog.Float64("revenue_stddev", summary.StdDevRevenue),
		slog.Float64("revenue_min", summary.MinRevenue),
		slog.Float64("revenue_max", summary.MaxRevenue),
		slog.Float64("sw_mean", summary.MeanSocialWelfare),
		slog.Float64("sw_stddev", summary.StdDevSocialWelfare),
		slog.Duration("runtime_mean", summary.MeanElapsed),
		slog.String("sink", cfg.Output.SinkName()),
	)
	exitCode = 0
}
