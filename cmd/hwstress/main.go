package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"codeberg.org/varmo/hwstress/internal/bench"
	"codeberg.org/varmo/hwstress/internal/config"
	"codeberg.org/varmo/hwstress/internal/errors"
	"codeberg.org/varmo/hwstress/internal/heatmap"
	"codeberg.org/varmo/hwstress/internal/logger"
	"codeberg.org/varmo/hwstress/internal/monitor"
	"codeberg.org/varmo/hwstress/internal/pid"
	"codeberg.org/varmo/hwstress/internal/report"
	"codeberg.org/varmo/hwstress/internal/sampler"
	"codeberg.org/varmo/hwstress/internal/sysinfo"
	"codeberg.org/varmo/hwstress/internal/telemetry"
)

const usage = `hwstress - hardware telemetry and stress-testing toolkit

Usage:
  hwstress monitor   [--interval SECONDS] [--duration SECONDS] [--export FILE]
  hwstress heatmap   [--interval SECONDS] [--duration SECONDS]
  hwstress benchmark [--preset short|extended] [--duration SECONDS]
                     [--cpu-only] [--gpu-only]
                     [--cpu-ceiling PCT] [--memory-ceiling PCT] [--persist]

Global flags (every subcommand): --debug, --verbose
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	var runErr error
	switch os.Args[1] {
	case "monitor":
		runErr = runMonitor(ctx, cfg, os.Args[2:])
	case "heatmap":
		runErr = runHeatmap(ctx, cfg, os.Args[2:])
	case "benchmark":
		runErr = runBenchmark(ctx, cfg, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if runErr != nil {
		if errors.HasCode(runErr, errors.ErrInvalidDuration) ||
			errors.HasCode(runErr, errors.ErrInvalidInterval) ||
			errors.HasCode(runErr, errors.ErrInvalidCeiling) ||
			errors.HasCode(runErr, errors.ErrInvalidConfig) {
			fmt.Fprintf(os.Stderr, "usage error: %v\n", runErr)
			os.Exit(2)
		}

		logger.Error().Err(runErr).Msg("command failed")
		os.Exit(1)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("received termination signal")
	cancel()
}

// newFlagSet creates a subcommand flag set with the global flags bound.
func newFlagSet(name string, cfg *config.Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")

	return fs
}

func initLogging(cfg *config.Config) {
	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func runMonitor(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("monitor", cfg)
	interval := fs.Float64P("interval", "i", cfg.Interval, "sampling interval in seconds")
	duration := fs.Float64P("duration", "d", 0, "run duration in seconds (0 = until interrupted)")
	export := fs.StringP("export", "e", "", "export session to CSV file after completion")
	if err := fs.Parse(args); err != nil {
		return err
	}
	initLogging(cfg)

	loads := sampler.NewProcFS("")
	resolver := telemetry.DefaultResolver(loads)
	host := sysinfo.NewProvider("")
	net := sampler.NewNetReader("")

	var exporter *report.CSVExporter
	if *export != "" {
		exporter = report.NewCSVExporter(*export)
	}

	engine := monitor.New(loads, resolver, host, net, newMonitorRenderer(os.Stdout), exporter)

	return engine.Run(ctx, secondsToDuration(*interval), secondsToDuration(*duration))
}

func runHeatmap(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("heatmap", cfg)
	interval := fs.Float64P("interval", "i", cfg.Interval, "sampling interval in seconds")
	duration := fs.Float64P("duration", "d", 0, "run duration in seconds (0 = until interrupted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	initLogging(cfg)

	loads := sampler.NewProcFS("")
	resolver := telemetry.DefaultResolver(loads)
	engine := heatmap.New(resolver, loads, newHeatmapRenderer(os.Stdout))

	ticks, err := engine.Run(ctx, secondsToDuration(*interval), secondsToDuration(*duration))
	if err != nil {
		return err
	}

	logger.Info().Int("ticks", ticks).Msg("heatmap session finished")

	return nil
}

func runBenchmark(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("benchmark", cfg)
	preset := fs.StringP("preset", "p", "short", "benchmark preset: short or extended")
	duration := fs.Float64P("duration", "d", 0, "override run duration in seconds")
	cpuOnly := fs.Bool("cpu-only", false, "run only CPU and memory phases")
	gpuOnly := fs.Bool("gpu-only", false, "run only the GPU phase")
	cpuCeiling := fs.Float64("cpu-ceiling", cfg.CPUCeiling, "abort when system CPU exceeds this percentage")
	memCeiling := fs.Float64("memory-ceiling", cfg.MemoryCeiling, "abort when system memory exceeds this percentage")
	persist := fs.Bool("persist", cfg.Persist, "store the finished run in the run database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	initLogging(cfg)

	runCfg, err := buildRunConfig(*preset, *duration, *cpuOnly, *gpuOnly, *cpuCeiling, *memCeiling)
	if err != nil {
		return err
	}

	if err := pid.Write(); err != nil {
		return err
	}
	defer pid.Remove()

	loads := sampler.NewProcFS("")
	resolver := telemetry.DefaultResolver(loads)
	host := sysinfo.NewProvider("")

	supervisor := bench.NewSupervisor(loads, resolver, host)
	result, err := supervisor.Execute(ctx, runCfg)
	if err != nil {
		return err
	}

	renderRunReport(os.Stdout, result)

	if *persist {
		if err := storeRun(ctx, cfg, result); err != nil {
			// Persistence failure must not discard a run the user just saw.
			logger.Error().Err(err).Msg("failed to store run")
		}
	}

	return nil
}

func buildRunConfig(preset string, durationSeconds float64, cpuOnly, gpuOnly bool, cpuCeiling, memCeiling float64) (bench.RunConfig, error) {
	errFactory := errors.New()

	var runCfg bench.RunConfig
	switch preset {
	case "short":
		runCfg = bench.ShortPreset()
	case "extended":
		runCfg = bench.ExtendedPreset()
	default:
		return bench.RunConfig{}, errFactory.WithMessage(errors.ErrInvalidConfig,
			fmt.Sprintf("unknown preset %q (want short or extended)", preset))
	}

	if durationSeconds != 0 {
		runCfg.Duration = secondsToDuration(durationSeconds)
	}

	if cpuOnly && gpuOnly {
		return bench.RunConfig{}, errFactory.WithMessage(errors.ErrInvalidConfig,
			"--cpu-only and --gpu-only are mutually exclusive")
	}
	if cpuOnly {
		runCfg.IncludeGPU = false
	}
	if gpuOnly {
		runCfg.IncludeCPU = false
		runCfg.IncludeMemory = false
	}

	runCfg.CPUCeilingPercent = cpuCeiling
	runCfg.MemoryCeilingPercent = memCeiling

	return runCfg, runCfg.Validate()
}

func storeRun(ctx context.Context, cfg *config.Config, result *bench.RunReport) error {
	repoCfg := report.DefaultConfig()
	if cfg.Database != "" {
		repoCfg.DBPath = cfg.Database
	}

	repo, err := report.NewRepository(repoCfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	return repo.Store(ctx, result)
}
