package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genc-murat/crystalstats/internal/config"
	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/internal/core/ports"
	"github.com/genc-murat/crystalstats/internal/logger"
	"github.com/genc-murat/crystalstats/internal/report"
	"github.com/genc-murat/crystalstats/internal/store"
	"github.com/genc-murat/crystalstats/internal/sysinfo"
)

var version = "0.1.0"

type options struct {
	requires   []string
	configFile string

	addr            string
	db              int
	password        string
	storeType       string
	seed            string
	avgKeySize      int64
	availableMemory int64
	summary         bool
	logLevel        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(models.Default, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "crystalstats:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(registry *models.Registry, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "crystalstats",
		Short: "Report how the keyspace of a store is used, model by model",
		Long: `crystalstats counts the instances and keys of every registered model,
shows each model's share of the keyspace and estimates how many keys the
host's memory can hold.

Example:
  crystalstats -r models.yaml --addr 127.0.0.1:6379 --db 0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, registry, opts, stdout)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.Flags()
	flags.StringArrayVarP(&opts.requires, "require", "r", nil, "Load model definitions from a YAML or JSON file (repeatable)")
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVar(&opts.addr, "addr", "", "Store address (host:port)")
	flags.IntVar(&opts.db, "db", 0, "Logical database to report on")
	flags.StringVar(&opts.password, "password", "", "Password sent with AUTH")
	flags.StringVar(&opts.storeType, "store", "", "Store backend: redis or memory")
	flags.StringVar(&opts.seed, "seed", "", "Append-only file replayed into the memory store")
	flags.Int64Var(&opts.avgKeySize, "avg-key-size", report.DefaultAverageKeySize, "Average key size in bytes")
	flags.Int64Var(&opts.availableMemory, "available-memory", 0, "Memory in bytes to plan for instead of the host total")
	flags.BoolVar(&opts.summary, "summary", false, "Append sum, mean and median of counts across models")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "crystalstats v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	return root
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Store.Addr = opts.addr
	}
	if flags.Changed("db") {
		cfg.Store.DB = opts.db
	}
	if flags.Changed("password") {
		cfg.Store.Password = opts.password
	}
	if flags.Changed("store") {
		cfg.Store.Type = opts.storeType
	}
	if flags.Changed("seed") {
		cfg.Store.Seed = opts.seed
	}
	if flags.Changed("avg-key-size") {
		cfg.Report.AverageKeySize = opts.avgKeySize
	}
	if flags.Changed("available-memory") {
		cfg.Report.AvailableMemory = opts.availableMemory
	}
	if flags.Changed("summary") {
		cfg.Report.Summary = opts.summary
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, registry *models.Registry, opts *options, stdout io.Writer) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Format,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	for _, path := range opts.requires {
		loaded, err := models.LoadFile(registry, path)
		if err != nil {
			return err
		}
		log.Debug("loaded models", zap.String("file", path), zap.Int("count", len(loaded)))
	}
	for _, name := range cfg.Report.Models {
		if _, err := registry.Register(name); err != nil {
			return err
		}
	}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var memory ports.MemoryInfo = sysinfo.VirtualMemory{}
	if cfg.Report.AvailableMemory > 0 {
		memory = sysinfo.Fixed(cfg.Report.AvailableMemory)
	}

	builder, err := report.NewBuilder(registry, st, memory,
		report.WithAverageKeySize(cfg.Report.AverageKeySize),
		report.WithSummary(cfg.Report.Summary),
		report.WithLogger(log.Named("report")))
	if err != nil {
		return err
	}

	_, err = builder.WriteReport(ctx, stdout)
	return err
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (ports.Store, func(), error) {
	switch cfg.Store.Type {
	case config.StoreMemory:
		if cfg.Store.Seed == "" {
			return store.NewMemoryStore(), func() {}, nil
		}
		mem, err := store.LoadAOF(cfg.Store.Seed)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("seeded memory store", zap.String("seed", cfg.Store.Seed), zap.Int("keys", mem.DBSize()))
		return mem, func() {}, nil
	default:
		client, err := store.Dial(ctx, store.Options{
			Addr:         cfg.Store.Addr,
			Password:     cfg.Store.Password,
			DB:           cfg.Store.DB,
			DialTimeout:  cfg.Store.DialTimeout,
			ReadTimeout:  cfg.Store.ReadTimeout,
			WriteTimeout: cfg.Store.WriteTimeout,
			ScanCount:    cfg.Store.ScanCount,
			Logger:       log.Named("store"),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if err := client.Close(); err != nil {
				log.Warn("closing store connection", zap.Error(err))
			}
		}, nil
	}
}
