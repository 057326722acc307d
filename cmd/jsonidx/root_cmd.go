package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/config"
	dbredis "github.com/kailas-cloud/jsonidx/internal/db/redis"
	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	logpkg "github.com/kailas-cloud/jsonidx/internal/logger"
	"github.com/kailas-cloud/jsonidx/internal/version"
)

// app is the state shared by subcommands once the root pre-run has loaded
// configuration and built the logger.
type app struct {
	env string
	cfg config.Config
	log *zap.Logger
}

// Prepare builds the command tree.
func Prepare() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "jsonidx",
		Short:         "Index, load and query JSON documents in Redis Stack",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "YAML config file; defaults to config/<ENV>.yaml")
	flags.String("log-level", "", "log level. One of debug, info, warn, error")
	flags.String("host", "", "Redis host")
	flags.Int("port", 0, "Redis port")
	flags.String("addr", "", "Redis address as host:port; overrides --host and --port")
	flags.String("user", "", "Redis ACL user name")
	flags.String("password", "", "Redis password")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newIndexCmd(a))
	rootCmd.AddCommand(newSuggestCmd(a))
	return rootCmd
}

// Execute runs the command tree and reports a failure on the console.
func Execute() error {
	err := Prepare().Execute()
	switch {
	case err == nil:
	case isConfigError(err):
		pterm.Error.Println("invalid configuration: " + err.Error())
	default:
		pterm.Error.Println(err.Error())
	}
	return err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func (a *app) prepare(cmd *cobra.Command) error {
	a.env = config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(a.env)
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := applyConnectionFlags(cmd, &cfg); err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.Logging.Level
	}
	logEnv := "cli"
	if cmd.Name() == "serve" {
		logEnv = a.env
	}
	log, err := logpkg.NewLogger(logEnv, level)
	if err != nil {
		return &domain.ConfigurationError{Field: "log-level", Err: err}
	}

	a.cfg = cfg
	a.log = log
	return nil
}

// applyConnectionFlags lets explicitly set flags override the file values
// and validates the result.
func applyConnectionFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("host") {
		cfg.Redis.Host, _ = fs.GetString("host")
	}
	if fs.Changed("port") {
		cfg.Redis.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("addr") {
		addr, _ := fs.GetString("addr")
		host, port, err := config.ParseAddress(addr)
		if err != nil {
			return err
		}
		cfg.Redis.Host, cfg.Redis.Port = host, port
	}
	if fs.Changed("user") {
		cfg.Redis.Username, _ = fs.GetString("user")
	}
	if fs.Changed("password") {
		cfg.Redis.Password, _ = fs.GetString("password")
	}
	return cfg.Validate()
}

// definition is the zoo events schema renamed to the configured index.
func (a *app) definition() schema.Definition {
	def := schema.ZooEvents()
	def.Name = a.cfg.Index.Name
	def.Prefixes = []string{a.cfg.Index.KeyPrefix}
	return def
}

// connect opens the store and waits until it answers PING.
func (a *app) connect(ctx context.Context) (*dbredis.Store, error) {
	store, err := dbredis.NewStore(a.cfg.Redis.Store())
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "redis", Err: err}
	}
	if err := store.WaitForReady(ctx, a.cfg.Redis.ReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("redis at %s not ready: %w", a.cfg.Redis.Store().Addr(), err)
	}
	a.log.Debug("connected to redis", zap.String("addr", a.cfg.Redis.Store().Addr()))
	return store, nil
}

func withSignalWatcher(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return fn(ctx, cmd, args)
	}
}

func isConfigError(err error) bool {
	var cfgErr *domain.ConfigurationError
	return errors.As(err, &cfgErr)
}
