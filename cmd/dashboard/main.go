package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/dashboard"
	"github.com/ridersklan/preorderflow/internal/logger"
)

// settings are read from DASHBOARD_* variables and overridden by flags.
type settings struct {
	APIURL   string        `env:"DASHBOARD_API_URL" envDefault:"http://localhost:8080"`
	Token    string        `env:"DASHBOARD_TOKEN"`
	Cache    string        `env:"DASHBOARD_CACHE"`
	Timeout  time.Duration `env:"DASHBOARD_TIMEOUT" envDefault:"8s"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"warn"`
}

func defaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "preorderflow", "dashboard.json")
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg    settings
	log    *zap.Logger
	client *dashboard.Client
	dash   *dashboard.Dashboard
}

func (a *app) open() error {
	if a.log == nil {
		log, err := logger.New(a.cfg.LogLevel, "development")
		if err != nil {
			return err
		}
		a.log = log
	}
	if a.cfg.Cache == "" {
		a.cfg.Cache = defaultCachePath()
	}
	local, err := dashboard.OpenLocalStore(a.cfg.Cache)
	if err != nil {
		return err
	}
	a.client = dashboard.NewClient(a.cfg.APIURL, a.cfg.Token, a.cfg.Timeout)
	a.dash = dashboard.New(a.client, local, a.log.Named("dashboard"))
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Admin dashboard for cycling kit preorders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfg.APIURL, "api-url", a.cfg.APIURL, "base URL of the order API")
	f.StringVar(&a.cfg.Token, "token", a.cfg.Token, "bearer token (an admin_ token is generated when empty)")
	f.StringVar(&a.cfg.Cache, "cache", a.cfg.Cache, "path of the local order cache")
	f.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "per request timeout")

	root.AddCommand(
		newOrdersCmd(a),
		newSummaryCmd(a),
		newWatchCmd(a),
		newSyncCmd(a),
		newClearDeletedCmd(a),
		newSetStatusCmd(a),
		newDeleteCmd(a),
		newAddLocalCmd(a),
		newTokenCmd(a),
	)
	return root
}

func main() {
	var cfg settings
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "parse env:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg}
	err := newRootCmd(a).ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
