// Package cmd implements the tact command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/tact/internal/config"
	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/paths"
	"github.com/zjrosen/tact/internal/store"
)

var version = "dev"

// rootOptions carries global flags and the configuration resolved from them.
type rootOptions struct {
	cfgFile string
	apiURL  string
	debug   bool

	v       *viper.Viper
	cfg     config.Config
	cfgPath string

	closeLog func()

	storeOpts []store.Option
}

// newRootCmd builds the command tree. storeOpts are applied to every store
// a command opens.
func newRootCmd(storeOpts ...store.Option) *cobra.Command {
	o := &rootOptions{storeOpts: storeOpts}

	root := &cobra.Command{
		Use:   "tact",
		Short: "A personal time tracker",
		Long: `tact tracks named timers and, when one is stopped, submits the elapsed
time and description to a time-entry API as a single line such as
"1h30m wrote the report".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			o.shutdown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.cfgFile, "config", "c", "",
		"config file (default: ~/.config/tact/config.yaml)")
	flags.StringVar(&o.apiURL, "api-url", "",
		"time-entry API base URL (overrides config)")
	flags.BoolVar(&o.debug, "debug", false,
		"write a debug log to <data dir>/debug.log")

	root.AddCommand(
		newStartCmd(o),
		newPauseCmd(o),
		newResumeCmd(o),
		newStopCmd(o),
		newRemoveCmd(o),
		newListCmd(o),
		newTodayCmd(o),
		newConfigCmd(o),
		newWatchCmd(o),
	)
	return root
}

// init loads configuration with flag > env > file > default precedence and
// turns on logging when asked.
func (o *rootOptions) init(cmd *cobra.Command) error {
	o.v = viper.New()
	flags := cmd.Root().PersistentFlags()
	if err := o.v.BindPFlag("api_url", flags.Lookup("api-url")); err != nil {
		return err
	}
	if err := o.v.BindPFlag("debug", flags.Lookup("debug")); err != nil {
		return err
	}

	cfg, path, err := config.Load(o.v, o.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	o.cfg = cfg
	o.cfgPath = path

	if cfg.Debug {
		closeLog, err := log.Init(paths.LogFile(cfg.DataDir()))
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		o.closeLog = closeLog
		log.Info(log.CatConfig, "tact starting", "version", version, "command", cmd.CommandPath())
	}
	return nil
}

func (o *rootOptions) shutdown() {
	if o.closeLog != nil {
		o.closeLog()
		o.closeLog = nil
	}
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error: "+err.Error())
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
}
