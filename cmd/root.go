package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/s0up4200/paperbox/config"
	"github.com/s0up4200/paperbox/dropbox"
	"github.com/s0up4200/paperbox/paper"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger

	// appFs is where documents are read from and written to
	appFs afero.Fs = afero.NewOsFs()

	// registry collects client metrics for --metrics
	registry    = prometheus.NewRegistry()
	showMetrics bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "paperbox",
	Short: "Manage Dropbox Paper docs from the command line",
	Long: `paperbox lists, exports, imports and shares Dropbox Paper docs.

Credentials come from the config file, a .env file or PAPERBOX_* environment
variables. Run "paperbox auth login" to obtain an access token.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: dumpMetrics,
}

// SetVersion records build information shown by --version.
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print request metrics to stderr when done")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(sharingCmd)
	rootCmd.AddCommand(usersCmd)
}

// initializeApp loads the configuration and sets up logging. Clients are
// created by the commands that need them since not all need a token.
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func clientOptions() []dropbox.Option {
	return []dropbox.Option{
		dropbox.WithBaseURL(cfg.Dropbox.BaseURL),
		dropbox.WithTimeout(cfg.Dropbox.Timeout),
		dropbox.WithUserAgent("paperbox/" + version),
		dropbox.WithLogger(logger),
		dropbox.WithMetrics(registry),
	}
}

// newDropboxClient creates a client authenticated with the configured user token.
func newDropboxClient() (*dropbox.Client, error) {
	token, err := cfg.RequireAccessToken()
	if err != nil {
		return nil, err
	}
	return dropbox.New(token, clientOptions()...)
}

func newPaperClient() (*paper.Client, error) {
	dbx, err := newDropboxClient()
	if err != nil {
		return nil, err
	}
	return paper.New(dbx, paper.WithConcurrency(cfg.Paper.Concurrency)), nil
}

func dumpMetrics(cmd *cobra.Command, args []string) error {
	if !showMetrics {
		return nil
	}
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s{%s} %g\n", family.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
