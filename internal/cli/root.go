// Package cli implements the brainmap command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/lookup"
	"github.com/ppiankov/brainmap/internal/model"
	"github.com/ppiankov/brainmap/internal/rma"
	"github.com/ppiankov/brainmap/internal/worker"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "0.3.0"

// app is the state shared by every command of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	jsonOut bool
	cfg     *model.Config
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "brainmap",
		Short: "Query the Allen Brain Atlas for brain structures and genes",
		Long: `brainmap looks up brain structures and genes through the Allen Brain
Atlas RESTful Model Access (RMA) API.

Structures and genes are identified by --id, --acronym or --name. When
several are given, id wins over acronym, and acronym over name.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Cleanup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.brainmap/config.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	flags.Bool("log-json", false, "emit logs as JSON")
	flags.String("base-url", "", "RMA API base URL")
	flags.Duration("timeout", 0, "per-request timeout")
	flags.Float64("rate", 0, "requests per second (0 disables limiting)")

	_ = a.v.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("output.json", flags.Lookup("json"))
	_ = a.v.BindPFlag("logging.json", flags.Lookup("log-json"))
	_ = a.v.BindPFlag("api.base_url", flags.Lookup("base-url"))
	_ = a.v.BindPFlag("http.timeout", flags.Lookup("timeout"))
	_ = a.v.BindPFlag("rate_limiting.requests_per_second", flags.Lookup("rate"))

	rootCmd.AddCommand(
		newStructureCmd(a),
		newGeneCmd(a),
		newBatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "brainmap v%s\n", Version)
		},
	}
}

// load resolves configuration: flags, then BRAINMAP_* environment, then
// the config file, then defaults.
func (a *app) load() error {
	v := a.v
	setDefaults(v, model.DefaultConfig())

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".brainmap"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BRAINMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config")
		}
	}

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return errors.Wrap(err, "decode config")
	}
	a.cfg = cfg
	a.jsonOut = cfg.Output.JSON

	if err := logging.Initialize(cfg.Logging.JSON, cfg.Output.Verbose); err != nil {
		return errors.Wrap(err, "initialize logging")
	}
	if used := v.ConfigFileUsed(); used != "" {
		logging.Logger.Debugw("using config file", "path", used)
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.ontologies", cfg.API.Ontologies)
	v.SetDefault("api.product_id", cfg.API.ProductID)
	v.SetDefault("http.timeout", cfg.HTTP.Timeout)
	v.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	v.SetDefault("http.max_body_bytes", cfg.HTTP.MaxBodyBytes)
	v.SetDefault("http.http_proxy", cfg.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", cfg.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", cfg.HTTP.NoProxy)
	v.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.json", cfg.Output.JSON)
	v.SetDefault("logging.json", cfg.Logging.JSON)
}

func (a *app) client() *rma.Client {
	opts := []rma.Option{rma.WithLogger(logging.ComponentLogger("rma"))}
	if a.cfg.RateLimiting.RequestsPerSecond > 0 {
		opts = append(opts, rma.WithLimiter(
			worker.NewLimiter(a.cfg.RateLimiting.RequestsPerSecond, a.cfg.RateLimiting.BurstSize)))
	}
	return rma.NewClient(a.cfg, opts...)
}

func (a *app) structures() *lookup.Structures {
	return lookup.NewStructures(a.client(), a.cfg.API.Ontologies, logging.ComponentLogger("structure"))
}

func (a *app) genes() *lookup.Genes {
	return lookup.NewGenes(a.client(), a.cfg.API.ProductID, logging.ComponentLogger("gene"))
}

// PrintError reports err and any hints attached to it on stderr.
func PrintError(err error) {
	_, _ = fmt.Fprintln(os.Stderr, pterm.Error.Sprint(err.Error()))
	for _, hint := range errors.GetAllHints(err) {
		_, _ = fmt.Fprintln(os.Stderr, pterm.Info.Sprint(hint))
	}
}
