// Package cmd implements the igmigrate command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/igtools/igmigrate/pkg/logging"
	"github.com/igtools/igmigrate/pkg/migrate"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "igmigrate",
	Short: "Reconcile record-keeping exports into import files",
	Long: `igmigrate joins records drawn from independently-maintained source exports
into a single, internally-consistent import file for the target
record-keeping system.

Identifiers are normalized to one canonical form before joining, sources are
outer-joined deterministically, and the merged result is validated: every
data-quality problem found is reported, and only structural defects (rows
that cannot be joined at all) abort a run.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	// Runs are short, but Ctrl-C mid-write should still stop cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.igmigrate.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	rootCmd.PersistentFlags().String("home-domain", "", "home tenant domain for external identities")
	rootCmd.PersistentFlags().String("local-domain", "", "domain appended to local account identifiers")
	rootCmd.PersistentFlags().Bool("strict-dates", true, "treat unparseable non-blank dates as structural errors and require ISO dates in validation")

	for _, flag := range []string{"verbose", "quiet", "home-domain", "local-domain", "strict-dates"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".igmigrate")
	}

	// Load .env files before Viper env binding.
	loadEnvFiles()

	viper.SetEnvPrefix("igmigrate")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if quiet || viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	config := &logging.Config{
		Level:     level.String(),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Getenv("LOG_OUTPUT"),
		AddCaller: level <= zerolog.DebugLevel,
	}
	if config.Format == "" {
		config.Format = "auto"
	}
	if config.Output == "" {
		config.Output = "stderr"
	}

	logging.Configure(config)
}

// loadEnvFiles loads environment variables from .env files. godotenv never
// overrides a variable that is already set, so .env.local loads first and
// wins over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}

// pipelineConfig resolves the run configuration from flags, env, and config
// file. Precedence for conflicting flat-merge facets is configurable only
// via the config file; the default order is training then agreement.
func pipelineConfig() migrate.Config {
	cfg := migrate.DefaultConfig()

	if v := viper.GetString("home-domain"); v != "" {
		cfg.Identity.HomeTenantDomain = v
	}
	if v := viper.GetString("local-domain"); v != "" {
		cfg.Identity.LocalDomain = v
	}
	cfg.StrictDates = viper.GetBool("strict-dates")

	if order := viper.GetStringSlice("precedence"); len(order) > 0 {
		cfg.Precedence = cfg.Precedence[:0]
		for _, sn := range order {
			cfg.Precedence = append(cfg.Precedence, migrate.SourceName(sn))
		}
	}
	return cfg
}

// openOutput opens the destination for an import file; "-" means stdout.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
