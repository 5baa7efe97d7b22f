package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/pinelocal"
	"github.com/hupe1980/pinelocal/internal/config"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	dataDir    string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "pinelocal",
		Short: "Local Pinecone-compatible vector database",
		Long: `pinelocal - a single-node vector database serving a subset of the
Pinecone REST API from a directory of JSON documents.

Examples:
  # Run the API on port 3000
  PINECONE_API_KEY=secret pinelocal serve

  # List indexes of a data directory while the server is stopped
  pinelocal index list --data-dir ./data

  # Back up an index
  pinelocal index export docs -o docs.snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default is $"+config.EnvConfigFile+")")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default ./data)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newIndexCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig resolves defaults, the config file, the environment and the
// flags that were set on cmd, in that order.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (config.Config, error) {
	path := flags.configFile
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}

	cfg, err := config.Load(path, nil)
	if err != nil {
		return config.Config{}, err
	}

	pf := cmd.Flags()
	if pf.Changed("data-dir") {
		cfg.DataDir = flags.dataDir
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if pf.Changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}
	return cfg, nil
}

// openDB opens the configured data directory for an offline command.
func openDB(cmd *cobra.Command, flags *globalFlags) (*pinelocal.DB, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(false); err != nil {
		return nil, err
	}

	db, err := pinelocal.Open(cfg.DataDir, cfg.Options(cfg.Logger(cmd.ErrOrStderr()))...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DataDir, err)
	}
	return db, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
