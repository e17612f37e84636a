// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cas2smiles CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/cas2smiles/internal/logging"
	"github.com/pdiddy/cas2smiles/internal/pubchem"
	"github.com/pdiddy/cas2smiles/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd converts a compound list; subcommands report on past runs.
var rootCmd = &cobra.Command{
	Use:   "cas2smiles <input_file> [-xls]",
	Short: "Convert CAS numbers in a file to SMILES strings using PubChem",
	Long: `cas2smiles reads a two-column list (compound name, CAS number) without a
header, looks up each CAS number on PubChem, and writes
<input>_SMILES.csv with the columns name, CAS, SMILES.

Text input may be comma- or tab-separated; the first line decides which.
Spreadsheet input (-xls) reads columns A and B of the first sheet.

Example file format:
    o-Tolylboronic acid,16419-60-6
    3-Hydroxyphenylboronic acid,87199-18-6

Example spreadsheet layout (columns A and B, no header):
    o-Tolylboronic acid          |   16419-60-6
    3-Hydroxyphenylboronic acid  |   87199-18-6

Example usage:
    cas2smiles input.csv
    cas2smiles input.xlsx -xls`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
		return nil
	},
	RunE: runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./cas2smiles.yaml or ~/.config/cas2smiles/cas2smiles.yaml)")
	pf.String("history-db", "", "record runs in this SQLite database")
	pf.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	pf.String("log-format", "text", "diagnostic log format: text or json")

	f := rootCmd.Flags()
	f.Bool("xls", false, "input file is an Excel workbook (.xlsx)")
	f.Duration("timeout", 0, "HTTP request timeout (0 means no limit)")
	f.Duration("delay", pubchem.DefaultDelay, "delay between consecutive lookups")
	f.String("base-url", pubchem.DefaultBaseURL, "PubChem PUG REST base URL")

	bindFlag("history.db", pf, "history-db")
	bindFlag("log.level", pf, "log-level")
	bindFlag("log.format", pf, "log-format")
	bindFlag("lookup.timeout", f, "timeout")
	bindFlag("lookup.delay", f, "delay")
	bindFlag("lookup.base_url", f, "base-url")

	viper.SetDefault("lookup.delay", pubchem.DefaultDelay)
	viper.SetDefault("lookup.base_url", pubchem.DefaultBaseURL)
	viper.SetDefault("lookup.user_agent", pubchem.DefaultUserAgent)
	viper.SetDefault("history.db", "")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")
}

// bindFlag binds a config key to a flag so an explicitly set flag overrides
// the environment and config file.
func bindFlag(key string, flags *pflag.FlagSet, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cas2smiles")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cas2smiles"))
		}
	}

	viper.SetEnvPrefix("CAS2SMILES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves flags, environment, config file, and defaults.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Lookup = pubchem.WithDefaults(cfg.Lookup)
	return cfg, nil
}

// normalizeArgs rewrites the single-dash -xls spelling to --xls so pflag
// does not read it as the shorthand cluster -x -l -s.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-xls" {
			a = "--xls"
		}
		out[i] = a
	}
	return out
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
