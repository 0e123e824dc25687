// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the thesis-engine CLI.
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/internal/secrets"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds one plain-text file per credential.
const secretsDir = ".secrets/"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	// cfg is the resolved configuration for the running command.
	cfg types.Config

	log logrus.FieldLogger = logging.Discard()
)

// rootCmd is the base command for the thesis-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "thesis-engine",
	Short: "Literature search and AI-assisted thesis drafting",
	Long: `thesis-engine searches bibliographic databases, ingests reference PDFs into
a per-user corpus, and drafts thesis chapters with a text-generation model
grounded on that corpus.

Work is kept in a per-user session (--user). Typical flow: search, ingest,
titles, formulas, outline, write, export. The serve command exposes the same
operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win.
		_ = godotenv.Load()

		s, err := secrets.Load(secretsDir, nil)
		if err != nil {
			return err
		}
		loadedSecrets = s

		c, err := loadConfig(viper.GetViper(), s)
		if err != nil {
			return err
		}
		cfg = c

		logger, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		log = logger

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.WithField("secrets", keys).Debug("loaded secrets")
		}
		if used := viper.ConfigFileUsed(); used != "" {
			log.WithField("config", used).Debug("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./thesis-engine.yaml or ~/.config/thesis-engine/config.yaml)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "session owner (default: $THESIS_ENGINE_USER or \"default\")")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("thesis-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "thesis-engine"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("THESIS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
