package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	storeDir   string
	cfg        *internal.Config
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ideasurge",
	Short: "Generate, pick and recycle SaaS ideas from LLM research streams",
	Long: `A CLI for turning streamed LLM research into a shortlist of SaaS ideas.

A search streams the model's research and reasoning, extracts ideas as they
are written, and keeps the latest batch in a local session. Picked ideas are
kept durably; the ones you pass on are recycled into a library you can browse
later.

Features:
  • Live idea extraction from JSON or markdown replies
  • Deep dives on a single idea (market, MVP, risks, pricing or a custom prompt)
  • A durable library of recycled ideas in SQLite or PostgreSQL
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)
  • An HTTP API for pick, recycle and library access

Quick Start:
  ideasurge search "tools for independent florists"
  ideasurge pick 2
  ideasurge deepen 2 --focus pricing
  ideasurge library`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		loaded, err := internal.LoadConfig(configPath, map[string]string{"store_dir": storeDir})
		if err != nil {
			return err
		}
		cfg = loaded
		internal.LogDebug("Store directory: %s", cfg.StoreDir)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "Directory holding the session store and SQLite database")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
