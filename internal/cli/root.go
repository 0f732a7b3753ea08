package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"techdocs/config"
	"techdocs/internal/adapter/provider"
	"techdocs/internal/adapter/store"
	"techdocs/internal/port"
)

// timeRounding trims duration output in command summaries.
const timeRounding = 10 * time.Millisecond

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "techdocs",
	Short: "Tech Docs Explorer - index technical documentation and query it with RAG",
	Long: `techdocs indexes technical documentation (web pages, PDF files) into a
local vector store and answers questions about it using retrieval-augmented
generation with optional HyDE query transformation and LLM reranking.

Example usage:
  techdocs index https://go.dev/doc/effective_go --stack go
  techdocs index "manuals/**/*.pdf" --stack internal
  techdocs query -q "how do goroutines communicate" --hyde
  techdocs docs list`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, wdErr := os.Getwd()
			if wdErr != nil {
				return fmt.Errorf("failed to get working directory: %w", wdErr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./techdocs.yaml)")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

func newManager() *store.Manager {
	return store.NewManager(cfg.Storage.PersistDir)
}

func newProvider() (port.Provider, error) {
	return provider.New(cfg)
}
