// Package cli holds the partyplnr commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"partyplnr/internal/common/config"
)

var configPath string

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "partyplnr",
		Short: "Party vendor matching chatbot",
		Long: `PartyPlnr answers free-text requests such as "need a balloon arch in Pearland"
with a short list of matching vendors from its catalog, or a follow-up question.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config YAML file (default: configs/config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newAskCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}
