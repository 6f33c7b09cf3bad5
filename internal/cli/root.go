// Package cli implements the redactchat command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/redactchat/internal/config"
	"github.com/raphaelgruber/redactchat/internal/llm"
	"github.com/raphaelgruber/redactchat/internal/pangea"
	"github.com/raphaelgruber/redactchat/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	previousConversation string

	// Built once in PersistentPreRunE and passed down explicitly; the
	// subcommands never construct clients themselves.
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	pipe       *pipeline.Pipeline
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "redactchat",
	Short: "Chat with an LLM behind a redaction and URL-reputation screen",
	Long: `Redactchat sits between you and a chat-completion endpoint.

User input is scrubbed of sensitive fields before it leaves the machine,
model replies are re-screened on the way back, and any URL the model
mentions is checked against a domain-reputation service before display.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip client construction for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)

		model, err := llm.NewModel(cfg.OpenAIAPIKey, cfg.Model)
		if err != nil {
			return fmt.Errorf("init completion client: %w", err)
		}
		pg := pangea.NewClient(cfg.PangeaToken, cfg.PangeaDomain)

		pipe = pipeline.New(pg, pg, model, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&previousConversation, "previous-conversation", "",
		"file with a previous conversation, allowing you to continue it")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}

// resolveRules picks the effective rule set for a redaction flag: an
// explicitly set flag wins, then the config file, then the flag default.
func resolveRules(cmd *cobra.Command, flagName string, flagVal, cfgVal []string) []string {
	if cmd.Flags().Changed(flagName) {
		return flagVal
	}
	if len(cfgVal) > 0 {
		return cfgVal
	}
	return flagVal
}
