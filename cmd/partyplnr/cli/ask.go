package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"partyplnr/internal/chat"
	"partyplnr/internal/common/config"
	"partyplnr/internal/common/logger"
)

func newAskCmd() *cobra.Command {
	var (
		sessionID   string
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the engine locally; with no message, read one message per line from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if catalogPath != "" {
				cfg.Catalog.Source = config.CatalogSourceCSV
				cfg.Catalog.Path = catalogPath
			}
			cfg.Session.Backend = config.BackendMemory
			cfg.Cache.Backend = config.BackendMemory

			log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, "stderr")
			defer logger.Unwrap(log).Sync()

			a, err := buildApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			answer := func(message string) error {
				resp, err := a.chat.Respond(cmd.Context(), chat.Request{Message: message, SessionID: sessionID})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, resp.Text)
				return err
			}

			if len(args) > 0 {
				return answer(strings.Join(args, " "))
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if strings.TrimSpace(scanner.Text()) == "" {
					continue
				}
				if err := answer(scanner.Text()); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "cli", "Session id used for location memory")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "CSV catalog to load instead of the configured source")
	return cmd
}
