// Package main is the ledgerbook operator CLI: schema migrations, XML
// imports, balances, statements and API tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ledgerbook/internal/config"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/engine"
	"ledgerbook/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate a ledgerbook database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCommand(),
		newImportCommand(),
		newBalanceCommand(),
		newReportCommand(),
		newTokenCommand(),
	)
	return root
}

// session is an opened engine plus a logger-carrying context.
type session struct {
	ctx context.Context
	rt  *engine.Runtime
	log *logger.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	ctx := logger.WithLogger(cmd.Context(), log)
	rt, err := engine.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &session{ctx: ctx, rt: rt, log: log}, nil
}

func (s *session) close() {
	s.rt.Close()
	_ = s.log.Sync()
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.rt.Migrate(s.ctx); err != nil {
				return err
			}
			s.log.Info("schema is up to date")
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(flag, value string) (id.ID, error) {
	v, err := id.Parse(value)
	if err != nil {
		return id.ID{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return v, nil
}

// parseDate reads an optional YYYY-MM-DD flag value.
func parseDate(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected YYYY-MM-DD: %w", flag, err)
	}
	return &t, nil
}
