package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain/importer"
)

func newImportCommand() *cobra.Command {
	var companyID, userID string
	var upsert bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an XML export into a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := parseID("company", companyID)
			if err != nil {
				return err
			}
			user := id.New()
			if userID != "" {
				if user, err = parseID("user", userID); err != nil {
					return err
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer f.Close()

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			summary, err := s.rt.ImportXMLBatch(s.ctx, company, f,
				importer.Options{UpsertSalesPurchase: upsert}, entity.SystemActor(user))
			if err != nil {
				return err
			}
			s.log.Infow("import finished", "file", args[0], "failures", len(summary.Failures))
			return printJSON(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "target company id (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&userID, "user", "", "user id recorded as creator and verifier")
	cmd.Flags().BoolVar(&upsert, "upsert", false, "replace existing sales and purchase vouchers by number")

	return cmd
}
