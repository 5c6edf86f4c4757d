package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

func newBalanceCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show ledger or stock item balances",
	}
	cmd.PersistentFlags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&to, "to", "", "period end (YYYY-MM-DD)")

	period := func() (*time.Time, *time.Time, error) {
		f, err := parseDate("from", from)
		if err != nil {
			return nil, nil, err
		}
		t, err := parseDate("to", to)
		return f, t, err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ledger <ledger-id>",
		Short: "Opening, entries with running balance, and closing of a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledgerID, err := parseID("ledger", args[0])
			if err != nil {
				return err
			}
			f, t, err := period()
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			bal, err := s.rt.LedgerBalance(s.ctx, ledgerID, f, t)
			if err != nil {
				return err
			}
			return printJSON(cmd, bal)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "item <stock-item-id>",
		Short: "Quantity movements of a stock item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			f, t, err := period()
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			bal, err := s.rt.StockItemBalance(s.ctx, itemID, f, t)
			if err != nil {
				return err
			}
			return printJSON(cmd, bal)
		},
	})

	return cmd
}

func newReportCommand() *cobra.Command {
	var companyID, from, to, asOf string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build financial statements for a company",
	}
	cmd.PersistentFlags().StringVar(&companyID, "company", "", "company id (required)")
	_ = cmd.MarkPersistentFlagRequired("company")

	// run opens a session and prints whatever build returns.
	run := func(build func(s *session, cmd *cobra.Command) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			out, err := build(s, cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		}
	}

	requiredAsOf := func() (time.Time, error) {
		t, err := parseDate("as-of", asOf)
		if err != nil {
			return time.Time{}, err
		}
		if t == nil {
			return time.Time{}, errors.New("--as-of is required")
		}
		return *t, nil
	}

	tradingPL := &cobra.Command{
		Use:   "trading-pl",
		Short: "Trading and Profit & Loss account",
		Args:  cobra.NoArgs,
		RunE: run(func(s *session, _ *cobra.Command) (any, error) {
			company, err := parseID("company", companyID)
			if err != nil {
				return nil, err
			}
			f, err := parseDate("from", from)
			if err != nil {
				return nil, err
			}
			t, err := parseDate("to", to)
			if err != nil {
				return nil, err
			}
			return s.rt.TradingAndPL(s.ctx, company, f, t)
		}),
	}
	tradingPL.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	tradingPL.Flags().StringVar(&to, "to", "", "period end (YYYY-MM-DD)")

	balanceSheet := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Balance Sheet as of a date",
		Args:  cobra.NoArgs,
		RunE: run(func(s *session, _ *cobra.Command) (any, error) {
			company, err := parseID("company", companyID)
			if err != nil {
				return nil, err
			}
			at, err := requiredAsOf()
			if err != nil {
				return nil, err
			}
			return s.rt.BalanceSheet(s.ctx, company, at)
		}),
	}

	trialBalance := &cobra.Command{
		Use:   "trial-balance",
		Short: "Closing balance of every ledger as of a date",
		Args:  cobra.NoArgs,
		RunE: run(func(s *session, _ *cobra.Command) (any, error) {
			company, err := parseID("company", companyID)
			if err != nil {
				return nil, err
			}
			at, err := requiredAsOf()
			if err != nil {
				return nil, err
			}
			return s.rt.TrialBalance(s.ctx, company, at)
		}),
	}

	stockSummary := &cobra.Command{
		Use:   "stock-summary",
		Short: "Weighted average valuation of every stock item",
		Args:  cobra.NoArgs,
		RunE: run(func(s *session, _ *cobra.Command) (any, error) {
			company, err := parseID("company", companyID)
			if err != nil {
				return nil, err
			}
			at, err := parseDate("as-of", asOf)
			if err != nil {
				return nil, err
			}
			return s.rt.StockSummary(s.ctx, company, at)
		}),
	}

	for _, c := range []*cobra.Command{balanceSheet, trialBalance, stockSummary} {
		c.Flags().StringVar(&asOf, "as-of", "", "cutoff date (YYYY-MM-DD)")
	}

	cmd.AddCommand(tradingPL, balanceSheet, trialBalance, stockSummary)
	return cmd
}
