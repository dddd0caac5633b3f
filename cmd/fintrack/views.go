package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/present"
)

// snapshotView fetches everything and derives the aggregate view from scratch.
func (a *app) snapshotView(cmd *cobra.Command) (aggregate.Snapshot, aggregate.View, error) {
	snap, err := a.api.FetchSnapshot(a.ctx(cmd))
	if err != nil {
		return snap, aggregate.View{}, a.failure("load data", err)
	}
	return snap, aggregate.Build(snap), nil
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals, balance and category breakdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v, err := a.snapshotView(cmd)
			if err != nil {
				return err
			}
			a.render.Summary(v)
			return nil
		},
	}
}

func newBudgetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budgets",
		Short: "Show spend against each budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v, err := a.snapshotView(cmd)
			if err != nil {
				return err
			}
			a.render.BudgetStatus(v.Budgets)
			return nil
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show monthly income, expenses and savings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, v, err := a.snapshotView(cmd)
			if err != nil {
				return err
			}
			a.render.Report(v)
			return nil
		},
	}
}

func newCalendarCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show daily activity for one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month == "" {
				month = a.now().Format("2006-01")
			}
			if _, err := time.Parse("2006-01", month); err != nil {
				return fmt.Errorf("invalid month %q: use YYYY-MM", month)
			}
			snap, _, err := a.snapshotView(cmd)
			if err != nil {
				return err
			}
			a.render.Calendar(aggregate.Calendar(snap.Incomes, snap.Expenses, month))
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (defaults to the current month)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var kind, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write expense or income records as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k := core.Kind(kind)
			if !k.Valid() {
				return fmt.Errorf("invalid kind %q: use expense or income", kind)
			}
			txs, err := a.api.ListTransactions(a.ctx(cmd), k)
			if err != nil {
				return a.failure("load "+kind, err)
			}

			w := a.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := present.WriteCSV(w, txs); err != nil {
				return err
			}
			a.logger.Debug("Exported records", "kind", kind, "count", len(txs), "output", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "expense", "expense or income")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (defaults to stdout)")
	return cmd
}
