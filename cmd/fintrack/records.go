package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/present"
)

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "budget", Short: "Manage category budgets"}

	var category, limit string
	add := &cobra.Command{
		Use:   "add",
		Short: "Set a spending limit for a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f core.BudgetFields
			if category != "" {
				f.Category = &category
			}
			if limit != "" {
				m, err := core.ParseAmount(limit)
				if err != nil {
					return fmt.Errorf("invalid limit %q", limit)
				}
				f.Limit = &m
			}
			if _, err := a.api.CreateBudget(a.ctx(cmd), f); err != nil {
				return a.failure("save budget", err)
			}
			return a.showBudgets(cmd)
		},
	}
	add.Flags().StringVarP(&category, "category", "c", "", "category the limit applies to")
	add.Flags().StringVarP(&limit, "limit", "l", "", "limit, e.g. 400")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List budgets",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.showBudgets(cmd) },
		},
		add,
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a budget",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.api.DeleteBudget(a.ctx(cmd), args[0]); err != nil {
					return a.failure("delete budget", err)
				}
				return a.showBudgets(cmd)
			},
		},
	)
	return cmd
}

func (a *app) showBudgets(cmd *cobra.Command) error {
	budgets, err := a.api.ListBudgets(a.ctx(cmd))
	if err != nil {
		return a.failure("load budgets", err)
	}
	a.render.BudgetList(budgets)
	return nil
}

func newSavingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "savings", Short: "Manage savings records"}

	var amount, date, description string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record money put aside",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f core.SavingsFields
			if amount != "" {
				m, err := core.ParseAmount(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q", amount)
				}
				f.Amount = &m
			}
			if date == "" {
				date = a.today()
			}
			d := present.NormalizeDate(date)
			f.Date = &d
			if description != "" {
				f.Description = &description
			}
			if _, err := a.api.CreateSavings(a.ctx(cmd), f); err != nil {
				return a.failure("save savings", err)
			}
			return a.showSavings(cmd)
		},
	}
	add.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 250")
	add.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (defaults to today)")
	add.Flags().StringVarP(&description, "description", "d", "", "what it is for")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List savings",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.showSavings(cmd) },
		},
		add,
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a savings record",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.api.DeleteSavings(a.ctx(cmd), args[0]); err != nil {
					return a.failure("delete savings", err)
				}
				return a.showSavings(cmd)
			},
		},
	)
	return cmd
}

func (a *app) showSavings(cmd *cobra.Command) error {
	list, err := a.api.ListSavings(a.ctx(cmd))
	if err != nil {
		return a.failure("load savings", err)
	}
	a.render.SavingsList(list)
	return nil
}
