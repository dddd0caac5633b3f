package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fintrack/internal/core"
	"fintrack/internal/present"
)

func newTransactionCmd(a *app, name string) *cobra.Command {
	kind := core.Kind(name)
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Manage %s records", name),
	}
	cmd.AddCommand(
		newTransactionListCmd(a, kind),
		newTransactionAddCmd(a, kind),
		newTransactionEditCmd(a, kind),
		newTransactionRmCmd(a, kind),
	)
	return cmd
}

func title(kind core.Kind) string {
	if kind == core.KindIncome {
		return "Income"
	}
	return "Expenses"
}

func newTransactionListCmd(a *app, kind core.Kind) *cobra.Command {
	var (
		q    present.Query
		sort string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s records", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			field, err := present.ParseSortField(sort)
			if err != nil {
				return err
			}
			q.Sort = field
			return a.showTransactions(cmd, kind, q)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Search, "search", "s", "", "match description or category")
	f.StringVarP(&q.Category, "category", "c", "", "only this category")
	f.StringVar(&sort, "sort", "", "sort by description, category, amount or date")
	f.BoolVar(&q.Desc, "desc", false, "sort descending")
	return cmd
}

// showTransactions re-fetches the whole collection and renders it.
func (a *app) showTransactions(cmd *cobra.Command, kind core.Kind, q present.Query) error {
	txs, err := a.api.ListTransactions(a.ctx(cmd), kind)
	if err != nil {
		return a.failure("load "+string(kind), err)
	}
	a.render.Transactions(title(kind), q.Apply(txs))
	return nil
}

// transactionFlags are the record fields accepted by add and edit.
type transactionFlags struct {
	description string
	amount      string
	date        string
	category    string
}

func (t *transactionFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&t.description, "description", "d", "", "what it was")
	fs.StringVarP(&t.amount, "amount", "a", "", "amount, e.g. 12.50")
	fs.StringVar(&t.date, "date", "", "date as YYYY-MM-DD (add defaults to today)")
	fs.StringVarP(&t.category, "category", "c", "", "category")
}

// fields builds a request body. Without a base record only non-empty flags
// are sent and the API rejects anything missing. With a base record the
// changed flags are merged over it, since updates replace the whole record.
func (t *transactionFlags) fields(fs *pflag.FlagSet, base *core.Transaction) (core.TransactionFields, error) {
	var f core.TransactionFields
	set := func(name, value string) bool { return fs.Changed(name) || (base == nil && value != "") }
	if base != nil {
		desc, date, cat, amt := base.Description, present.NormalizeDate(base.Date), base.Category, base.Amount
		f = core.TransactionFields{Description: &desc, Amount: &amt, Date: &date, Category: &cat}
	}
	if set("description", t.description) {
		f.Description = &t.description
	}
	if set("amount", t.amount) {
		m, err := core.ParseAmount(t.amount)
		if err != nil {
			return f, fmt.Errorf("invalid amount %q", t.amount)
		}
		f.Amount = &m
	}
	if set("date", t.date) {
		d := present.NormalizeDate(t.date)
		f.Date = &d
	}
	if set("category", t.category) {
		f.Category = &t.category
	}
	return f, nil
}

func newTransactionAddCmd(a *app, kind core.Kind) *cobra.Command {
	var t transactionFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Record a new %s", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if t.date == "" {
				t.date = a.today()
			}
			f, err := t.fields(cmd.Flags(), nil)
			if err != nil {
				return err
			}
			if _, err := a.api.CreateTransaction(a.ctx(cmd), kind, f); err != nil {
				return a.failure("save "+string(kind), err)
			}
			return a.showTransactions(cmd, kind, present.Query{})
		},
	}
	t.register(cmd.Flags())
	return cmd
}

func newTransactionEditCmd(a *app, kind core.Kind) *cobra.Command {
	var t transactionFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: fmt.Sprintf("Change an existing %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			txs, err := a.api.ListTransactions(ctx, kind)
			if err != nil {
				return a.failure("load "+string(kind), err)
			}
			var current *core.Transaction
			for i := range txs {
				if txs[i].ID == args[0] {
					current = &txs[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("no %s with id %s", kind, args[0])
			}

			f, err := t.fields(cmd.Flags(), current)
			if err != nil {
				return err
			}
			if _, err := a.api.UpdateTransaction(ctx, kind, current.ID, f); err != nil {
				return a.failure("save "+string(kind), err)
			}
			return a.showTransactions(cmd, kind, present.Query{})
		},
	}
	t.register(cmd.Flags())
	return cmd
}

func newTransactionRmCmd(a *app, kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   fmt.Sprintf("Delete a %s", kind),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteTransaction(a.ctx(cmd), kind, args[0]); err != nil {
				return a.failure("delete "+string(kind), err)
			}
			return a.showTransactions(cmd, kind, present.Query{})
		},
	}
}
