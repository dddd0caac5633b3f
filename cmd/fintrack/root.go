package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/client"
	applog "fintrack/internal/log"
	"fintrack/internal/present"
)

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	logger *applog.Logger
	api    *client.Client
	render *present.Renderer
	now    func() time.Time
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut, now: time.Now}

	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Track expenses, income, budgets and savings",
		Long: `fintrack talks to the finance API: it lists and edits records and
shows totals, budget status, monthly reports and a spending calendar.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.init() },
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("api-url", client.DefaultBaseURL, "base URL of the finance API")
	flags.String("config", "", "config file (default $XDG_CONFIG_HOME/fintrack/config.yaml)")
	flags.Bool("debug", false, "log request details to stderr")
	flags.Duration("timeout", 10*time.Second, "HTTP request timeout")
	_ = a.v.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("timeout", flags.Lookup("timeout"))

	a.v.SetEnvPrefix("FINTRACK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newTransactionCmd(a, "expense"),
		newTransactionCmd(a, "income"),
		newBudgetCmd(a),
		newSavingsCmd(a),
		newSummaryCmd(a),
		newBudgetsCmd(a),
		newReportCmd(a),
		newCalendarCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) init() error {
	if err := a.readConfig(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.v.GetBool("debug") {
		level = slog.LevelDebug
	}
	a.logger = applog.New(applog.Config{
		Level:     level,
		Format:    "text",
		Component: applog.ComponentCLI,
		Output:    a.errOut,
	})

	api, err := client.New(a.v.GetString("api_url"), client.WithTimeout(a.v.GetDuration("timeout")))
	if err != nil {
		return err
	}
	a.api = api
	a.render = present.NewRenderer(a.out)
	a.logger.Debug("CLI configured", "api_url", api.BaseURL(), "config", a.v.ConfigFileUsed())
	return nil
}

// readConfig loads an explicit --config file, or the default one when it exists.
func (a *app) readConfig() error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	a.v.SetConfigName("config")
	a.v.AddConfigPath(filepath.Join(dir, "fintrack"))
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// failure turns a client error into what the user sees. Transport problems and
// server faults collapse into one message; rejected requests keep the API's reason.
func (a *app) failure(op string, err error) error {
	a.logger.Debug("API request failed", applog.FieldOperation, op, applog.FieldError, err)

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && !apiErr.ServerFault() {
		return fmt.Errorf("failed to %s: %s", op, apiErr.Message)
	}
	if errors.Is(err, client.ErrNetworkFailure) || errors.As(err, &apiErr) {
		return fmt.Errorf("failed to %s", op)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) today() string {
	return a.now().Format(time.DateOnly)
}
