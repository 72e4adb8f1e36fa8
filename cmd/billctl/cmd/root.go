// Package cmd provides the billctl commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/container"
	"github.com/garyjia/billed/pkg/utils"
)

// app holds what the subcommands share once the root command has run
type app struct {
	cfgFile string
	offline bool
	debug   bool

	logger *zap.Logger
	client *container.Client
}

// Execute runs billctl with the process arguments
func Execute() error {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "billctl",
		Short: "Submit and review expense reports",
		Long: `billctl lets an employee send expense reports with their receipt
and review the reports already sent.

Example:
  billctl login --email employee@test.tld
  billctl new --file ticket.png --type Transports --name "Train" --date 2024-03-02 --amount 42
  billctl list
  billctl export --out bills.xlsx`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (defaults and BILLED_* environment when empty)")
	root.PersistentFlags().BoolVar(&a.offline, "offline", false, "use the local database instead of the bills API")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newNewCommand(a),
		newListCommand(a),
		newExportCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.offline {
		cfg.Client.Offline = true
	}

	level := "warn"
	if a.debug {
		level = "debug"
	}
	a.logger, err = utils.NewLogger(utils.LoggerConfig{
		Level:      level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     "console",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.client, err = container.NewClient(cmd.Context(), cfg, a.logger)
	return err
}

// close runs whether or not the command succeeded
func (a *app) close() error {
	if a.logger != nil {
		defer a.logger.Sync()
	}
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}
