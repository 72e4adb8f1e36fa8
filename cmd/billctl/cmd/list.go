package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyjia/billed/internal/application/listing"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/cli"
)

func newListCommand(a *app) *cobra.Command {
	var receipts bool

	c := &cobra.Command{
		Use:   "list",
		Short: "Show the expense reports sorted by date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			router := cli.NewRouter(ctx, out, a.logger)
			presenter := a.client.NewPresenter(router)
			router.Register(entity.PathBills, cli.NewBillsPage(presenter))
			router.Navigate(entity.PathBills)

			page := presenter.Page()
			if page.Error != "" {
				return errors.New(page.Error)
			}

			if receipts {
				for _, row := range page.Rows {
					detail, err := presenter.ReceiptDetail(row)
					if errors.Is(err, listing.ErrNoReceipt) {
						continue
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s %s: %s %s\n", detail.Title, row.Bill.Name, detail.FileName, detail.URL)
				}
			}
			return nil
		},
	}

	c.Flags().BoolVar(&receipts, "receipts", false, "also print the receipt link of each report")
	return c
}

func newExportCommand(a *app) *cobra.Command {
	var outPath string

	c := &cobra.Command{
		Use:   "export",
		Short: "Export the expense reports to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}

			presenter := a.client.NewPresenter(nil)
			if err := presenter.Export(cmd.Context(), f); err != nil {
				f.Close()
				os.Remove(outPath)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d notes de frais exportées vers %s\n", len(presenter.Page().Rows), outPath)
			return nil
		},
	}

	c.Flags().StringVarP(&outPath, "out", "o", "bills.xlsx", "output file")
	return c
}
