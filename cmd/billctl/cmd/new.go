package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/billed/internal/application/submission"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/cli"
)

func newNewCommand(a *app) *cobra.Command {
	var (
		filePath string
		form     submission.Form
	)

	c := &cobra.Command{
		Use:   "new",
		Short: "Send a new expense report",
		Long: `Send a new expense report. The receipt is uploaded first, then the
report is completed with the form values and the bills page is shown.

Only jpg, jpeg and png receipts are accepted. Amount and pct are read as
integers; an unreadable pct falls back to 20.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			input := &cli.FileInput{}
			if filePath != "" {
				var err error
				if input, err = cli.OpenFileInput(filePath); err != nil {
					return err
				}
			}

			router := cli.NewRouter(ctx, out, a.logger)
			router.Register(entity.PathBills, cli.NewBillsPage(a.client.NewPresenter(router)))

			view := cli.NewNewBillView(out, input)
			workflow := a.client.NewWorkflow(view, router)

			router.Navigate(entity.PathNewBill)
			fmt.Fprintln(out, "Envoyer une note de frais")

			if files := input.Files(); len(files) > 0 {
				if err := workflow.OnFileSelected(ctx, files[0], input.Value()); err != nil {
					return err
				}
				workflow.Wait()
			}

			if err := workflow.OnSubmit(ctx, form); err != nil {
				return err
			}
			workflow.Wait()

			return view.SubmitError()
		},
	}

	c.Flags().StringVar(&filePath, "file", "", "receipt image (jpg, jpeg or png)")
	c.Flags().StringVar(&form.Type, "type", entity.ExpenseTypeTransport, "expense type")
	c.Flags().StringVar(&form.Name, "name", "", "expense name")
	c.Flags().StringVar(&form.Date, "date", "", "expense date (YYYY-MM-DD)")
	c.Flags().StringVar(&form.Amount, "amount", "", "amount including VAT, in euros")
	c.Flags().StringVar(&form.VAT, "vat", "", "VAT amount")
	c.Flags().StringVar(&form.Pct, "pct", "20", "VAT percentage")
	c.Flags().StringVar(&form.Commentary, "commentary", "", "free comment")
	return c
}
