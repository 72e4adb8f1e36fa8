package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/garyjia/billed/internal/application/listing"
)

// BillsPage renders the employee's bills table
type BillsPage struct {
	presenter *listing.Presenter
}

// NewBillsPage creates the page
func NewBillsPage(presenter *listing.Presenter) *BillsPage {
	return &BillsPage{presenter: presenter}
}

var _ Page = (*BillsPage)(nil)

// Render loads the bills and prints them, or the page error
func (p *BillsPage) Render(ctx context.Context, w io.Writer) error {
	page := p.presenter.Load(ctx)
	return WritePage(w, page)
}

// WritePage prints a loaded bills page
func WritePage(w io.Writer, page listing.Page) error {
	switch {
	case page.Loading:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	case page.Error != "":
		_, err := fmt.Fprintln(w, page.Error)
		return err
	}

	fmt.Fprintln(w, "Mes notes de frais")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Type\tNom\tDate\tMontant\tStatut\tJustificatif")
	for _, row := range page.Rows {
		receipt := "-"
		if row.Bill.FileName != nil {
			receipt = *row.Bill.FileName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Bill.Type, row.Bill.Name, row.Date, formatAmount(row.Bill.Amount), row.Status, receipt)
	}
	return tw.Flush()
}

func formatAmount(amount *int) string {
	if amount == nil {
		return "NaN €"
	}
	return strconv.Itoa(*amount) + " €"
}
