// Package listing builds the employee's bills page: ordering, display
// formatting, error states and the actions reachable from the table.
package listing

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/domain/entity"
)

// ErrNoReceipt is returned when the detail view is opened for a bill without receipt
var ErrNoReceipt = errors.New("bill has no receipt")

// ReceiptTitle is the heading of the receipt detail view
const ReceiptTitle = "Justificatif"

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Exporter writes table rows as a document
type Exporter interface {
	Export(ctx context.Context, w io.Writer, rows []Row) error
}

// Row is one line of the bills table
type Row struct {
	Bill   entity.Bill
	Date   string
	Status string
}

// Page is the state of the bills page
type Page struct {
	Loading bool
	Error   string
	Rows    []Row
}

// ReceiptDetail is what the eye icon opens
type ReceiptDetail struct {
	Title    string
	URL      string
	FileName string
}

// Presenter loads and formats the bills page
type Presenter struct {
	store     port.RemoteStore
	session   *session.Context
	navigator port.Navigator
	exporter  Exporter
	logger    Logger

	mu   sync.RWMutex
	page Page
}

// Option configures the presenter
type Option func(*Presenter)

// WithExporter enables spreadsheet export
func WithExporter(exporter Exporter) Option {
	return func(p *Presenter) {
		p.exporter = exporter
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger Logger) Option {
	return func(p *Presenter) {
		p.logger = logger
	}
}

// NewPresenter creates a presenter whose page is loading until Load returns.
// store may be nil, in which case the page stays empty.
func NewPresenter(store port.RemoteStore, sessionCtx *session.Context, navigator port.Navigator, opts ...Option) *Presenter {
	p := &Presenter{
		store:     store,
		session:   sessionCtx,
		navigator: navigator,
		logger:    nopLogger{},
		page:      Page{Loading: true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Page returns the last computed page state
func (p *Presenter) Page() Page {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.page
}

// Load fetches the bills and builds the page. Failures end up in Page.Error.
func (p *Presenter) Load(ctx context.Context) Page {
	page := p.load(ctx)

	p.mu.Lock()
	p.page = page
	p.mu.Unlock()
	return page
}

func (p *Presenter) load(ctx context.Context) Page {
	if p.store == nil {
		return Page{}
	}

	user, err := p.session.CurrentUser(ctx)
	if err != nil {
		p.logger.Error("Failed to read session", "error", err)
		return Page{Error: err.Error()}
	}

	bills, err := p.store.Bills().List(ctx)
	if err != nil {
		p.logger.Error("Failed to list bills", "error", err)
		return Page{Error: err.Error()}
	}

	if user.IsEmployee() {
		bills = filterByEmail(bills, user.Email)
	}

	sorted := SortByDateDesc(bills)
	rows := make([]Row, 0, len(sorted))
	for _, bill := range sorted {
		rows = append(rows, p.row(bill))
	}
	return Page{Rows: rows}
}

func (p *Presenter) row(bill entity.Bill) Row {
	row := Row{Bill: bill, Date: bill.Date, Status: FormatStatus(bill.Status)}
	if formatted, err := FormatDate(bill.Date); err != nil {
		p.logger.Error("Keeping unformatted date", "date", bill.Date, "error", err)
	} else {
		row.Date = formatted
	}
	return row
}

func filterByEmail(bills []entity.Bill, email string) []entity.Bill {
	out := make([]entity.Bill, 0, len(bills))
	for _, b := range bills {
		if b.Email == email {
			out = append(out, b)
		}
	}
	return out
}

// NewBill opens the new bill page
func (p *Presenter) NewBill() {
	p.navigator.Navigate(entity.PathNewBill)
}

// ReceiptDetail returns the receipt shown by the eye icon of row
func (p *Presenter) ReceiptDetail(row Row) (*ReceiptDetail, error) {
	if !row.Bill.HasReceipt() {
		return nil, ErrNoReceipt
	}
	detail := &ReceiptDetail{Title: ReceiptTitle, URL: *row.Bill.FileURL}
	if row.Bill.FileName != nil {
		detail.FileName = *row.Bill.FileName
	}
	return detail, nil
}

// Export writes the current rows as a spreadsheet, loading them first if
// the page has not been loaded
func (p *Presenter) Export(ctx context.Context, w io.Writer) error {
	if p.exporter == nil {
		return errors.New("no exporter configured")
	}

	page := p.Page()
	if page.Loading {
		page = p.Load(ctx)
	}
	if page.Error != "" {
		return errors.New(page.Error)
	}
	return p.exporter.Export(ctx, w, page.Rows)
}
