package listing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/domain/entity"
)

type mockBills struct {
	listFunc func(ctx context.Context) ([]entity.Bill, error)
}

func (m *mockBills) Create(ctx context.Context, req port.CreateRequest) (*entity.UploadResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBills) Update(ctx context.Context, req port.UpdateRequest) error {
	return errors.New("not implemented")
}

func (m *mockBills) List(ctx context.Context) ([]entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

type mockStore struct {
	bills *mockBills
}

func (m *mockStore) Bills() port.BillsResource { return m.bills }

type mockExporter struct {
	rows []Row
}

func (m *mockExporter) Export(ctx context.Context, w io.Writer, rows []Row) error {
	m.rows = rows
	_, err := w.Write([]byte("xlsx"))
	return err
}

func fixtureBills() []entity.Bill {
	url := "https://test.storage.tld/receipt.jpg"
	name := "preview-facture-free-201801-pdf-1.jpg"
	return []entity.Bill{
		{Email: "a@a", Name: "encore", Date: "2004-04-04", Status: entity.BillStatusPending, FileURL: &url, FileName: &name},
		{Email: "a@a", Name: "test1", Date: "2002-02-02", Status: entity.BillStatusRefused},
		{Email: "b@b", Name: "other", Date: "2005-05-05", Status: entity.BillStatusAccepted},
		{Email: "a@a", Name: "test3", Date: "2003-03-03", Status: entity.BillStatusAccepted},
	}
}

func newSession(t *testing.T, user *entity.User) *session.Context {
	t.Helper()
	sc := session.NewContext(session.NewMemoryStore())
	if user != nil {
		require.NoError(t, sc.Login(context.Background(), *user))
	}
	return sc
}

func TestSortByDateDesc(t *testing.T) {
	bills := []entity.Bill{{Date: "2004-04-04"}, {Date: "2002-02-02"}, {Date: "2003-03-03"}}

	sorted := SortByDateDesc(bills)

	dates := make([]string, len(sorted))
	for i, b := range sorted {
		dates[i] = b.Date
	}
	assert.Equal(t, []string{"2004-04-04", "2003-03-03", "2002-02-02"}, dates)
	assert.Equal(t, "2004-04-04", bills[0].Date)
	assert.Equal(t, "2002-02-02", bills[1].Date, "input must not be reordered")
}

func TestSortByDateDesc_Stable(t *testing.T) {
	bills := []entity.Bill{
		{Name: "first", Date: "2001-01-01"},
		{Name: "second", Date: "2001-01-01"},
		{Name: "newer", Date: "2002-01-01"},
	}

	sorted := SortByDateDesc(bills)
	assert.Equal(t, "newer", sorted[0].Name)
	assert.Equal(t, "first", sorted[1].Name)
	assert.Equal(t, "second", sorted[2].Name)
}

func TestFormatDate(t *testing.T) {
	got, err := FormatDate("2004-04-04")
	require.NoError(t, err)
	assert.Equal(t, "4 Avr. 04", got)

	got, err = FormatDate("2021-12-25")
	require.NoError(t, err)
	assert.Equal(t, "25 Déc. 21", got)

	_, err = FormatDate("04/04/2004")
	assert.Error(t, err)
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t, "En attente", FormatStatus(entity.BillStatusPending))
	assert.Equal(t, "Accepté", FormatStatus(entity.BillStatusAccepted))
	assert.Equal(t, "Refusé", FormatStatus(entity.BillStatusRefused))
	assert.Equal(t, "unknown", FormatStatus("unknown"))
}

func TestPresenter_Load(t *testing.T) {
	ctx := context.Background()
	employee := &entity.User{Type: entity.UserTypeEmployee, Email: "a@a"}

	t.Run("loading before first load", func(t *testing.T) {
		p := NewPresenter(&mockStore{bills: &mockBills{}}, newSession(t, employee), nil)
		assert.True(t, p.Page().Loading)
	})

	t.Run("employee sees own bills newest first", func(t *testing.T) {
		store := &mockStore{bills: &mockBills{listFunc: func(ctx context.Context) ([]entity.Bill, error) {
			return fixtureBills(), nil
		}}}
		p := NewPresenter(store, newSession(t, employee), nil)

		page := p.Load(ctx)

		assert.False(t, page.Loading)
		assert.Empty(t, page.Error)
		require.Len(t, page.Rows, 3)
		assert.Equal(t, "4 Avr. 04", page.Rows[0].Date)
		assert.Equal(t, "3 Mar. 03", page.Rows[1].Date)
		assert.Equal(t, "2 Fév. 02", page.Rows[2].Date)
		assert.Equal(t, "En attente", page.Rows[0].Status)
		assert.Equal(t, "Refusé", page.Rows[2].Status)
		assert.Equal(t, page, p.Page())
	})

	t.Run("admin sees every bill", func(t *testing.T) {
		store := &mockStore{bills: &mockBills{listFunc: func(ctx context.Context) ([]entity.Bill, error) {
			return fixtureBills(), nil
		}}}
		admin := &entity.User{Type: entity.UserTypeAdmin, Email: "admin@a"}

		page := NewPresenter(store, newSession(t, admin), nil).Load(ctx)
		require.Len(t, page.Rows, 4)
		assert.Equal(t, "other", page.Rows[0].Bill.Name)
	})

	t.Run("unparsable date is kept raw", func(t *testing.T) {
		store := &mockStore{bills: &mockBills{listFunc: func(ctx context.Context) ([]entity.Bill, error) {
			return []entity.Bill{{Email: "a@a", Date: "not-a-date", Status: entity.BillStatusPending}}, nil
		}}}

		page := NewPresenter(store, newSession(t, employee), nil).Load(ctx)
		require.Len(t, page.Rows, 1)
		assert.Equal(t, "not-a-date", page.Rows[0].Date)
	})

	for _, msg := range []string{"Erreur 404", "Erreur 500"} {
		t.Run("list failure "+msg, func(t *testing.T) {
			store := &mockStore{bills: &mockBills{listFunc: func(ctx context.Context) ([]entity.Bill, error) {
				return nil, errors.New(msg)
			}}}

			page := NewPresenter(store, newSession(t, employee), nil).Load(ctx)
			assert.Equal(t, msg, page.Error)
			assert.Empty(t, page.Rows)
		})
	}

	t.Run("no store", func(t *testing.T) {
		page := NewPresenter(nil, newSession(t, employee), nil).Load(ctx)
		assert.Equal(t, Page{}, page)
	})

	t.Run("no session", func(t *testing.T) {
		page := NewPresenter(&mockStore{bills: &mockBills{}}, newSession(t, nil), nil).Load(ctx)
		assert.NotEmpty(t, page.Error)
	})
}

func TestPresenter_NewBill(t *testing.T) {
	var navigated []string
	nav := port.NavigatorFunc(func(path string) { navigated = append(navigated, path) })

	NewPresenter(nil, newSession(t, nil), nav).NewBill()
	assert.Equal(t, []string{entity.PathNewBill}, navigated)
}

func TestPresenter_ReceiptDetail(t *testing.T) {
	p := NewPresenter(nil, newSession(t, nil), nil)
	bills := fixtureBills()

	detail, err := p.ReceiptDetail(Row{Bill: bills[0]})
	require.NoError(t, err)
	assert.Equal(t, "Justificatif", detail.Title)
	assert.Equal(t, "https://test.storage.tld/receipt.jpg", detail.URL)
	assert.Equal(t, "preview-facture-free-201801-pdf-1.jpg", detail.FileName)

	_, err = p.ReceiptDetail(Row{Bill: bills[1]})
	assert.ErrorIs(t, err, ErrNoReceipt)
}

func TestPresenter_Export(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{bills: &mockBills{listFunc: func(ctx context.Context) ([]entity.Bill, error) {
		return fixtureBills(), nil
	}}}
	exporter := &mockExporter{}
	p := NewPresenter(store, newSession(t, &entity.User{Type: entity.UserTypeEmployee, Email: "a@a"}), nil,
		WithExporter(exporter))

	var buf bytes.Buffer
	require.NoError(t, p.Export(ctx, &buf))
	assert.Equal(t, "xlsx", buf.String())
	assert.Len(t, exporter.rows, 3)

	failing := NewPresenter(&mockStore{bills: &mockBills{listFunc: func(ctx context.Context) ([]entity.Bill, error) {
		return nil, errors.New("Erreur 500")
	}}}, newSession(t, &entity.User{Email: "a@a"}), nil, WithExporter(exporter))
	assert.EqualError(t, failing.Export(ctx, &buf), "Erreur 500")

	assert.Error(t, NewPresenter(store, newSession(t, nil), nil).Export(ctx, &buf))
}
