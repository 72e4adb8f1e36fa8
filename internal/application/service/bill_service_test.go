package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/validation"
	"github.com/garyjia/billed/internal/domain/entity"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// Mock repositories
type mockBillRepo struct {
	bills map[string]*entity.StoredBill

	createFunc func(ctx context.Context, bill *entity.StoredBill) error
	listFunc   func(ctx context.Context, email string) ([]*entity.StoredBill, error)
	draftsFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*entity.StoredBill, error)
}

func newMockBillRepo() *mockBillRepo {
	return &mockBillRepo{bills: map[string]*entity.StoredBill{}}
}

func (m *mockBillRepo) Create(ctx context.Context, bill *entity.StoredBill) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, bill)
	}
	cp := *bill
	m.bills[bill.Key] = &cp
	return nil
}

func (m *mockBillRepo) GetByKey(ctx context.Context, key string) (*entity.StoredBill, error) {
	bill, ok := m.bills[key]
	if !ok {
		return nil, nil
	}
	cp := *bill
	return &cp, nil
}

func (m *mockBillRepo) Update(ctx context.Context, bill *entity.StoredBill) error {
	cp := *bill
	m.bills[bill.Key] = &cp
	return nil
}

func (m *mockBillRepo) List(ctx context.Context, email string) ([]*entity.StoredBill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, email)
	}
	var out []*entity.StoredBill
	for _, b := range m.bills {
		if email == "" || b.Email == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBillRepo) ListDraftsBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.StoredBill, error) {
	if m.draftsFunc != nil {
		return m.draftsFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

func (m *mockBillRepo) Delete(ctx context.Context, key string) error {
	delete(m.bills, key)
	return nil
}

type mockStorage struct {
	files     map[string][]byte
	saveErr   error
	deleteErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: map[string][]byte{}}
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.files[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, port.ErrFileNotFound
	}
	return content, nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, path)
	return nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestService(repo *mockBillRepo, storage *mockStorage) BillService {
	return NewBillService(repo, storage, &mockTxManager{}, validation.NewBillValidator(), "http://localhost:8080/", &mockLogger{})
}

func TestBillService_CreateWithReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("stores receipt and reserves pending bill", func(t *testing.T) {
		repo, storage := newMockBillRepo(), newMockStorage()
		svc := newTestService(repo, storage)

		result, err := svc.CreateWithReceipt(ctx, "a@a", "note de frais.png", "image/png", pngBytes)
		require.NoError(t, err)

		assert.NotEmpty(t, result.Key)
		assert.Equal(t, "http://localhost:8080/api/v1/bills/"+result.Key+"/receipt", result.FileURL)

		stored := repo.bills[result.Key]
		require.NotNil(t, stored)
		assert.Equal(t, entity.BillStatusPending, stored.Status)
		assert.Equal(t, "note de frais.png", *stored.FileName)
		assert.Equal(t, result.Key+"/note_de_frais.png", stored.FilePath)
		assert.True(t, stored.IsDraft())
		assert.Equal(t, pngBytes, storage.files[stored.FilePath])
	})

	t.Run("rejects non image types", func(t *testing.T) {
		repo, storage := newMockBillRepo(), newMockStorage()
		_, err := newTestService(repo, storage).CreateWithReceipt(ctx, "a@a", "clip.mp4", "video/mp4", []byte("x"))

		assert.ErrorIs(t, err, ErrUnsupportedMediaType)
		assert.Empty(t, storage.files)
		assert.Empty(t, repo.bills)
	})

	t.Run("rejects missing email", func(t *testing.T) {
		_, err := newTestService(newMockBillRepo(), newMockStorage()).CreateWithReceipt(ctx, "", "a.png", "image/png", pngBytes)
		assert.ErrorIs(t, err, validation.ErrInvalidBill)
	})

	t.Run("storage failure", func(t *testing.T) {
		storage := newMockStorage()
		storage.saveErr = errors.New("disk full")
		_, err := newTestService(newMockBillRepo(), storage).CreateWithReceipt(ctx, "a@a", "a.png", "image/png", pngBytes)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("insert failure removes stored receipt", func(t *testing.T) {
		repo, storage := newMockBillRepo(), newMockStorage()
		repo.createFunc = func(ctx context.Context, bill *entity.StoredBill) error {
			return errors.New("constraint failed")
		}
		_, err := newTestService(repo, storage).CreateWithReceipt(ctx, "a@a", "a.png", "image/png", pngBytes)
		assert.ErrorContains(t, err, "constraint failed")
		assert.Empty(t, storage.files)
	})
}

func TestBillService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("completes uploaded bill and keeps receipt fields", func(t *testing.T) {
		repo, storage := newMockBillRepo(), newMockStorage()
		svc := newTestService(repo, storage)
		upload, err := svc.CreateWithReceipt(ctx, "a@a", "receipt.png", "image/png", pngBytes)
		require.NoError(t, err)

		amount := 47
		stored, err := svc.Update(ctx, upload.Key, entity.Bill{
			Email:  "a@a",
			Type:   entity.ExpenseTypeRestaurant,
			Name:   "Lunch",
			Amount: &amount,
			Date:   "2004-04-04",
			Pct:    5,
			Status: entity.BillStatusPending,
		})
		require.NoError(t, err)

		assert.Equal(t, upload.Key, stored.Key)
		assert.Equal(t, upload.FileURL, *stored.FileURL)
		assert.Equal(t, "receipt.png", *stored.FileName)
		assert.Equal(t, "Lunch", repo.bills[upload.Key].Name)
		assert.NotEmpty(t, repo.bills[upload.Key].FilePath)
	})

	t.Run("empty key creates a bill", func(t *testing.T) {
		repo := newMockBillRepo()
		stored, err := newTestService(repo, newMockStorage()).Update(ctx, "", entity.Bill{Email: "a@a", Name: "Taxi"})
		require.NoError(t, err)

		assert.NotEmpty(t, stored.Key)
		assert.Equal(t, entity.BillStatusPending, stored.Status)
		assert.Nil(t, stored.FileURL)
		assert.Len(t, repo.bills, 1)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := newTestService(newMockBillRepo(), newMockStorage()).Update(ctx, "ghost", entity.Bill{Email: "a@a"})
		assert.ErrorIs(t, err, ErrBillNotFound)
	})

	t.Run("invalid bill", func(t *testing.T) {
		_, err := newTestService(newMockBillRepo(), newMockStorage()).Update(ctx, "", entity.Bill{Email: "a@a", Type: "Voyage spatial"})
		assert.ErrorIs(t, err, validation.ErrInvalidBill)
	})
}

func TestBillService_List(t *testing.T) {
	ctx := context.Background()
	repo := newMockBillRepo()
	repo.bills["1"] = &entity.StoredBill{Key: "1", Bill: entity.Bill{Email: "a@a"}}
	repo.bills["2"] = &entity.StoredBill{Key: "2", Bill: entity.Bill{Email: "b@b"}}
	svc := newTestService(repo, newMockStorage())

	mine, err := svc.List(ctx, "a@a")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	repo.listFunc = func(ctx context.Context, email string) ([]*entity.StoredBill, error) {
		return nil, errors.New("locked")
	}
	_, err = svc.List(ctx, "")
	assert.Error(t, err)
}

func TestBillService_OpenReceipt(t *testing.T) {
	ctx := context.Background()
	repo, storage := newMockBillRepo(), newMockStorage()
	svc := newTestService(repo, storage)

	upload, err := svc.CreateWithReceipt(ctx, "a@a", "receipt.jpg", "image/jpeg", pngBytes)
	require.NoError(t, err)

	file, err := svc.OpenReceipt(ctx, upload.Key)
	require.NoError(t, err)
	assert.Equal(t, "image/png", file.MimeType, "content type is sniffed, not declared")
	assert.Equal(t, "receipt.jpg", file.FileName)
	assert.Equal(t, int64(len(pngBytes)), file.Size)

	_, err = svc.OpenReceipt(ctx, "ghost")
	assert.ErrorIs(t, err, ErrBillNotFound)

	repo.bills["bare"] = &entity.StoredBill{Key: "bare", Bill: entity.Bill{Email: "a@a"}}
	_, err = svc.OpenReceipt(ctx, "bare")
	assert.ErrorIs(t, err, ErrReceiptNotFound)

	storage.files = map[string][]byte{}
	_, err = svc.OpenReceipt(ctx, upload.Key)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestBillService_SweepOrphans(t *testing.T) {
	ctx := context.Background()
	repo, storage := newMockBillRepo(), newMockStorage()
	svc := newTestService(repo, storage)

	upload, err := svc.CreateWithReceipt(ctx, "a@a", "receipt.png", "image/png", pngBytes)
	require.NoError(t, err)

	var gotCutoff time.Time
	repo.draftsFunc = func(ctx context.Context, cutoff time.Time, limit int) ([]*entity.StoredBill, error) {
		gotCutoff = cutoff
		assert.Equal(t, 50, limit)
		return []*entity.StoredBill{repo.bills[upload.Key]}, nil
	}

	removed, err := svc.SweepOrphans(ctx, 24*time.Hour, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.Empty(t, repo.bills)
	assert.Empty(t, storage.files)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), gotCutoff, time.Minute)
}

func TestBillService_SweepOrphans_KeepsBillWhenReceiptDeleteFails(t *testing.T) {
	ctx := context.Background()
	repo, storage := newMockBillRepo(), newMockStorage()
	svc := newTestService(repo, storage)

	upload, err := svc.CreateWithReceipt(ctx, "a@a", "receipt.png", "image/png", pngBytes)
	require.NoError(t, err)
	repo.draftsFunc = func(ctx context.Context, cutoff time.Time, limit int) ([]*entity.StoredBill, error) {
		return []*entity.StoredBill{repo.bills[upload.Key]}, nil
	}
	storage.deleteErr = errors.New("permission denied")

	removed, err := svc.SweepOrphans(ctx, time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Contains(t, repo.bills, upload.Key)
}

func TestReceiptURL(t *testing.T) {
	assert.True(t, strings.HasSuffix(ReceiptURL("http://h/", "k"), "/api/v1/bills/k/receipt"))
	assert.Equal(t, "http://h/api/v1/bills/k/receipt", ReceiptURL("http://h", "k"))
}
