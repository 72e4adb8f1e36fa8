package embedded

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/application/validation"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: filepath.Join(dir, "bills.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.NewMigrator(db, logger).Run(context.Background()))

	svc := service.NewBillService(
		repository.NewBillRepository(db.DB, logger),
		storage.NewLocalFileStorage(filepath.Join(dir, "receipts"), logger),
		sqlite.NewTxManager(db.DB, logger),
		validation.NewBillValidator(),
		"http://localhost:8080",
		utils.NewKVLogger(logger),
	)
	return NewStore(svc)
}

func TestStore_UploadThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	result, err := store.Bills().Create(ctx, port.CreateRequest{
		File:  entity.Receipt{Name: "receipt.png", MediaType: "image/png", Content: []byte("\x89PNG\r\n\x1a\n")},
		Email: "a@a",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/bills/"+result.Key+"/receipt", result.FileURL)

	amount := 47
	require.NoError(t, store.Bills().Update(ctx, port.UpdateRequest{
		Bill: entity.Bill{
			Email:  "a@a",
			Name:   "Lunch",
			Amount: &amount,
			Date:   "2004-04-04",
			VAT:    "20",
			Pct:    5,
			Status: entity.BillStatusPending,
		},
		Selector: result.Key,
	}))

	bills, err := store.Bills().List(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "Lunch", bills[0].Name)
	assert.Equal(t, result.FileURL, *bills[0].FileURL)
	assert.Equal(t, "receipt.png", *bills[0].FileName)
}

func TestStore_RejectsVideo(t *testing.T) {
	_, err := newStore(t).Bills().Create(context.Background(), port.CreateRequest{
		File:  entity.Receipt{Name: "clip.mp4", MediaType: "video/mp4"},
		Email: "a@a",
	})
	assert.ErrorIs(t, err, service.ErrUnsupportedMediaType)
}

func TestStore_UpdateWithoutSelectorCreates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Bills().Update(ctx, port.UpdateRequest{
		Bill: entity.Bill{Email: "a@a", Name: "Taxi", Pct: 20, Status: entity.BillStatusPending},
	}))

	bills, err := store.Bills().List(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Nil(t, bills[0].FileURL)
}
