package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/validation"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/pkg/utils"
)

var (
	// ErrBillNotFound is returned when no bill exists under a key
	ErrBillNotFound = errors.New("bill not found")

	// ErrUnsupportedMediaType is returned when an upload is not a png/jpg/jpeg image
	ErrUnsupportedMediaType = errors.New("unsupported receipt media type")

	// ErrReceiptNotFound is returned when a bill has no stored receipt
	ErrReceiptNotFound = errors.New("receipt not found")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// BillService implements the bills resource behind the HTTP API and the
// embedded store
type BillService interface {
	CreateWithReceipt(ctx context.Context, email, fileName, mediaType string, content []byte) (*entity.UploadResult, error)
	Update(ctx context.Context, key string, bill entity.Bill) (*entity.StoredBill, error)
	List(ctx context.Context, email string) ([]*entity.StoredBill, error)
	OpenReceipt(ctx context.Context, key string) (*entity.ReceiptFile, error)
	SweepOrphans(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type billServiceImpl struct {
	billRepo      port.BillRepository
	storage       port.FileStorage
	txManager     port.TransactionManager
	validator     *validation.BillValidator
	publicBaseURL string
	logger        Logger
	now           func() time.Time
}

// NewBillService creates a new BillService. Receipt URLs are built from
// publicBaseURL.
func NewBillService(
	billRepo port.BillRepository,
	storage port.FileStorage,
	txManager port.TransactionManager,
	validator *validation.BillValidator,
	publicBaseURL string,
	logger Logger,
) BillService {
	return &billServiceImpl{
		billRepo:      billRepo,
		storage:       storage,
		txManager:     txManager,
		validator:     validator,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
		now:           time.Now,
	}
}

// ReceiptURL returns the public download URL of a bill's receipt
func ReceiptURL(publicBaseURL, key string) string {
	return strings.TrimRight(publicBaseURL, "/") + "/api/v1/bills/" + key + "/receipt"
}

// CreateWithReceipt stores the receipt and reserves a pending bill for it
func (s *billServiceImpl) CreateWithReceipt(ctx context.Context, email, fileName, mediaType string, content []byte) (*entity.UploadResult, error) {
	if !validation.IsAcceptable(mediaType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", validation.ErrInvalidBill, err)
	}

	key := uuid.NewString()
	displayName := utils.SanitizeString(fileName)
	filePath := key + "/" + utils.SanitizeFileName(fileName)
	fileURL := ReceiptURL(s.publicBaseURL, key)

	if err := s.storage.Save(ctx, filePath, content); err != nil {
		s.logger.Error("Failed to store receipt", "error", err, "key", key)
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	now := s.now().UTC()
	bill := &entity.StoredBill{
		Bill: entity.Bill{
			Email:    email,
			Pct:      entity.DefaultPct,
			FileURL:  &fileURL,
			FileName: &displayName,
			Status:   entity.BillStatusPending,
		},
		Key:       key,
		FilePath:  filePath,
		MimeType:  mediaType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		if delErr := s.storage.Delete(ctx, filePath); delErr != nil {
			s.logger.Error("Failed to remove receipt after insert failure", "error", delErr, "path", filePath)
		}
		s.logger.Error("Failed to create bill", "error", err, "key", key)
		return nil, fmt.Errorf("create bill: %w", err)
	}

	s.logger.Info("Receipt uploaded", "key", key, "email", email, "size", len(content))
	return &entity.UploadResult{FileURL: fileURL, Key: key}, nil
}

// Update completes the bill reserved under key. An empty key creates a new
// record without receipt. Receipt fields left nil keep their stored values.
func (s *billServiceImpl) Update(ctx context.Context, key string, bill entity.Bill) (*entity.StoredBill, error) {
	if bill.Status == "" {
		bill.Status = entity.BillStatusPending
	}
	if err := s.validator.Validate(&bill); err != nil {
		return nil, err
	}

	if key == "" {
		return s.createWithoutReceipt(ctx, bill)
	}

	var stored *entity.StoredBill
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.billRepo.GetByKey(txCtx, key)
		if err != nil {
			return fmt.Errorf("get bill: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("%w: %s", ErrBillNotFound, key)
		}

		if bill.FileURL == nil {
			bill.FileURL = existing.FileURL
		}
		if bill.FileName == nil {
			bill.FileName = existing.FileName
		}
		existing.Bill = bill

		if err := s.billRepo.Update(txCtx, existing); err != nil {
			return fmt.Errorf("update bill: %w", err)
		}
		stored = existing
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update bill", "error", err, "key", key)
		return nil, err
	}

	s.logger.Info("Bill updated", "key", key, "email", bill.Email)
	return stored, nil
}

func (s *billServiceImpl) createWithoutReceipt(ctx context.Context, bill entity.Bill) (*entity.StoredBill, error) {
	now := s.now().UTC()
	stored := &entity.StoredBill{
		Bill:      bill,
		Key:       uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.billRepo.Create(ctx, stored); err != nil {
		s.logger.Error("Failed to create bill", "error", err)
		return nil, fmt.Errorf("create bill: %w", err)
	}

	s.logger.Info("Bill created without receipt", "key", stored.Key, "email", bill.Email)
	return stored, nil
}

// List returns the bills of email, or every bill when email is empty
func (s *billServiceImpl) List(ctx context.Context, email string) ([]*entity.StoredBill, error) {
	bills, err := s.billRepo.List(ctx, email)
	if err != nil {
		s.logger.Error("Failed to list bills", "error", err, "email", email)
		return nil, err
	}
	return bills, nil
}

// OpenReceipt loads the receipt of a bill and sniffs its content type
func (s *billServiceImpl) OpenReceipt(ctx context.Context, key string) (*entity.ReceiptFile, error) {
	bill, err := s.billRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, key)
	}
	if bill.FilePath == "" {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, key)
	}

	content, err := s.storage.Read(ctx, bill.FilePath)
	if errors.Is(err, port.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, key)
	}
	if err != nil {
		s.logger.Error("Failed to read receipt", "error", err, "key", key)
		return nil, fmt.Errorf("read receipt: %w", err)
	}

	fileName := ""
	if bill.FileName != nil {
		fileName = *bill.FileName
	}
	return &entity.ReceiptFile{
		Content:  content,
		FileName: fileName,
		MimeType: mimetype.Detect(content).String(),
		Size:     int64(len(content)),
	}, nil
}

// SweepOrphans deletes receipts whose bill was never completed by a form
// submission within olderThan. It returns the number of bills removed.
func (s *billServiceImpl) SweepOrphans(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := s.now().Add(-olderThan)
	drafts, err := s.billRepo.ListDraftsBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, draft := range drafts {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		if draft.FilePath != "" {
			if err := s.storage.Delete(ctx, draft.FilePath); err != nil {
				s.logger.Error("Failed to delete orphan receipt", "error", err, "key", draft.Key)
				continue
			}
		}
		if err := s.billRepo.Delete(ctx, draft.Key); err != nil {
			s.logger.Error("Failed to delete orphan bill", "error", err, "key", draft.Key)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Orphan receipts removed", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}
