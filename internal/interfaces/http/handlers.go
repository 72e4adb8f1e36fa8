package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/application/validation"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	billService    service.BillService
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(billService service.BillService, maxUploadBytes int64, logger Logger) *Handlers {
	return &Handlers{
		billService:    billService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CreatedResponse is returned when a bill is created without receipt
type CreatedResponse struct {
	Key string `json:"key"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListBills handles GET /api/v1/bills?email=
func (h *Handlers) ListBills(c *gin.Context) {
	bills, err := h.billService.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.fail(c, err)
		return
	}

	if bills == nil {
		bills = []*entity.StoredBill{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: bills})
}

// CreateBill handles POST /api/v1/bills. A multipart body uploads a receipt,
// a JSON body creates a bill without one.
func (h *Handlers) CreateBill(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.uploadReceipt(c)
		return
	}

	var bill entity.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		h.logger.Error("Invalid bill payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid bill payload"})
		return
	}

	stored, err := h.billService.Update(c.Request.Context(), "", bill)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: CreatedResponse{Key: stored.Key}})
}

func (h *Handlers) uploadReceipt(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.fail(c, err)
		return
	}
	if err != nil {
		h.logger.Error("Missing receipt file", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.fail(c, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := h.billService.CreateWithReceipt(
		c.Request.Context(),
		c.PostForm("email"),
		header.Filename,
		header.Header.Get("Content-Type"),
		content,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// UpdateBill handles PATCH /api/v1/bills/:key
func (h *Handlers) UpdateBill(c *gin.Context) {
	var bill entity.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		h.logger.Error("Invalid bill payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid bill payload"})
		return
	}

	stored, err := h.billService.Update(c.Request.Context(), c.Param("key"), bill)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: stored})
}

// GetReceipt handles GET /api/v1/bills/:key/receipt
func (h *Handlers) GetReceipt(c *gin.Context) {
	receipt, err := h.billService.OpenReceipt(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": receipt.FileName}))
	c.Data(http.StatusOK, receipt.MimeType, receipt.Content)
}

// fail maps service errors to status codes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrUnsupportedMediaType):
		status, message = http.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, validation.ErrInvalidBill):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrBillNotFound), errors.Is(err, service.ErrReceiptNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.As(err, &maxBytes):
		status, message = http.StatusRequestEntityTooLarge, "receipt too large"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, Response{Success: false, Error: message})
}
