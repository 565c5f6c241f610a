package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aashish23092/ocr-green-finance/dto"
	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/Aashish23092/ocr-green-finance/metrics"
	"github.com/Aashish23092/ocr-green-finance/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxFileSize     int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, maxFileSize int64, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{
		documentService: documentService,
		maxFileSize:     maxFileSize,
		logger:          logger,
	}
}

// CreateRecord handles POST /api/v1/records
func (h *DocumentHandler) CreateRecord(c *gin.Context) {
	var req dto.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.documentService.BuildRecord(c.Request.Context(), req)
	if err != nil {
		h.sendServiceError(c, "Failed to build record", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateBatch handles POST /api/v1/records/batch
func (h *DocumentHandler) CreateBatch(c *gin.Context) {
	var req dto.BatchRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.documentService.BuildBatch(c.Request.Context(), req)
	if err != nil {
		h.sendServiceError(c, "Failed to process batch", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateFromFile handles POST /api/v1/records/file. The multipart form
// carries "file" plus optional "profile", "password", "metrics" (comma
// separated), "annual_rate", "principal" and "term_months".
func (h *DocumentHandler) CreateFromFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "File is required", err)
		return
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		h.sendError(c, http.StatusRequestEntityTooLarge, "File too large", fmt.Errorf("%w: %d bytes", dto.ErrFileTooLarge, fileHeader.Size))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to open file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to read file", err)
		return
	}

	loan, err := loanFromForm(c)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid loan parameters", err)
		return
	}

	meta := dto.DocumentMeta{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Profile:  c.PostForm("profile"),
		Password: c.PostForm("password"),
	}
	resp, err := h.documentService.ProcessFile(c.Request.Context(), data, meta, splitList(c.PostForm("metrics")), loan)
	if err != nil {
		h.sendServiceError(c, "Failed to process file", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ComputeMetrics handles POST /api/v1/metrics
func (h *DocumentHandler) ComputeMetrics(c *gin.Context) {
	var req dto.MetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.documentService.ComputeMetrics(c.Request.Context(), req)
	if err != nil {
		h.sendServiceError(c, "Failed to compute metrics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListFields handles GET /api/v1/fields
func (h *DocumentHandler) ListFields(c *gin.Context) {
	c.JSON(http.StatusOK, h.documentService.Fields())
}

func (h *DocumentHandler) sendServiceError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, dto.ErrEmptyText),
		errors.Is(err, extractor.ErrUnknownProfile),
		errors.Is(err, metrics.ErrUnknownMetric):
		h.sendError(c, http.StatusBadRequest, message, err)
	case errors.Is(err, dto.ErrUnsupportedFile):
		h.sendError(c, http.StatusUnsupportedMediaType, message, err)
	case errors.Is(err, dto.ErrNoTextExtracted):
		h.sendError(c, http.StatusUnprocessableEntity, message, err)
	default:
		h.sendError(c, http.StatusInternalServerError, message, err)
	}
}

// sendError sends a structured error response
func (h *DocumentHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.logger.Warn(message,
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("status", statusCode),
			zap.Error(err),
		)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   errorCode(statusCode),
		Message: errorMsg,
		Code:    statusCode,
	})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusRequestEntityTooLarge:
		return "FILE_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_FILE"
	case http.StatusUnprocessableEntity:
		return "EXTRACTION_FAILED"
	}
	return "INTERNAL_ERROR"
}

func loanFromForm(c *gin.Context) (*dto.LoanParams, error) {
	rate, principal, term := c.PostForm("annual_rate"), c.PostForm("principal"), c.PostForm("term_months")
	if rate == "" && principal == "" && term == "" {
		return nil, nil
	}

	loan := &dto.LoanParams{}
	if rate != "" {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("annual_rate: %w", err)
		}
		loan.AnnualRate = &d
	}
	if principal != "" {
		d, err := decimal.NewFromString(principal)
		if err != nil {
			return nil, fmt.Errorf("principal: %w", err)
		}
		loan.Principal = &d
	}
	if term != "" {
		n, err := strconv.Atoi(term)
		if err != nil || n < 1 || n > 1200 {
			return nil, fmt.Errorf("term_months must be between 1 and 1200, got %q", term)
		}
		loan.TermMonths = n
	}
	return loan, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
