package dto

import (
	"errors"

	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/Aashish23092/ocr-green-finance/metrics"
)

var (
	ErrEmptyText       = errors.New("text is empty")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrNoTextExtracted = errors.New("no text could be extracted from the document")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type RecordResponse struct {
	DocumentID  string                   `json:"document_id"`
	Profile     string                   `json:"profile,omitempty"`
	Fields      extractor.DocumentRecord `json:"fields"`
	Metrics     []metrics.Result         `json:"metrics"`
	Quality     *DocumentQuality         `json:"quality,omitempty"`
	ProcessedAt string                   `json:"processed_at"`
}

type BatchRecordResponse struct {
	Documents   []RecordResponse `json:"documents"`
	ProcessedAt string           `json:"processed_at"`
}

type MetricsResponse struct {
	Metrics []metrics.Result `json:"metrics"`
}

type FieldSummary struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Domain      string   `json:"domain"`
	Range       string   `json:"range,omitempty"`
	Rules       []string `json:"rules"`
}

type FieldsResponse struct {
	Version  int                 `json:"version"`
	Fields   []FieldSummary      `json:"fields"`
	Profiles map[string][]string `json:"profiles"`
}
