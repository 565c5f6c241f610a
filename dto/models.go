package dto

// TextSource records where the text of a document came from.
type TextSource string

const (
	SourceText         TextSource = "text"
	SourcePDFText      TextSource = "pdf_text"
	SourcePaddleOCR    TextSource = "paddle_ocr"
	SourceTesseractOCR TextSource = "tesseract_ocr"
)

const (
	MinTextLength       = 20 // shorter PDF text layers are treated as scans
	LowQualityThreshold = 60.0
)

// DocumentMeta describes one uploaded file.
type DocumentMeta struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type,omitempty"`
	Profile  string `json:"profile,omitempty"`
	Password string `json:"-"`
}

type DocumentQuality struct {
	Source        TextSource `json:"source"`
	OcrConfidence float64    `json:"ocr_confidence"`
	Pages         int        `json:"pages,omitempty"`
	QRCodes       int        `json:"qr_codes,omitempty"`
	Issues        []string   `json:"issues"`
}
