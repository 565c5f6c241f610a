package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Aashish23092/ocr-green-finance/dto"
	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/Aashish23092/ocr-green-finance/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TextRecognizer turns an encoded image into text with a 0-100 confidence.
type TextRecognizer interface {
	RecognizeImage(ctx context.Context, data []byte) (string, float64, error)
}

type QRDecoder interface {
	Decode(img image.Image) (string, error)
}

// Collaborators are the I/O-bound services a DocumentService delegates to.
// Paddle and QR are optional.
type Collaborators struct {
	PDF       PDFProcessor
	Paddle    TextRecognizer
	Tesseract TextRecognizer
	QR        QRDecoder
}

type DocumentService struct {
	extractor *extractor.Engine
	metrics   *metrics.Engine
	collab    Collaborators
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewDocumentService(ex *extractor.Engine, me *metrics.Engine, collab Collaborators, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		extractor: ex,
		metrics:   me,
		collab:    collab,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// BuildRecord extracts the record of one text block and evaluates the
// requested metrics on it.
func (s *DocumentService) BuildRecord(ctx context.Context, req dto.RecordRequest) (*dto.RecordResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, dto.ErrEmptyText
	}
	quality := &dto.DocumentQuality{Source: dto.SourceText, OcrConfidence: 100, Issues: []string{}}
	return s.buildResponse(req.Text, req.Profile, req.Metrics, req.Loan, quality)
}

// BuildBatch processes documents concurrently and keeps their order. The
// first failing document fails the batch.
func (s *DocumentService) BuildBatch(ctx context.Context, req dto.BatchRecordRequest) (*dto.BatchRecordResponse, error) {
	out := make([]dto.RecordResponse, len(req.Documents))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range req.Documents {
		g.Go(func() error {
			resp, err := s.BuildRecord(ctx, doc)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			out[i] = *resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("batch processed", zap.Int("documents", len(out)))
	return &dto.BatchRecordResponse{
		Documents:   out,
		ProcessedAt: s.now().UTC().Format(time.RFC3339),
	}, nil
}

// ComputeMetrics evaluates only the named metrics.
func (s *DocumentService) ComputeMetrics(ctx context.Context, req dto.MetricsRequest) (*dto.MetricsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, dto.ErrEmptyText
	}
	if len(req.Kinds) == 0 {
		return nil, fmt.Errorf("%w: no metric requested", metrics.ErrUnknownMetric)
	}

	record, err := s.extractor.BuildRecordFor(req.Profile, req.Text)
	if err != nil {
		return nil, err
	}
	results, err := s.evaluate(record, req.Kinds, req.Loan)
	if err != nil {
		return nil, err
	}
	return &dto.MetricsResponse{Metrics: results}, nil
}

// ProcessFile recognizes the text of an uploaded PDF or image and builds its
// record.
func (s *DocumentService) ProcessFile(ctx context.Context, data []byte, meta dto.DocumentMeta, kinds []string, loan *dto.LoanParams) (*dto.RecordResponse, error) {
	kind := detectFileKind(data, meta)
	s.logger.Info("processing file",
		zap.String("filename", meta.Filename),
		zap.String("kind", kind),
		zap.Int("bytes", len(data)),
	)

	var (
		text    string
		quality dto.DocumentQuality
		err     error
	)
	switch kind {
	case "pdf":
		text, quality, err = s.textFromPDF(ctx, data, meta)
	case "image":
		text, quality, err = s.textFromImage(ctx, data)
	default:
		return nil, fmt.Errorf("%w: %s", dto.ErrUnsupportedFile, meta.Filename)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, dto.ErrNoTextExtracted
	}
	if quality.Source != dto.SourcePDFText && quality.OcrConfidence < dto.LowQualityThreshold {
		quality.Issues = append(quality.Issues, "low_quality_document")
	}

	return s.buildResponse(text, meta.Profile, kinds, loan, &quality)
}

// Fields summarizes the loaded rule table.
func (s *DocumentService) Fields() dto.FieldsResponse {
	table := s.extractor.Table()
	resp := dto.FieldsResponse{
		Version:  table.Version(),
		Profiles: make(map[string][]string),
	}
	for _, spec := range table.Specs() {
		summary := dto.FieldSummary{
			ID:          string(spec.ID),
			Description: spec.Description,
			Domain:      string(spec.Domain),
		}
		if spec.Domain.Numeric() {
			summary.Range = spec.Bounds.String()
		}
		for _, r := range spec.Rules {
			summary.Rules = append(summary.Rules, r.Name)
		}
		resp.Fields = append(resp.Fields, summary)
	}
	for _, name := range table.Profiles() {
		specs, _ := table.Profile(name)
		ids := make([]string, 0, len(specs))
		for _, spec := range specs {
			ids = append(ids, string(spec.ID))
		}
		resp.Profiles[name] = ids
	}
	return resp
}

func (s *DocumentService) buildResponse(text, profile string, kinds []string, loan *dto.LoanParams, quality *dto.DocumentQuality) (*dto.RecordResponse, error) {
	record, err := s.extractor.BuildRecordFor(profile, text)
	if err != nil {
		return nil, err
	}
	results, err := s.evaluate(record, kinds, loan)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	s.logger.Info("record built",
		zap.String("document_id", id),
		zap.String("profile", profile),
		zap.Int("fields", record.Len()),
	)
	return &dto.RecordResponse{
		DocumentID:  id,
		Profile:     profile,
		Fields:      record,
		Metrics:     results,
		Quality:     quality,
		ProcessedAt: s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *DocumentService) evaluate(record extractor.DocumentRecord, names []string, loan *dto.LoanParams) ([]metrics.Result, error) {
	params := loanParams(loan)
	if len(names) == 0 {
		all := s.metrics.ComputeAll(record, params)
		for i := range all {
			all[i] = s.metrics.Present(all[i])
		}
		return all, nil
	}

	results := make([]metrics.Result, 0, len(names))
	for _, name := range names {
		kind, err := metrics.ParseKind(name)
		if err != nil {
			return nil, err
		}
		r, err := s.metrics.Compute(kind, record, params)
		if err != nil {
			return nil, err
		}
		results = append(results, s.metrics.Present(r))
	}
	return results, nil
}

func loanParams(loan *dto.LoanParams) metrics.Params {
	var p metrics.Params
	if loan == nil {
		return p
	}
	if loan.Principal != nil {
		p.Principal = decimal.NewNullDecimal(*loan.Principal)
	}
	if loan.AnnualRate != nil {
		p.AnnualRate = decimal.NewNullDecimal(*loan.AnnualRate)
	}
	p.TermMonths = loan.TermMonths
	return p
}

func (s *DocumentService) textFromPDF(ctx context.Context, data []byte, meta dto.DocumentMeta) (string, dto.DocumentQuality, error) {
	quality := dto.DocumentQuality{Source: dto.SourcePDFText, OcrConfidence: 100, Issues: []string{}}
	if s.collab.PDF == nil {
		return "", quality, fmt.Errorf("%w: pdf processing is not configured", dto.ErrUnsupportedFile)
	}

	text, err := s.collab.PDF.ExtractText(data, meta.Password)
	if err != nil {
		s.logger.Warn("pdf text extraction failed", zap.String("filename", meta.Filename), zap.Error(err))
		quality.Issues = append(quality.Issues, "pdf_text_extraction_failed")
	}
	if len(strings.TrimSpace(text)) >= dto.MinTextLength {
		return text, quality, nil
	}

	s.logger.Info("pdf has minimal text, running OCR on page images", zap.String("filename", meta.Filename))
	images, err := s.collab.PDF.ExtractImages(data, meta.Password)
	if err != nil || len(images) == 0 {
		s.logger.Warn("pdf image extraction failed", zap.String("filename", meta.Filename), zap.Error(err))
		quality.Issues = append(quality.Issues, "pdf_image_extraction_failed")
		return text, quality, nil
	}

	var sb strings.Builder
	var total float64
	pages := 0
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return "", quality, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			s.logger.Warn("failed to encode page image", zap.Error(err))
			continue
		}
		pageText, conf, source, err := s.recognize(ctx, buf.Bytes())
		if err != nil {
			s.logger.Warn("OCR failed for a page", zap.String("filename", meta.Filename), zap.Error(err))
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
		if payload := s.decodeQR(img); payload != "" {
			sb.WriteString(payload)
			sb.WriteString("\n")
			quality.QRCodes++
		}
		total += conf
		pages++
		quality.Source = source
	}

	if pages == 0 {
		quality.Issues = append(quality.Issues, "scanned_pdf_ocr_failed")
		return text, quality, nil
	}
	quality.Pages = pages
	quality.OcrConfidence = total / float64(pages)
	return sb.String(), quality, nil
}

func (s *DocumentService) textFromImage(ctx context.Context, data []byte) (string, dto.DocumentQuality, error) {
	quality := dto.DocumentQuality{Pages: 1, Issues: []string{}}

	text, conf, source, err := s.recognize(ctx, data)
	if err != nil {
		return "", quality, fmt.Errorf("image OCR failed: %w", err)
	}
	quality.Source = source
	quality.OcrConfidence = conf

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		if payload := s.decodeQR(img); payload != "" {
			text += "\n" + payload
			quality.QRCodes = 1
		}
	}
	return text, quality, nil
}

// recognize tries PaddleOCR first and falls back to Tesseract when Paddle is
// unavailable or returns almost nothing.
func (s *DocumentService) recognize(ctx context.Context, data []byte) (string, float64, dto.TextSource, error) {
	if s.collab.Paddle != nil {
		text, conf, err := s.collab.Paddle.RecognizeImage(ctx, data)
		if err == nil && len(strings.TrimSpace(text)) > 5 {
			return text, conf, dto.SourcePaddleOCR, nil
		}
		s.logger.Debug("paddleocr unusable, falling back to tesseract", zap.Error(err))
	}
	if s.collab.Tesseract == nil {
		return "", 0, "", errors.New("no OCR engine configured")
	}
	text, conf, err := s.collab.Tesseract.RecognizeImage(ctx, data)
	if err != nil {
		return "", 0, "", err
	}
	return text, conf, dto.SourceTesseractOCR, nil
}

func (s *DocumentService) decodeQR(img image.Image) string {
	if s.collab.QR == nil {
		return ""
	}
	payload, err := s.collab.QR.Decode(img)
	if err != nil {
		s.logger.Debug("no QR code decoded", zap.Error(err))
		return ""
	}
	s.logger.Info("QR code decoded", zap.Int("bytes", len(payload)))
	return payload
}

func detectFileKind(data []byte, meta dto.DocumentMeta) string {
	mimeType := meta.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	ext := strings.ToLower(filepath.Ext(meta.Filename))

	switch {
	case strings.Contains(mimeType, "pdf") || ext == ".pdf":
		return "pdf"
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case ext == ".png" || ext == ".jpg" || ext == ".jpeg" || ext == ".tif" || ext == ".tiff":
		return "image"
	}
	return ""
}
