package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/Aashish23092/ocr-green-finance/dto"
	"github.com/Aashish23092/ocr-green-finance/extractor"
	"github.com/Aashish23092/ocr-green-finance/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	text  string
	conf  float64
	err   error
	calls int
}

func (f *fakeRecognizer) RecognizeImage(_ context.Context, _ []byte) (string, float64, error) {
	f.calls++
	return f.text, f.conf, f.err
}

type fakePDF struct {
	text       string
	textErr    error
	images     []image.Image
	imagesErr  error
	imageCalls int
}

func (f *fakePDF) ExtractText(_ []byte, _ string) (string, error) {
	return f.text, f.textErr
}

func (f *fakePDF) ExtractImages(_ []byte, _ string) ([]image.Image, error) {
	f.imageCalls++
	return f.images, f.imagesErr
}

type fakeQR struct {
	payload string
}

func (f *fakeQR) Decode(_ image.Image) (string, error) {
	if f.payload == "" {
		return "", errors.New("no QR code")
	}
	return f.payload, nil
}

func newTestService(t *testing.T, collab Collaborators) *DocumentService {
	t.Helper()
	table, err := extractor.DefaultTable()
	require.NoError(t, err)
	me, err := metrics.NewEngine(metrics.DefaultConstants())
	require.NoError(t, err)

	s := NewDocumentService(extractor.NewEngine(table, nil), me, collab, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "doc-1" }
	return s
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.SetGray(1, 1, color.Gray{Y: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func metricValue(t *testing.T, results []metrics.Result, kind metrics.Kind) string {
	t.Helper()
	for _, r := range results {
		if r.Kind == kind {
			require.True(t, r.Computable, "%s: %s", kind, r.Reason)
			return r.Value.StringFixed(2)
		}
	}
	t.Fatalf("metric %s missing", kind)
	return ""
}

func TestBuildRecord(t *testing.T) {
	s := newTestService(t, Collaborators{})

	resp, err := s.BuildRecord(context.Background(), dto.RecordRequest{
		Text:    "Consumption: 320 kWh Total Due: Rs 1600",
		Metrics: []string{"unit_cost", "max_loan_amount"},
	})
	require.NoError(t, err)

	assert.Equal(t, "doc-1", resp.DocumentID)
	assert.Equal(t, "2024-03-01T09:00:00Z", resp.ProcessedAt)
	require.NotNil(t, resp.Quality)
	assert.Equal(t, dto.SourceText, resp.Quality.Source)
	assert.Empty(t, resp.Quality.Issues)
	assert.Equal(t, []extractor.FieldID{"kwh_consumption", "total_amount"}, resp.Fields.IDs())

	require.Len(t, resp.Metrics, 2)
	assert.Equal(t, "5.00", metricValue(t, resp.Metrics, metrics.KindUnitCost))
	assert.False(t, resp.Metrics[1].Computable)
}

func TestBuildRecordAllMetricsByDefault(t *testing.T) {
	s := newTestService(t, Collaborators{})

	resp, err := s.BuildRecord(context.Background(), dto.RecordRequest{Text: "Units consumed 320 kWh"})
	require.NoError(t, err)
	assert.Len(t, resp.Metrics, len(metrics.Kinds()))
	assert.Equal(t, "2.50", metricValue(t, resp.Metrics, metrics.KindSolarSystemSize))
}

func TestBuildRecordErrors(t *testing.T) {
	s := newTestService(t, Collaborators{})
	ctx := context.Background()

	_, err := s.BuildRecord(ctx, dto.RecordRequest{Text: " \n\t "})
	assert.ErrorIs(t, err, dto.ErrEmptyText)

	_, err = s.BuildRecord(ctx, dto.RecordRequest{Text: "Units 320", Profile: "passport"})
	assert.ErrorIs(t, err, extractor.ErrUnknownProfile)

	_, err = s.BuildRecord(ctx, dto.RecordRequest{Text: "Units 320", Metrics: []string{"carbon_credits"}})
	assert.ErrorIs(t, err, metrics.ErrUnknownMetric)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.BuildRecord(cancelled, dto.RecordRequest{Text: "Units 320"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeMetricsWithLoanParams(t *testing.T) {
	s := newTestService(t, Collaborators{})
	rate := decimal.NewFromInt(6)

	resp, err := s.ComputeMetrics(context.Background(), dto.MetricsRequest{
		Text:    "Employee Name: Priya Ramsamy Basic Salary: Rs 45,000",
		Profile: "payslip",
		Kinds:   []string{"max_loan_amount", "amortized_payment"},
		Loan:    &dto.LoanParams{AnnualRate: &rate, TermMonths: 120},
	})
	require.NoError(t, err)

	assert.Equal(t, "225000.00", metricValue(t, resp.Metrics, metrics.KindMaxLoanAmount))
	assert.Equal(t, "2497.96", metricValue(t, resp.Metrics, metrics.KindAmortizedPayment))

	principal := decimal.NewFromInt(500000)
	resp, err = s.ComputeMetrics(context.Background(), dto.MetricsRequest{
		Text:  "Invoice #A1234 for services",
		Kinds: []string{"amortized_payment"},
		Loan:  &dto.LoanParams{Principal: &principal, AnnualRate: &rate, TermMonths: 120},
	})
	require.NoError(t, err)
	assert.Equal(t, "5551.03", metricValue(t, resp.Metrics, metrics.KindAmortizedPayment))

	_, err = s.ComputeMetrics(context.Background(), dto.MetricsRequest{Text: "Units 320"})
	assert.ErrorIs(t, err, metrics.ErrUnknownMetric)
}

func TestBuildBatchKeepsOrder(t *testing.T) {
	s := newTestService(t, Collaborators{})

	resp, err := s.BuildBatch(context.Background(), dto.BatchRecordRequest{
		Documents: []dto.RecordRequest{
			{Text: "Consumption: 320 kWh Total Due: Rs 1600", Metrics: []string{"unit_cost"}},
			{Text: "Invoice #A1234 for services", Metrics: []string{"unit_cost"}},
			{Text: "Net Pay: 42,500", Profile: "payslip", Metrics: []string{"max_loan_amount"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Documents, 3)

	assert.True(t, resp.Documents[0].Fields.Has("kwh_consumption"))
	assert.True(t, resp.Documents[1].Fields.Has("bill_number"))
	assert.Equal(t, "payslip", resp.Documents[2].Profile)
	assert.Equal(t, "212500.00", metricValue(t, resp.Documents[2].Metrics, metrics.KindMaxLoanAmount))

	_, err = s.BuildBatch(context.Background(), dto.BatchRecordRequest{
		Documents: []dto.RecordRequest{{Text: "Units 320"}, {Text: ""}},
	})
	assert.ErrorIs(t, err, dto.ErrEmptyText)
}

func TestProcessFileImageUsesPaddleAndQR(t *testing.T) {
	paddle := &fakeRecognizer{text: "Units consumed 320 kWh\nTotal Amount Due Rs 1,600.00", conf: 91}
	tesseract := &fakeRecognizer{}
	s := newTestService(t, Collaborators{
		Paddle:    paddle,
		Tesseract: tesseract,
		QR:        &fakeQR{payload: "ACC NO: 55501234"},
	})

	resp, err := s.ProcessFile(context.Background(), testPNG(t), dto.DocumentMeta{Filename: "bill.png", Profile: "utility_bill"}, []string{"unit_cost"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, paddle.calls)
	assert.Equal(t, 0, tesseract.calls)
	require.NotNil(t, resp.Quality)
	assert.Equal(t, dto.SourcePaddleOCR, resp.Quality.Source)
	assert.Equal(t, 1, resp.Quality.QRCodes)
	assert.Empty(t, resp.Quality.Issues)

	account, ok := resp.Fields.Text("account_number")
	require.True(t, ok)
	assert.Equal(t, "55501234", account)
	assert.Equal(t, "5.00", metricValue(t, resp.Metrics, metrics.KindUnitCost))
}

func TestProcessFileFallsBackToTesseract(t *testing.T) {
	paddle := &fakeRecognizer{err: errors.New("connection refused")}
	tesseract := &fakeRecognizer{text: "Net Pay: 42,500", conf: 41}
	s := newTestService(t, Collaborators{Paddle: paddle, Tesseract: tesseract})

	resp, err := s.ProcessFile(context.Background(), testPNG(t), dto.DocumentMeta{Filename: "slip.jpg"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tesseract.calls)
	assert.Equal(t, dto.SourceTesseractOCR, resp.Quality.Source)
	assert.Contains(t, resp.Quality.Issues, "low_quality_document")
	assert.True(t, resp.Fields.Has("monthly_salary"))
}

func TestProcessFilePDFTextLayer(t *testing.T) {
	pdf := &fakePDF{text: "Account No. 0012345678 Units consumed 320 kWh Total Amount Due Rs 1,600.00"}
	s := newTestService(t, Collaborators{PDF: pdf, Tesseract: &fakeRecognizer{}})

	resp, err := s.ProcessFile(context.Background(), []byte("%PDF-1.7\n"), dto.DocumentMeta{Filename: "bill.pdf"}, []string{"unit_cost"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, pdf.imageCalls)
	assert.Equal(t, dto.SourcePDFText, resp.Quality.Source)
	assert.True(t, resp.Fields.Has("account_number"))
}

func TestProcessFileScannedPDF(t *testing.T) {
	page := image.NewGray(image.Rect(0, 0, 4, 4))
	pdf := &fakePDF{images: []image.Image{page, page}}
	tesseract := &fakeRecognizer{text: "Units consumed 320 kWh", conf: 80}
	s := newTestService(t, Collaborators{PDF: pdf, Tesseract: tesseract})

	resp, err := s.ProcessFile(context.Background(), []byte("%PDF-1.4\n"), dto.DocumentMeta{Filename: "scan.pdf"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, tesseract.calls)
	assert.Equal(t, 2, resp.Quality.Pages)
	assert.Equal(t, dto.SourceTesseractOCR, resp.Quality.Source)
	assert.InDelta(t, 80.0, resp.Quality.OcrConfidence, 0.001)
	assert.True(t, resp.Fields.Has("kwh_consumption"))
}

func TestProcessFileErrors(t *testing.T) {
	ctx := context.Background()

	s := newTestService(t, Collaborators{Tesseract: &fakeRecognizer{text: "  "}})
	_, err := s.ProcessFile(ctx, []byte("plain notes"), dto.DocumentMeta{Filename: "notes.txt"}, nil, nil)
	assert.ErrorIs(t, err, dto.ErrUnsupportedFile)

	_, err = s.ProcessFile(ctx, testPNG(t), dto.DocumentMeta{Filename: "blank.png"}, nil, nil)
	assert.ErrorIs(t, err, dto.ErrNoTextExtracted)

	s = newTestService(t, Collaborators{PDF: &fakePDF{imagesErr: errors.New("no images")}})
	_, err = s.ProcessFile(ctx, []byte("%PDF-1.4\n"), dto.DocumentMeta{Filename: "empty.pdf"}, nil, nil)
	assert.ErrorIs(t, err, dto.ErrNoTextExtracted)
}

func TestFields(t *testing.T) {
	s := newTestService(t, Collaborators{})
	resp := s.Fields()

	assert.Equal(t, 1, resp.Version)
	assert.Contains(t, resp.Profiles["payslip"], "monthly_salary")

	var salary dto.FieldSummary
	for _, f := range resp.Fields {
		if f.ID == "monthly_salary" {
			salary = f
		}
	}
	assert.Equal(t, "[5000, 500000]", salary.Range)
	assert.Equal(t, "salary_label", salary.Rules[0])
}
