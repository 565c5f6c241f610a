package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultPaddleURL = "http://paddleocr:8866/predict/ocr_system"

var ErrPaddleNoText = errors.New("PaddleOCR extracted no text")

// PaddleClient calls a PaddleOCR serving endpoint over HTTP.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPaddleClient(apiURL string, logger *zap.Logger) *PaddleClient {
	if apiURL == "" {
		apiURL = DefaultPaddleURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// RecognizeImage sends one encoded image and joins the recognized lines.
// Confidence is the mean line confidence on a 0-100 scale.
func (p *PaddleClient) RecognizeImage(ctx context.Context, data []byte) (string, float64, error) {
	payload, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(data)},
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", 0, fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var sb strings.Builder
	var total float64
	var lines int
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			sb.WriteString(line.Text)
			sb.WriteString("\n")
			total += line.Confidence
			lines++
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", 0, ErrPaddleNoText
	}

	conf := total / float64(lines)
	if conf <= 1 {
		conf *= 100
	}
	p.logger.Debug("paddleocr recognized image",
		zap.Int("chars", len(text)),
		zap.Int("lines", lines),
		zap.Float64("confidence", conf),
	)
	return text, conf, nil
}
