package client

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TesseractClient runs local Tesseract OCR. Each call uses its own gosseract
// client, so one TesseractClient can serve concurrent requests.
type TesseractClient struct {
	dataPath string
	language string
	logger   *zap.Logger
}

func NewTesseractClient(dataPath, language string, logger *zap.Logger) *TesseractClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TesseractClient{
		dataPath: dataPath,
		language: language,
		logger:   logger,
	}
}

// RecognizeImage returns the text of an encoded image and the mean word
// confidence on a 0-100 scale.
func (tc *TesseractClient) RecognizeImage(ctx context.Context, data []byte) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		if err := client.SetTessdataPrefix(tc.dataPath); err != nil {
			return "", 0, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(tc.language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		tc.logger.Debug("tesseract bounding boxes unavailable", zap.Error(err))
		return text, 0, nil
	}

	var total float64
	for _, box := range boxes {
		total += box.Confidence
	}
	conf := 0.0
	if len(boxes) > 0 {
		conf = total / float64(len(boxes))
	}

	tc.logger.Debug("tesseract recognized image",
		zap.Int("chars", len(text)),
		zap.Float64("confidence", conf),
	)
	return text, conf, nil
}
