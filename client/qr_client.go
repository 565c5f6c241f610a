package client

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRClient decodes the QR codes printed on bills and payslips. Their payload
// often repeats the account number and amount in machine-readable form.
type QRClient struct{}

func NewQRClient() *QRClient {
	return &QRClient{}
}

func (q *QRClient) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}
	return result.GetText(), nil
}
