package client

import (
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRClientDecode(t *testing.T) {
	payload := "ACC:1234567890;AMT:3450.00"
	img, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	require.NoError(t, err)

	got, err := NewQRClient().Decode(img)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestQRClientDecodeBlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = color.White.Y
	}

	_, err := NewQRClient().Decode(img)
	assert.Error(t, err)
}
