package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

const minQRCodeSizePx = 128

// ShareQRCode returns a QR code image encoding the share URL of an emoji.
// Sizes below 128 pixels are raised to 128 so the code stays scannable.
func ShareQRCode(url string, sizePx int) (image.Image, error) {
	if url == "" {
		return nil, errors.New("render: empty QR payload")
	}
	if sizePx < minQRCodeSizePx {
		sizePx = minQRCodeSizePx
	}

	qrCode, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qrCode.Image(sizePx), nil
}
