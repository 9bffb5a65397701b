// Package qr renders QR payloads as PNG images.
package qr

import (
	qrcode "github.com/skip2/go-qrcode"
)

const (
	defaultSize = 256
	maxSize     = 1024
)

// EncodePNG renders content as a PNG of size x size pixels.
func EncodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
