// Package qrcode renders PIX copy-and-paste codes as PNG QR images.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent = errors.New("qr content cannot be empty")
	ErrEncode       = errors.New("failed to encode QR code")
)

// DefaultSize is the rendered image width and height in pixels.
const DefaultSize = 300

const dataURIPrefix = "data:image/png;base64,"

// PNG encodes content at the given size. PIX payloads are long, so medium
// error correction keeps the symbol readable on phone screens.
func PNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return png, nil
}

// DataURI renders content as a base64 PNG data URI for direct use in an
// <img src>.
func DataURI(content string, size int) (string, error) {
	png, err := PNG(content, size)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// Renderer returns a DataURI function bound to size.
func Renderer(size int) func(string) (string, error) {
	return func(content string) (string, error) {
		return DataURI(content, size)
	}
}
