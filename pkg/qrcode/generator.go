package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerateQRCode wraps encoder failures.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

const (
	DefaultSize   = 256
	dataURLPrefix = "data:image/png;base64,"
)

type options struct {
	size  int
	level skipqrcode.RecoveryLevel
}

// Option configures QR code rendering.
type Option func(*options)

// WithSize sets the image width and height in pixels. Non-positive values are ignored.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(level skipqrcode.RecoveryLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// PNG renders content as a PNG image.
func PNG(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	o := options{size: DefaultSize, level: skipqrcode.Medium}
	for _, opt := range opts {
		opt(&o)
	}
	png, err := skipqrcode.Encode(content, o.level, o.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// DataURL renders content as a PNG and returns it as a data URL suitable for an <img> src.
func DataURL(content string, opts ...Option) (string, error) {
	png, err := PNG(content, opts...)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
