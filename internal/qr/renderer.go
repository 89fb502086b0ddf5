package qr

import (
	"fmt"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	MinSize     = 128
	MaxSize     = 1024
	DefaultSize = 256
)

// Options describe the visual configuration of a rendered code.
type Options struct {
	Size            int
	ForegroundColor string
	BackgroundColor string
	ErrorCorrection string
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.ForegroundColor == "" {
		o.ForegroundColor = "#000000"
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = "#FFFFFF"
	}
	if o.ErrorCorrection == "" {
		o.ErrorCorrection = "M"
	}
	return o
}

// Render encodes content into a PNG image.
func Render(content string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	if opts.Size < MinSize || opts.Size > MaxSize {
		return nil, fmt.Errorf("size %d out of range [%d, %d]", opts.Size, MinSize, MaxSize)
	}

	level, err := recoveryLevel(opts.ErrorCorrection)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(content, level)
	if err != nil {
		return nil, fmt.Errorf("encode qr content: %w", err)
	}

	fg, err := parseHexColor(opts.ForegroundColor)
	if err != nil {
		return nil, fmt.Errorf("foreground color: %w", err)
	}
	bg, err := parseHexColor(opts.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("background color: %w", err)
	}

	code.ForegroundColor = fg
	code.BackgroundColor = bg

	png, err := code.PNG(opts.Size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}

func recoveryLevel(ec string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(ec) {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown error correction level %q", ec)
	}
}

func parseHexColor(s string) (color.Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("expected hex color like #RRGGBB, got %q", s)
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return nil, fmt.Errorf("invalid hex color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
