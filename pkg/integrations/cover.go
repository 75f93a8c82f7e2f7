package integrations

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"

	"golang.org/x/image/draw"
)

const maxCoverBytes = 10 << 20

// CoverSettings bounds the cover embedded in an export.
type CoverSettings struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Grayscale bool // for e-ink readers
}

var DefaultCoverSettings = CoverSettings{MaxWidth: 600, MaxHeight: 900, Quality: 85}

// FetchCover downloads a cover image.
func FetchCover(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status for cover image: %s", resp.Status)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read cover image content: %w", err)
	}
	return content, nil
}

// ProcessCover decodes a cover, shrinks it to fit the settings keeping the
// aspect ratio, and re-encodes it as JPEG.
func ProcessCover(raw []byte, settings CoverSettings) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), settings.MaxWidth, settings.MaxHeight)

	var out image.Image = img
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
	}
	if settings.Grayscale {
		out = toGrayscale(out)
	}

	quality := settings.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultCoverSettings.Quality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin never upscales.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if maxW <= 0 {
		maxW = w
	}
	if maxH <= 0 {
		maxH = h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := float64(w) / float64(h)
	nw, nh := maxW, int(math.Round(float64(maxW)/ratio))
	if nh > maxH {
		nh = maxH
		nw = int(math.Round(float64(maxH) * ratio))
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

func toGrayscale(img image.Image) image.Image {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}
