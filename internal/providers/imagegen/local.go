package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	_ "image/gif"
	_ "image/jpeg"

	"server/internal/domain"
	"server/internal/infra"
)

const (
	canvasSide       = 1024
	borderMargin     = 24
	borderThickness  = 6
	overlayInset     = 48
	overlaySeparator = " · "
	maxOverlayPoints = 3
)

// OverlayText carries the caption drawn onto a locally composed hero image.
type OverlayText struct {
	Title         string
	SellingPoints []string
	Atmosphere    string
}

// Line joins the title, up to three selling points, and the atmosphere tag
// into the single caption line rendered near the bottom of the canvas.
func (o OverlayText) Line() string {
	parts := make([]string, 0, maxOverlayPoints+2)
	if t := strings.TrimSpace(o.Title); t != "" {
		parts = append(parts, t)
	}
	for i, p := range o.SellingPoints {
		if i >= maxOverlayPoints {
			break
		}
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if a := strings.TrimSpace(o.Atmosphere); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, overlaySeparator)
}

// LocalComposer renders the deterministic, network-free hero-image fallback:
// the source image scaled onto a white square canvas with an accent border
// and a caption. The only failure it can produce is an unloadable source
// image, which wraps domain.ErrSourceImageLoad and must stay visible to the
// caller; nothing sits beneath this step.
type LocalComposer struct {
	httpClient *http.Client
	logger     *infra.Logger
}

// NewLocalComposer builds a composer. The HTTP client is only used when the
// source reference is a URL rather than a local path.
func NewLocalComposer(httpClient *http.Client, logger *infra.Logger) *LocalComposer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &LocalComposer{httpClient: httpClient, logger: logger}
}

// ComposeLocal draws the fallback hero image and returns it PNG-encoded.
func (l *LocalComposer) ComposeLocal(ctx context.Context, sourceImageRef string, overlay OverlayText, accent color.RGBA) ([]byte, error) {
	src, err := l.loadSource(ctx, sourceImageRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceImageLoad, err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasSide, canvasSide))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	// Uniform scale preserving aspect ratio, centered.
	srcBounds := src.Bounds()
	sw, sh := srcBounds.Dx(), srcBounds.Dy()
	scale := minFloat(float64(canvasSide)/float64(sw), float64(canvasSide)/float64(sh))
	dw, dh := int(float64(sw)*scale), int(float64(sh)*scale)
	offsetX, offsetY := (canvasSide-dw)/2, (canvasSide-dh)/2
	target := image.Rect(offsetX, offsetY, offsetX+dw, offsetY+dh)
	xdraw.ApproxBiLinear.Scale(canvas, target, src, srcBounds, xdraw.Over, nil)

	drawBorder(canvas, accent)
	drawCaption(canvas, overlay.Line(), accent)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("composite: encode png: %w", err)
	}
	l.logger.Debug().Int("bytes", buf.Len()).Msg("composite: rendered local hero image")
	return buf.Bytes(), nil
}

func (l *LocalComposer) loadSource(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("composite: empty source reference")
	}
	var reader io.ReadCloser
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, fmt.Errorf("composite: build fetch request: %w", err)
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("composite: fetch source: %w", err)
		}
		if resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("composite: fetch source: status %d", resp.StatusCode)
		}
		reader = resp.Body
	} else {
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("composite: open source: %w", err)
		}
		reader = f
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("composite: decode source: %w", err)
	}
	return img, nil
}

func drawBorder(canvas *image.RGBA, accent color.RGBA) {
	paint := image.NewUniform(accent)
	outer := canvas.Bounds().Inset(borderMargin)
	inner := outer.Inset(borderThickness)
	edges := []image.Rectangle{
		{Min: outer.Min, Max: image.Pt(outer.Max.X, inner.Min.Y)},                               // top
		{Min: image.Pt(outer.Min.X, inner.Max.Y), Max: outer.Max},                               // bottom
		{Min: image.Pt(outer.Min.X, inner.Min.Y), Max: image.Pt(inner.Min.X, inner.Max.Y)},      // left
		{Min: image.Pt(inner.Max.X, inner.Min.Y), Max: image.Pt(outer.Max.X, inner.Max.Y)},      // right
	}
	for _, edge := range edges {
		xdraw.Draw(canvas, edge, paint, image.Point{}, xdraw.Over)
	}
}

// drawCaption renders the overlay line bottom-centered in a bold fixed-size
// face.
//
// TODO: bundle a CJK-capable face; Bold8x16 only covers Latin glyphs.
func drawCaption(canvas *image.RGBA, line string, accent color.RGBA) {
	if line == "" {
		return
	}
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(accent),
		Face: inconsolata.Bold8x16,
	}
	width := drawer.MeasureString(line)
	x := (fixed.I(canvasSide) - width) / 2
	if x < fixed.I(borderMargin+borderThickness) {
		x = fixed.I(borderMargin + borderThickness)
	}
	drawer.Dot = fixed.Point26_6{X: x, Y: fixed.I(canvasSide - overlayInset)}
	drawer.DrawString(line)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
