package imagegen

import (
	"context"
	"image/color"
	"io"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
)

// DefaultAccent is the border and caption color of locally composed images.
var DefaultAccent = color.RGBA{R: 0xE6, G: 0x41, B: 0x2C, A: 0xFF}

// RemoteComposer is the remote image-transform capability.
type RemoteComposer interface {
	Compose(ctx context.Context, req domain.CompositionRequest) (string, error)
}

// FallbackComposer renders the local composition.
type FallbackComposer interface {
	ComposeLocal(ctx context.Context, sourceImageRef string, overlay OverlayText, accent color.RGBA) ([]byte, error)
}

// HeroImage is either a remote URL or an embedded raster payload.
type HeroImage struct {
	URL  string
	Data []byte
}

// Remote reports whether the image lives behind a provider URL.
func (h HeroImage) Remote() bool { return h.URL != "" }

// Pipeline tries the remote composer exactly once and degrades straight to
// the local fallback. Unlike the text ladder there is no second remote
// attempt.
type Pipeline struct {
	remote RemoteComposer
	local  FallbackComposer
	accent color.RGBA
	logger *infra.Logger
}

// NewPipeline wires the image degradation pipeline.
func NewPipeline(remote RemoteComposer, local FallbackComposer, logger *infra.Logger) *Pipeline {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Pipeline{remote: remote, local: local, accent: DefaultAccent, logger: logger}
}

// Produce returns a hero image. The only error it can surface is the local
// composer's source-load failure, at which point nothing further can be done.
func (p *Pipeline) Produce(ctx context.Context, req domain.CompositionRequest, overlay OverlayText) (HeroImage, error) {
	url, err := p.remote.Compose(ctx, req)
	if err == nil {
		return HeroImage{URL: url}, nil
	}
	p.logger.Info().Err(err).Msg("imagegen: remote composition failed, falling back to local render")

	data, err := p.local.ComposeLocal(ctx, req.SourceImageRef, overlay, p.accent)
	if err != nil {
		return HeroImage{}, err
	}
	return HeroImage{Data: data}, nil
}
