package textgen

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
)

// TextGenerator is the remote-call capability the pipeline degrades over.
type TextGenerator interface {
	Generate(ctx context.Context, turns []domain.ChatTurn, modelOverride string) (string, error)
}

// Pipeline runs the text degradation ladder: full context, then minimal
// context, then the deterministic mock. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	client TextGenerator
	logger *infra.Logger
}

// NewPipeline wires a pipeline over the given client.
func NewPipeline(client TextGenerator, logger *infra.Logger) *Pipeline {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Pipeline{client: client, logger: logger}
}

// Generate always returns a structurally valid Asset. Unavailable clients
// and unparseable completions are treated identically: retry once with
// minimal context, then synthesize the mock. The second attempt drops the
// history entirely and keeps only the instruction and the current turn.
func (p *Pipeline) Generate(ctx context.Context, req domain.GenerationRequest) domain.Asset {
	instruction := Instruction(req.Locale)

	turns := BuildTurns(instruction, req.History, req.Description, req.ImageRef)
	asset, err := p.attempt(ctx, turns)
	if err == nil {
		return asset
	}
	p.logger.Debug().Err(err).Msg("textgen: full-context attempt failed, retrying with minimal context")

	turns = BuildTurns(instruction, nil, req.Description, req.ImageRef)
	asset, err = p.attempt(ctx, turns)
	if err == nil {
		return asset
	}
	p.logger.Info().Err(err).Msg("textgen: minimal-context attempt failed, serving mock asset")

	return MockAsset(req.Description)
}

func (p *Pipeline) attempt(ctx context.Context, turns []domain.ChatTurn) (domain.Asset, error) {
	raw, err := p.client.Generate(ctx, turns, "")
	if err != nil {
		return domain.Asset{}, err
	}
	return ExtractAsset(raw)
}

// Mock asset constants: the terminal ladder step that can never fail.
const (
	mockTitleRuneCap = 24
	mockDefaultTitle = "精选好物推荐"
	mockAtmosphere   = "品质生活"
)

var mockSellingPoints = []string{
	"品质严选，用料扎实",
	"设计简约，经久耐用",
	"性价比出众",
	"广受好评，回购率高",
}

var mockVideoScript = []domain.ScriptSegment{
	{StartSecond: 0, Description: "开场展示商品整体外观"},
	{StartSecond: 2, Description: "特写核心卖点与细节"},
	{StartSecond: 6, Description: "展示使用场景，引导下单"},
}

// MockAsset synthesizes a deterministic Asset from the description alone.
// The title is the first 24 runes of the description, or a fixed phrase when
// the description is empty.
func MockAsset(description string) domain.Asset {
	title := strings.TrimSpace(description)
	if title == "" {
		title = mockDefaultTitle
	} else if runes := []rune(title); len(runes) > mockTitleRuneCap {
		title = string(runes[:mockTitleRuneCap])
	}
	return domain.Asset{
		Title:         title,
		SellingPoints: append([]string(nil), mockSellingPoints...),
		Atmosphere:    mockAtmosphere,
		VideoScript:   append([]domain.ScriptSegment(nil), mockVideoScript...),
	}
}
