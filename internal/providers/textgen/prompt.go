package textgen

import (
	"strings"

	"server/internal/domain"
)

// Instruction texts encode the output contract the extractor expects: exact
// field names, language, and length constraints. Keep the JSON skeleton in
// sync with domain.Asset.
const instructionZH = `你是一位专业的电商带货文案策划师。根据用户提供的商品描述（以及可选的商品参考图），生成一份营销方案，严格以 JSON 输出，字段如下：
{"title":"商品标题，10-30字","selling_points":["卖点，3-5条"],"atmosphere":"氛围标签，简短","video_script":[{"start_second":0,"description":"画面描述"}]}
video_script 按时间顺序给出 3 段以上。只输出 JSON，不要输出任何其他内容。`

const instructionEN = `You are a professional e-commerce marketing copywriter. From the product description (and optional reference image), produce a marketing plan strictly as JSON with these fields:
{"title":"product title, 10-30 characters","selling_points":["3-5 selling points"],"atmosphere":"short mood tag","video_script":[{"start_second":0,"description":"shot description"}]}
Give at least 3 video_script segments in chronological order. Output JSON only, nothing else.`

// Instruction returns the system instruction for the requested locale.
// Chinese is the default contract language.
func Instruction(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "en") {
		return instructionEN
	}
	return instructionZH
}

// BuildTurns assembles the ordered message set: system instruction first,
// history verbatim, current user turn last. Only the final turn may carry an
// image reference; history turns are stripped to role and content. Pure
// transformation, no side effects.
func BuildTurns(instruction string, history []domain.ChatTurn, description, imageRef string) []domain.ChatTurn {
	turns := make([]domain.ChatTurn, 0, len(history)+2)
	turns = append(turns, domain.ChatTurn{Role: domain.RoleSystem, Content: instruction})
	for _, h := range history {
		turns = append(turns, domain.ChatTurn{Role: h.Role, Content: h.Content})
	}
	turns = append(turns, domain.ChatTurn{
		Role:     domain.RoleUser,
		Content:  description,
		ImageRef: strings.TrimSpace(imageRef),
	})
	return turns
}
