package textgen

import (
	"encoding/json"
	"strings"

	"server/internal/domain"
)

// ExtractAsset pulls an Asset out of free-form model output. It takes the
// substring between the first '{' and the last '}' when both exist in order,
// otherwise it tries the whole text. A parseable payload is accepted as-is;
// field presence is not validated here.
func ExtractAsset(raw string) (domain.Asset, error) {
	text := raw
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	var asset domain.Asset
	if err := json.Unmarshal([]byte(text), &asset); err != nil {
		return domain.Asset{}, domain.NewFailure(domain.FailureParse, err)
	}
	return asset, nil
}
