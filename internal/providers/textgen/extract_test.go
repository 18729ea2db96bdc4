package textgen

import (
	"errors"
	"testing"

	"server/internal/domain"
)

func TestExtractAssetFromNoisyText(t *testing.T) {
	t.Parallel()
	raw := `garbage{"title":"T","selling_points":["a","b","c"],"atmosphere":"A","video_script":[{"start_second":0,"description":"x"}]}more garbage`
	asset, err := ExtractAsset(raw)
	if err != nil {
		t.Fatalf("ExtractAsset returned error: %v", err)
	}
	if asset.Title != "T" {
		t.Fatalf("title = %q, want %q", asset.Title, "T")
	}
	if len(asset.SellingPoints) != 3 {
		t.Fatalf("selling points = %v", asset.SellingPoints)
	}
	if len(asset.VideoScript) != 1 || asset.VideoScript[0].StartSecond != 0 {
		t.Fatalf("video script = %v", asset.VideoScript)
	}
}

func TestExtractAssetWholeText(t *testing.T) {
	t.Parallel()
	asset, err := ExtractAsset(`{"title":"整段即JSON"}`)
	if err != nil {
		t.Fatalf("ExtractAsset returned error: %v", err)
	}
	if asset.Title != "整段即JSON" {
		t.Fatalf("title = %q", asset.Title)
	}
}

func TestExtractAssetParseFailure(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "很抱歉，我无法生成。"},
		{name: "broken braces", raw: "}{"},
		{name: "invalid json inside braces", raw: "before {title: nope} after"},
		{name: "empty", raw: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ExtractAsset(tc.raw)
			if err == nil {
				t.Fatal("expected parse failure")
			}
			if !errors.Is(err, domain.ErrParseFailure) {
				t.Fatalf("error = %v, want ErrParseFailure", err)
			}
		})
	}
}

// A payload that parses but omits fields is still accepted; the extractor does
// not validate presence.
func TestExtractAssetAcceptsSparsePayload(t *testing.T) {
	t.Parallel()
	asset, err := ExtractAsset(`{"title":"只有标题"}`)
	if err != nil {
		t.Fatalf("ExtractAsset returned error: %v", err)
	}
	if asset.Atmosphere != "" || asset.VideoScript != nil {
		t.Fatalf("sparse payload mutated: %+v", asset)
	}
}
